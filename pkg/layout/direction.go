package layout

import "strings"

// Direction is the flow direction of a diagram. It decides which axis ranks
// advance along and which box faces edges attach to.
type Direction string

const (
	TopBottom Direction = "TB"
	LeftRight Direction = "LR"
	RightLeft Direction = "RL"
	BottomTop Direction = "BT"
)

// DefaultDirection is used whenever a direction is missing or unrecognised.
const DefaultDirection = TopBottom

// Directions lists every supported direction.
var Directions = []Direction{TopBottom, LeftRight, RightLeft, BottomTop}

// ParseDirection maps a direction token to a [Direction]. Matching ignores
// case and surrounding whitespace and also accepts the long forms
// ("top-bottom", "left-right", ...). Anything else yields [DefaultDirection];
// direction is cosmetic, so a bad token never fails a layout.
func ParseDirection(s string) Direction {
	d, _ := lookupDirection(s)
	return d
}

// ValidDirection reports whether s names a direction without falling back.
func ValidDirection(s string) bool {
	_, ok := lookupDirection(s)
	return ok
}

func lookupDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TB", "TD", "TOP-BOTTOM", "TOP-TO-BOTTOM":
		return TopBottom, true
	case "LR", "LEFT-RIGHT", "LEFT-TO-RIGHT":
		return LeftRight, true
	case "RL", "RIGHT-LEFT", "RIGHT-TO-LEFT":
		return RightLeft, true
	case "BT", "BOTTOM-TOP", "BOTTOM-TO-TOP":
		return BottomTop, true
	}
	return DefaultDirection, false
}

func (d Direction) String() string {
	if d == "" {
		return string(DefaultDirection)
	}
	return string(d)
}

// Horizontal reports whether ranks advance along the x axis (LR, RL).
func (d Direction) Horizontal() bool { return d == LeftRight || d == RightLeft }

// Reversed reports whether ranks advance toward decreasing coordinates
// (BT, RL).
func (d Direction) Reversed() bool { return d == BottomTop || d == RightLeft }

// Toggle flips between vertical and horizontal flow. Any vertical direction
// becomes LR and any horizontal one becomes TB.
func (d Direction) Toggle() Direction {
	if d.Horizontal() {
		return TopBottom
	}
	return LeftRight
}

// Side is a face of a node's box.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides returns the face incoming edges attach to and the face outgoing
// edges leave from. The pair is the same for every node of a layout.
func (d Direction) Sides() (target, source Side) {
	switch d {
	case LeftRight:
		return SideLeft, SideRight
	case RightLeft:
		return SideRight, SideLeft
	case BottomTop:
		return SideBottom, SideTop
	default:
		return SideTop, SideBottom
	}
}
