package cli

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/flowgen/pkg/editor"
	"github.com/matzehuels/flowgen/pkg/flow"
)

// Terminal cells per diagram pixel before fitting to the window.
const (
	cellWidth  = 10.0
	cellHeight = 22.0
)

// nudge is how far one arrow key press moves the selected node.
const nudge = 20.0

var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	previewEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
	previewHelpStyle     = lipgloss.NewStyle().Foreground(colorDim)
	previewStatusStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// PreviewModel - interactive diagram preview
// =============================================================================

// PreviewModel is the bubbletea model behind "flowgen edit". It draws the
// laid-out diagram with box characters and lets the user change the flow
// direction, move nodes and save.
type PreviewModel struct {
	Doc    *editor.Document
	Path   string
	Cursor int
	Width  int
	Height int
	Status string
	Saved  bool

	save func(path string, d flow.Diagram) error
}

// NewPreviewModel creates a preview of doc that saves to path.
func NewPreviewModel(doc *editor.Document, path string) PreviewModel {
	return PreviewModel{Doc: doc, Path: path, Width: 100, Height: 30, save: flow.WriteFile}
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) selected() (flow.Node, bool) {
	d := m.Doc.Diagram()
	if m.Cursor < 0 || m.Cursor >= len(d.Nodes) {
		return flow.Node{}, false
	}
	return d.Nodes[m.Cursor], true
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.Status = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			if n := m.Doc.Len(); n > 0 {
				m.Cursor = (m.Cursor + 1) % n
			}
		case "shift+tab":
			if n := m.Doc.Len(); n > 0 {
				m.Cursor = (m.Cursor - 1 + n) % n
			}
		case "d":
			m.Status = "direction " + string(m.Doc.ToggleDirection())
		case "r":
			m.Doc.Relayout(false)
			m.Status = "relaid out"
		case "up", "k":
			m.move(0, -nudge)
		case "down", "j":
			m.move(0, nudge)
		case "left", "h":
			m.move(-nudge, 0)
		case "right", "l":
			m.move(nudge, 0)
		case "a":
			m.Doc.AddNode("")
			m.Cursor = m.Doc.Len() - 1
			m.Status = "added node"
		case "x", "delete":
			if n, ok := m.selected(); ok {
				if err := m.Doc.Delete(n.ID); err != nil {
					m.Status = err.Error()
				} else {
					m.Status = "deleted " + n.ID
					m.Cursor = min(m.Cursor, max(m.Doc.Len()-1, 0))
				}
			}
		case "s":
			if err := m.save(m.Path, m.Doc.Diagram()); err != nil {
				m.Status = "save failed: " + err.Error()
			} else {
				m.Saved = true
				m.Status = "saved " + m.Path
			}
		}
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
	}
	return m, nil
}

// move pins the selected node dx, dy pixels away from where it is drawn.
func (m *PreviewModel) move(dx, dy float64) {
	n, ok := m.selected()
	if !ok {
		return
	}
	if err := m.Doc.Move(n.ID, n.Position.X+dx, n.Position.Y+dy); err != nil {
		m.Status = err.Error()
	}
}

func (m PreviewModel) View() string {
	var b strings.Builder

	d := m.Doc.Diagram()
	title := fmt.Sprintf("%s  %s · %d nodes · %d edges", m.Path, d.LayoutDirection, len(d.Nodes), len(d.Edges))
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	rows := max(m.Height-4, 5)
	b.WriteString(renderPreview(d, m.Cursor, max(m.Width, 20), rows))
	b.WriteString("\n")

	if n, ok := m.selected(); ok {
		pin := ""
		if m.Doc.Pinned(n.ID) {
			pin = " (moved)"
		}
		b.WriteString(previewHelpStyle.Render(fmt.Sprintf("%s %q at %.0f,%.0f%s", n.ID, n.Label, n.Position.X, n.Position.Y, pin)))
		b.WriteString("  ")
	}
	if m.Status != "" {
		b.WriteString(previewStatusStyle.Render(m.Status))
	}
	b.WriteString("\n")
	b.WriteString(previewHelpStyle.Render("tab select  ←↑↓→ move  d direction  r relayout  a add  x delete  s save  q quit"))
	return b.String()
}

// =============================================================================
// Character canvas
// =============================================================================

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellNode
	cellSelected
)

// grid is a character canvas with a style class per cell.
type grid struct {
	cols, rows int
	runes      [][]rune
	kinds      [][]cellKind
}

func newGrid(cols, rows int) *grid {
	g := &grid{cols: cols, rows: rows, runes: make([][]rune, rows), kinds: make([][]cellKind, rows)}
	for r := range g.runes {
		g.runes[r] = []rune(strings.Repeat(" ", cols))
		g.kinds[r] = make([]cellKind, cols)
	}
	return g
}

func (g *grid) set(c, r int, ch rune, k cellKind) {
	if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
		return
	}
	g.runes[r][c] = ch
	g.kinds[r][c] = k
}

// line draws a dotted line between two cells, leaving node cells alone.
func (g *grid) line(c0, r0, c1, r1 int) {
	steps := max(abs(c1-c0), abs(r1-r0))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c := c0 + int(math.Round(t*float64(c1-c0)))
		r := r0 + int(math.Round(t*float64(r1-r0)))
		if c >= 0 && r >= 0 && c < g.cols && r < g.rows && g.kinds[r][c] == cellEmpty {
			g.set(c, r, '·', cellEdge)
		}
	}
}

// box draws a framed box with a centered, truncated label.
func (g *grid) box(c0, r0, c1, r1 int, label string, k cellKind) {
	for c := c0; c <= c1; c++ {
		for r := r0; r <= r1; r++ {
			ch := ' '
			switch {
			case r == r0 && c == c0:
				ch = '┌'
			case r == r0 && c == c1:
				ch = '┐'
			case r == r1 && c == c0:
				ch = '└'
			case r == r1 && c == c1:
				ch = '┘'
			case r == r0 || r == r1:
				ch = '─'
			case c == c0 || c == c1:
				ch = '│'
			}
			g.set(c, r, ch, k)
		}
	}
	inner := c1 - c0 - 1
	if inner <= 0 {
		return
	}
	text := []rune(label)
	if len(text) > inner {
		text = append(text[:max(inner-1, 0)], '…')
	}
	start := c0 + 1 + (inner-len(text))/2
	mid := (r0 + r1) / 2
	for i, ch := range text {
		g.set(start+i, mid, ch, k)
	}
}

func (g *grid) String() string {
	styles := map[cellKind]lipgloss.Style{
		cellEdge:     previewEdgeStyle,
		cellNode:     previewNodeStyle,
		cellSelected: previewSelectedStyle,
	}
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		if r > 0 {
			b.WriteByte('\n')
		}
		// emit runs of equally styled cells
		for c := 0; c < g.cols; {
			k := g.kinds[r][c]
			end := c
			for end < g.cols && g.kinds[r][end] == k {
				end++
			}
			run := string(g.runes[r][c:end])
			if style, ok := styles[k]; ok {
				run = style.Render(run)
			}
			b.WriteString(run)
			c = end
		}
	}
	return b.String()
}

// renderPreview draws d scaled to fit cols × rows. Edges run between box
// centers and are drawn first so boxes cover them.
func renderPreview(d flow.Diagram, selected, cols, rows int) string {
	g := newGrid(cols, rows)
	if len(d.Nodes) == 0 {
		g.box(0, 0, min(cols-1, 24), min(rows-1, 2), "empty diagram", cellNode)
		return g.String()
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		minX, minY = math.Min(minX, n.Position.X), math.Min(minY, n.Position.Y)
		maxX, maxY = math.Max(maxX, n.Position.X+n.Width), math.Max(maxY, n.Position.Y+n.Height)
	}
	scale := math.Max(1, math.Max((maxX-minX)/cellWidth/float64(cols-1), (maxY-minY)/cellHeight/float64(rows-1)))
	toCol := func(x float64) int { return int(math.Round((x - minX) / cellWidth / scale)) }
	toRow := func(y float64) int { return int(math.Round((y - minY) / cellHeight / scale)) }

	centers := make(map[string][2]int, len(d.Nodes))
	for _, n := range d.Nodes {
		centers[n.ID] = [2]int{toCol(n.Position.X + n.Width/2), toRow(n.Position.Y + n.Height/2)}
	}
	for _, e := range d.ValidEdges() {
		s, t := centers[e.Source], centers[e.Target]
		g.line(s[0], s[1], t[0], t[1])
	}
	for i, n := range d.Nodes {
		k := cellNode
		if i == selected {
			k = cellSelected
		}
		c0, r0 := toCol(n.Position.X), toRow(n.Position.Y)
		c1 := max(toCol(n.Position.X+n.Width), c0+2)
		r1 := max(toRow(n.Position.Y+n.Height), r0+2)
		label := n.Label
		if label == "" {
			label = n.ID
		}
		g.box(c0, r0, c1, r1, label, k)
	}
	return g.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
