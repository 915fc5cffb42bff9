package drawio

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/flowgen/pkg/flow"
)

// Options sets the document metadata.
type Options struct {
	// Modified is written as the modification time; zero means now.
	Modified time.Time
	// Host names the producing application.
	Host string
}

const (
	defaultHost = "FlowGen"
	version     = "21.0.0"
)

type mxFile struct {
	XMLName  xml.Name  `xml:"mxfile"`
	Host     string    `xml:"host,attr"`
	Modified string    `xml:"modified,attr"`
	Agent    string    `xml:"agent,attr"`
	Etag     string    `xml:"etag,attr"`
	Version  string    `xml:"version,attr"`
	Diagram  mxDiagram `xml:"diagram"`
}

type mxDiagram struct {
	ID    string       `xml:"id,attr"`
	Name  string       `xml:"name,attr"`
	Model mxGraphModel `xml:"mxGraphModel"`
}

type mxGraphModel struct {
	Dx         int      `xml:"dx,attr"`
	Dy         int      `xml:"dy,attr"`
	Grid       int      `xml:"grid,attr"`
	GridSize   int      `xml:"gridSize,attr"`
	Guides     int      `xml:"guides,attr"`
	Tooltips   int      `xml:"tooltips,attr"`
	Connect    int      `xml:"connect,attr"`
	Arrows     int      `xml:"arrows,attr"`
	Fold       int      `xml:"fold,attr"`
	Page       int      `xml:"page,attr"`
	PageScale  float64  `xml:"pageScale,attr"`
	PageWidth  int      `xml:"pageWidth,attr"`
	PageHeight int      `xml:"pageHeight,attr"`
	Math       int      `xml:"math,attr"`
	Shadow     int      `xml:"shadow,attr"`
	Cells      []mxCell `xml:"root>mxCell"`
}

type mxCell struct {
	ID       string      `xml:"id,attr"`
	Value    string      `xml:"value,attr,omitempty"`
	Style    string      `xml:"style,attr,omitempty"`
	Vertex   string      `xml:"vertex,attr,omitempty"`
	Edge     string      `xml:"edge,attr,omitempty"`
	Parent   string      `xml:"parent,attr,omitempty"`
	Source   string      `xml:"source,attr,omitempty"`
	Target   string      `xml:"target,attr,omitempty"`
	Geometry *mxGeometry `xml:"mxGeometry,omitempty"`
}

type mxGeometry struct {
	X        *float64 `xml:"x,attr,omitempty"`
	Y        *float64 `xml:"y,attr,omitempty"`
	Width    float64  `xml:"width,attr,omitempty"`
	Height   float64  `xml:"height,attr,omitempty"`
	Relative string   `xml:"relative,attr,omitempty"`
	As       string   `xml:"as,attr"`
}

// Encode writes d as a draw.io document to w.
func Encode(w io.Writer, d flow.Diagram, opts Options) error {
	out, err := xml.MarshalIndent(build(d, opts), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling XML: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// Marshal returns d as a draw.io document.
func Marshal(d flow.Diagram, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, d, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes d as a draw.io document to path.
func WriteFile(path string, d flow.Diagram, opts Options) error {
	data, err := Marshal(d, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing draw.io file: %w", err)
	}
	return nil
}

func build(d flow.Diagram, opts Options) mxFile {
	modified := opts.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	host := opts.Host
	if host == "" {
		host = defaultHost
	}

	// cells 0 and 1 are the root and the default layer
	cells := []mxCell{{ID: "0"}, {ID: "1", Parent: "0"}}
	nodes := make(map[string]flow.Node, len(d.Nodes))
	for _, n := range d.Nodes {
		if _, dup := nodes[n.ID]; dup {
			continue
		}
		nodes[n.ID] = n
		cells = append(cells, vertex(n))
	}
	for _, e := range d.ValidEdges() {
		cells = append(cells, edge(e, nodes[e.Target], nodes[e.Source]))
	}

	return mxFile{
		Host:     host,
		Modified: modified.UTC().Format(time.RFC3339),
		Agent:    "flowgen",
		Etag:     "flowgen",
		Version:  version,
		Diagram: mxDiagram{
			ID:   "flowgen-diagram",
			Name: "Page-1",
			Model: mxGraphModel{
				Dx: 1422, Dy: 794,
				Grid: 1, GridSize: 10, Guides: 1, Tooltips: 1, Connect: 1, Arrows: 1, Fold: 1,
				Page: 1, PageScale: 1, PageWidth: 850, PageHeight: 1100,
				Cells: cells,
			},
		},
	}
}

func vertex(n flow.Node) mxCell {
	w, h := n.Width, n.Height
	dw, dh := flow.DefaultSize(n.Shape)
	if w <= 0 {
		w = dw
	}
	if h <= 0 {
		h = dh
	}
	x, y := n.Position.X, n.Position.Y
	return mxCell{
		ID:       n.ID,
		Value:    n.Label,
		Style:    NodeStyle(n),
		Vertex:   "1",
		Parent:   "1",
		Geometry: &mxGeometry{X: &x, Y: &y, Width: w, Height: h, As: "geometry"},
	}
}

func edge(e flow.Edge, target, source flow.Node) mxCell {
	id := e.ID
	if id == "" {
		id = flow.EdgeID(e.Source, e.Target)
	}
	return mxCell{
		ID:       id,
		Value:    e.Label,
		Style:    EdgeStyle(e, target, source),
		Edge:     "1",
		Parent:   "1",
		Source:   e.Source,
		Target:   e.Target,
		Geometry: &mxGeometry{Relative: "1", As: "geometry"},
	}
}
