package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat is returned when a document encoding cannot be determined.
var ErrUnknownFormat = errors.New("unknown document format")

// FormatFromPath picks the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
}

// Document is the serialized form of a graph, including any layout state.
//
// Pools are optional on input: pools and lanes not listed are created in the
// order their first node appears.
type Document struct {
	Pools      []PoolDoc `json:"pools,omitempty" yaml:"pools,omitempty" bson:"pools,omitempty"`
	Nodes      []NodeDoc `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges      []EdgeDoc `json:"edges" yaml:"edges" bson:"edges"`
	LastNodeID int       `json:"last_node_id,omitempty" yaml:"last_node_id,omitempty" bson:"last_node_id,omitempty"`
}

// PoolDoc is a pool and its lanes.
type PoolDoc struct {
	Name  string    `json:"name" yaml:"name" bson:"name"`
	Lanes []LaneDoc `json:"lanes,omitempty" yaml:"lanes,omitempty" bson:"lanes,omitempty"`
	Box   *Box      `json:"box,omitempty" yaml:"box,omitempty" bson:"box,omitempty"`
}

// LaneDoc is a lane.
type LaneDoc struct {
	Name string `json:"name" yaml:"name" bson:"name"`
	Box  *Box   `json:"box,omitempty" yaml:"box,omitempty" bson:"box,omitempty"`
}

// Box is a serialized rectangle.
type Box struct {
	X float64 `json:"x" yaml:"x" bson:"x"`
	Y float64 `json:"y" yaml:"y" bson:"y"`
	W float64 `json:"width" yaml:"width" bson:"width"`
	H float64 `json:"height" yaml:"height" bson:"height"`
}

// NodeDoc is a serialized node. Layer is nil when unassigned.
type NodeDoc struct {
	ID           int     `json:"id" yaml:"id" bson:"id"`
	Kind         Kind    `json:"kind,omitempty" yaml:"kind,omitempty" bson:"kind,omitempty"`
	Label        string  `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Pool         string  `json:"pool,omitempty" yaml:"pool,omitempty" bson:"pool,omitempty"`
	Lane         string  `json:"lane,omitempty" yaml:"lane,omitempty" bson:"lane,omitempty"`
	Layer        *int    `json:"layer,omitempty" yaml:"layer,omitempty" bson:"layer,omitempty"`
	Slot         int     `json:"slot,omitempty" yaml:"slot,omitempty" bson:"slot,omitempty"`
	Order        int     `json:"order,omitempty" yaml:"order,omitempty" bson:"order,omitempty"`
	X            float64 `json:"x,omitempty" yaml:"x,omitempty" bson:"x,omitempty"`
	Y            float64 `json:"y,omitempty" yaml:"y,omitempty" bson:"y,omitempty"`
	XOffset      float64 `json:"x_offset,omitempty" yaml:"x_offset,omitempty" bson:"x_offset,omitempty"`
	YOffset      float64 `json:"y_offset,omitempty" yaml:"y_offset,omitempty" bson:"y_offset,omitempty"`
	CrossesLanes bool    `json:"crosses_lanes,omitempty" yaml:"crosses_lanes,omitempty" bson:"crosses_lanes,omitempty"`
	CrossTarget  int     `json:"cross_target,omitempty" yaml:"cross_target,omitempty" bson:"cross_target,omitempty"`
}

// EdgeDoc is a serialized edge.
type EdgeDoc struct {
	From   int     `json:"from" yaml:"from" bson:"from"`
	To     int     `json:"to" yaml:"to" bson:"to"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Pool   string  `json:"pool,omitempty" yaml:"pool,omitempty" bson:"pool,omitempty"`
	Lane   string  `json:"lane,omitempty" yaml:"lane,omitempty" bson:"lane,omitempty"`
	Points []Point `json:"points,omitempty" yaml:"points,omitempty" bson:"points,omitempty"`
}

// =============================================================================
// Conversion
// =============================================================================

// ToDocument converts g into its serialized form. Nodes are emitted in
// insertion order and edges in edge order.
func ToDocument(g *Graph) Document {
	doc := Document{
		Nodes:      make([]NodeDoc, 0, len(g.order)),
		Edges:      make([]EdgeDoc, 0, len(g.Edges)),
		LastNodeID: g.LastNodeID,
	}
	for _, p := range g.Pools {
		pd := PoolDoc{Name: p.Name, Box: boxOf(p.Bounds())}
		for _, l := range p.Lanes {
			pd.Lanes = append(pd.Lanes, LaneDoc{Name: l.Name, Box: boxOf(l.Bounds())})
		}
		doc.Pools = append(doc.Pools, pd)
	}
	for _, n := range g.order {
		nd := NodeDoc{
			ID: n.ID, Kind: n.Kind, Label: n.Label, Pool: n.Pool, Lane: n.Lane,
			Slot: n.Slot, Order: n.Order,
			X: n.X, Y: n.Y, XOffset: n.XOffset, YOffset: n.YOffset,
			CrossesLanes: n.CrossesLanes, CrossTarget: n.CrossTarget,
		}
		if n.Layer != NoLayer {
			layer := n.Layer
			nd.Layer = &layer
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, e := range g.Edges {
		doc.Edges = append(doc.Edges, EdgeDoc{
			From: e.From, To: e.To, Label: e.Label, Pool: e.Pool, Lane: e.Lane,
			Points: append([]Point(nil), e.Points...),
		})
	}
	return doc
}

// FromDocument builds a graph from its serialized form.
func FromDocument(doc Document) (*Graph, error) {
	g := New()
	for _, pd := range doc.Pools {
		p := g.AddPool(pd.Name)
		setRect(&p.X, &p.Y, &p.W, &p.H, pd.Box)
		for _, ld := range pd.Lanes {
			l := g.AddLane(pd.Name, ld.Name)
			setRect(&l.X, &l.Y, &l.W, &l.H, ld.Box)
		}
	}
	for _, nd := range doc.Nodes {
		n := Node{
			ID: nd.ID, Kind: nd.Kind, Label: nd.Label, Pool: nd.Pool, Lane: nd.Lane,
			Layer: NoLayer, Slot: nd.Slot, Order: nd.Order,
			X: nd.X, Y: nd.Y, XOffset: nd.XOffset, YOffset: nd.YOffset,
			CrossesLanes: nd.CrossesLanes, CrossTarget: nd.CrossTarget,
		}
		if nd.Layer != nil {
			n.Layer = *nd.Layer
		}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", nd.ID, err)
		}
	}
	for _, ed := range doc.Edges {
		e := Edge{From: ed.From, To: ed.To, Label: ed.Label, Pool: ed.Pool, Lane: ed.Lane, Points: ed.Points}
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("edge %d->%d: %w", ed.From, ed.To, err)
		}
	}
	g.LastNodeID = max(g.LastNodeID, doc.LastNodeID)
	return g, nil
}

func boxOf(r Rect) *Box {
	if r == (Rect{}) {
		return nil
	}
	return &Box{r.X, r.Y, r.W, r.H}
}

func setRect(x, y, w, h *float64, b *Box) {
	if b == nil {
		return
	}
	*x, *y, *w, *h = b.X, b.Y, b.W, b.H
}

// =============================================================================
// Encoding
// =============================================================================

// Marshal encodes g in the given format.
func Marshal(g *Graph, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes g to w in the given format.
func Write(w io.Writer, g *Graph, f Format) error {
	doc := ToDocument(g)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Read decodes a graph from r in the given format.
func Read(r io.Reader, f Format) (*Graph, error) {
	var doc Document
	switch f {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	return FromDocument(doc)
}

// ReadFile reads a graph document, choosing the codec from the extension.
func ReadFile(path string) (*Graph, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return Read(file, f)
}

// WriteFile writes g to path, choosing the codec from the extension.
func WriteFile(g *Graph, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, g, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
