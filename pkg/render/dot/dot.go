// Package dot exports a laid-out graph as Graphviz DOT and renders an SVG
// preview from it.
//
// Node positions are pinned with "pos" attributes and the graph is drawn by
// the neato engine, so the preview shows the computed layout rather than
// one Graphviz would choose. Lanes are drawn as dashed boxes behind the
// nodes. Edges are straight; routed waypoints live in the BPMN output.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Options configures DOT export.
type Options struct {
	// Detailed appends layer and slot to node labels.
	Detailed bool
}

// dpi converts pixels to Graphviz inches.
const dpi = 72.0

// ToDOT converts a laid-out graph to DOT.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fixedsize=true, fontsize=10, style=filled, fillcolor=white];\n")
	buf.WriteString("\n")

	for _, p := range g.Pools {
		for _, l := range p.Lanes {
			fmt.Fprintf(&buf, "  %q [%s];\n", "lane:"+p.Name+"/"+l.Name, strings.Join(laneAttrs(p, l), ", "))
		}
	}

	buf.WriteString("\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(n), strings.Join(nodeAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
		}
		// Unrouted edges stand out in the preview.
		if len(e.Points) == 0 {
			attrs = append(attrs, "style=dashed", "color=red")
		}
		fmt.Fprintf(&buf, "  %q -> %q", strconv.Itoa(e.From), strconv.Itoa(e.To))
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, " [%s]", strings.Join(attrs, ", "))
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(n *graph.Node) string { return strconv.Itoa(n.ID) }

// pos returns a pinned centre. Graphviz y grows upwards.
func pos(r graph.Rect) string {
	c := r.Center()
	return fmt.Sprintf("pos=\"%.2f,%.2f!\"", c.X, -c.Y)
}

func size(r graph.Rect) []string {
	return []string{
		fmt.Sprintf("width=%.4f", r.W/dpi),
		fmt.Sprintf("height=%.4f", r.H/dpi),
	}
}

func laneAttrs(p *graph.Pool, l *graph.Lane) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", p.Name+" / "+l.Name),
		"shape=box", "style=dashed", "color=grey", "fontcolor=grey", "labelloc=t",
		pos(l.Bounds()),
	}
	return append(attrs, size(l.Bounds())...)
}

func nodeAttrs(n *graph.Node, detailed bool) []string {
	label := n.DisplayLabel()
	if detailed {
		label = fmt.Sprintf("%s\nlayer %d slot %d", label, n.Layer, n.Slot)
	}
	attrs := []string{fmt.Sprintf("label=%q", label), "shape=" + shape(n.Kind)}
	switch {
	case n.Kind.IsEnd():
		attrs = append(attrs, "peripheries=2")
	case n.Kind.IsExpanded():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case !n.Kind.IsEvent() && !n.Kind.IsGateway() && !n.Kind.IsData():
		attrs = append(attrs, "style=\"rounded,filled\"")
	}
	attrs = append(attrs, pos(n.Bounds()))
	return append(attrs, size(n.Bounds())...)
}

func shape(k graph.Kind) string {
	switch {
	case k.IsEvent():
		return "circle"
	case k.IsGateway():
		return "diamond"
	case k == graph.KindDataStore:
		return "cylinder"
	case k == graph.KindDataObject:
		return "note"
	}
	return "box"
}

// RenderSVG renders a DOT graph to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element with one that scales
// cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
