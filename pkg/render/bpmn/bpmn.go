// Package bpmn writes a laid-out graph as a BPMN 2.0 document with diagram
// interchange (DI) geometry, readable by Camunda Modeler and bpmn.io.
//
// Every pool becomes a participant with its own process and lane set.
// Edges inside a pool become sequence flows, edges between pools become
// message flows and edges touching data elements become associations.
// Edges the router could not route are drawn centre to centre.
package bpmn

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/swimlane/pkg/graph"
)

const (
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	nsBPMN   = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsBPMNDI = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDC     = "http://www.omg.org/spec/DD/20100524/DC"
	nsDI     = "http://www.omg.org/spec/DD/20100524/DI"
)

// Exporter is written to the exporter attribute of the root element.
var Exporter = "swimlane"

// Marshal returns the BPMN document for g.
func Marshal(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes g to w.
func Write(w io.Writer, g *graph.Graph) error {
	doc := build(g)
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode bpmn: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func build(g *graph.Graph) *definitions {
	doc := &definitions{
		XSI:             nsXSI,
		BPMN:            nsBPMN,
		BPMNDI:          nsBPMNDI,
		DC:              nsDC,
		DI:              nsDI,
		ID:              "Definitions_1",
		TargetNamespace: "http://bpmn.io/schema/bpmn",
		Exporter:        Exporter,
		Collaboration:   collaboration{ID: "Collaboration_1"},
		Diagram: diagram{
			ID:    "BPMNDiagram_1",
			Plane: plane{ID: "BPMNPlane_1", BPMNElement: "Collaboration_1"},
		},
	}
	pl := &doc.Diagram.Plane

	procs := make(map[string]*process, len(g.Pools))
	for _, p := range g.Pools {
		pid := sanitize(p.Name)
		doc.Collaboration.Participants = append(doc.Collaboration.Participants, participant{
			ID:         "Participant_" + pid,
			Name:       p.Name,
			ProcessRef: "Process_" + pid,
		})
		pr := &process{ID: "Process_" + pid, IsExecutable: true, LaneSet: &laneSet{ID: "LaneSet_" + pid}}
		pl.Shapes = append(pl.Shapes, newShape("Participant_"+pid, p.Bounds(), true))

		for _, l := range p.Lanes {
			lid := laneID(p.Name, l.Name)
			ln := lane{ID: lid, Name: l.Name}
			for _, n := range l.Nodes {
				ln.FlowNodeRefs = append(ln.FlowNodeRefs, ElementID(n))
			}
			pr.LaneSet.Lanes = append(pr.LaneSet.Lanes, ln)
			pl.Shapes = append(pl.Shapes, newShape(lid, l.Bounds(), true))
		}
		procs[p.Name] = pr
	}

	for _, n := range g.Nodes() {
		pr := procs[n.Pool]
		if pr == nil {
			continue
		}
		pr.Elements = append(pr.Elements, flowNode(g, n)...)
		s := newShape(ElementID(n), n.Bounds(), false)
		if n.Kind.IsExpanded() {
			s.IsExpanded = "true"
		}
		pl.Shapes = append(pl.Shapes, s)
	}

	for _, e := range g.Edges {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		if from == nil || to == nil {
			continue
		}
		id := FlowID(e)
		switch {
		case from.Kind.IsData() || to.Kind.IsData():
			if pr := procs[from.Pool]; pr != nil {
				pr.Associations = append(pr.Associations, association{ID: id, SourceRef: ElementID(from), TargetRef: ElementID(to)})
			}
		case from.Pool != to.Pool:
			doc.Collaboration.MessageFlows = append(doc.Collaboration.MessageFlows, flow{
				ID: id, Name: e.Label, SourceRef: ElementID(from), TargetRef: ElementID(to),
			})
		default:
			procs[from.Pool].Flows = append(procs[from.Pool].Flows, flow{
				ID: id, Name: e.Label, SourceRef: ElementID(from), TargetRef: ElementID(to),
			})
		}
		pl.Edges = append(pl.Edges, newEdge(id, waypoints(e, from, to)))
	}

	for _, p := range g.Pools {
		doc.Processes = append(doc.Processes, *procs[p.Name])
	}
	return doc
}

func waypoints(e *graph.Edge, from, to *graph.Node) []graph.Point {
	if len(e.Points) >= 2 {
		return e.Points
	}
	return []graph.Point{from.Bounds().Center(), to.Bounds().Center()}
}

// ElementID returns the BPMN id of a node, such as "Activity_3".
func ElementID(n *graph.Node) string {
	return fmt.Sprintf("%s_%d", idPrefix(n.Kind), n.ID)
}

// FlowID returns the BPMN id of an edge.
func FlowID(e *graph.Edge) string {
	return fmt.Sprintf("Flow_%d_%d", e.From, e.To)
}

func laneID(pool, lane string) string {
	return "Lane_" + sanitize(pool) + "_" + sanitize(lane)
}

// sanitize maps a name onto the NCName characters BPMN ids allow.
func sanitize(name string) string {
	if name == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			return r
		}
		return '_'
	}, name)
}
