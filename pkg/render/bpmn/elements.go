package bpmn

import (
	"encoding/xml"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// Element names carry their namespace prefix verbatim so the output uses
// the bpmn:/bpmndi: prefixes modelers expect.

type definitions struct {
	XMLName         xml.Name `xml:"bpmn:definitions"`
	XSI             string   `xml:"xmlns:xsi,attr"`
	BPMN            string   `xml:"xmlns:bpmn,attr"`
	BPMNDI          string   `xml:"xmlns:bpmndi,attr"`
	DC              string   `xml:"xmlns:dc,attr"`
	DI              string   `xml:"xmlns:di,attr"`
	ID              string   `xml:"id,attr"`
	TargetNamespace string   `xml:"targetNamespace,attr"`
	Exporter        string   `xml:"exporter,attr"`

	Collaboration collaboration `xml:"bpmn:collaboration"`
	Processes     []process     `xml:"bpmn:process"`
	Diagram       diagram       `xml:"bpmndi:BPMNDiagram"`
}

type collaboration struct {
	ID           string        `xml:"id,attr"`
	Participants []participant `xml:"bpmn:participant"`
	MessageFlows []flow        `xml:"bpmn:messageFlow"`
}

type participant struct {
	ID         string `xml:"id,attr"`
	Name       string `xml:"name,attr,omitempty"`
	ProcessRef string `xml:"processRef,attr"`
}

type process struct {
	ID           string        `xml:"id,attr"`
	IsExecutable bool          `xml:"isExecutable,attr"`
	LaneSet      *laneSet      `xml:"bpmn:laneSet"`
	// Elements are named by their XMLName.
	Elements     []element
	Flows        []flow        `xml:"bpmn:sequenceFlow"`
	Associations []association `xml:"bpmn:association"`
}

type laneSet struct {
	ID    string `xml:"id,attr"`
	Lanes []lane `xml:"bpmn:lane"`
}

type lane struct {
	ID           string   `xml:"id,attr"`
	Name         string   `xml:"name,attr,omitempty"`
	FlowNodeRefs []string `xml:"bpmn:flowNodeRef"`
}

type element struct {
	XMLName          xml.Name
	ID               string   `xml:"id,attr"`
	Name             string   `xml:"name,attr,omitempty"`
	TriggeredByEvent bool     `xml:"triggeredByEvent,attr,omitempty"`
	DataObjectRef    string   `xml:"dataObjectRef,attr,omitempty"`
	Incoming         []string `xml:"bpmn:incoming"`
	Outgoing         []string `xml:"bpmn:outgoing"`
	Definition       *definition
}

type definition struct {
	XMLName xml.Name
	ID      string `xml:"id,attr"`
}

type flow struct {
	ID        string `xml:"id,attr"`
	Name      string `xml:"name,attr,omitempty"`
	SourceRef string `xml:"sourceRef,attr"`
	TargetRef string `xml:"targetRef,attr"`
}

type association struct {
	ID        string `xml:"id,attr"`
	SourceRef string `xml:"sourceRef,attr"`
	TargetRef string `xml:"targetRef,attr"`
}

type diagram struct {
	ID    string `xml:"id,attr"`
	Plane plane  `xml:"bpmndi:BPMNPlane"`
}

type plane struct {
	ID          string  `xml:"id,attr"`
	BPMNElement string  `xml:"bpmnElement,attr"`
	Shapes      []shape `xml:"bpmndi:BPMNShape"`
	Edges       []edge  `xml:"bpmndi:BPMNEdge"`
}

type shape struct {
	ID           string `xml:"id,attr"`
	BPMNElement  string `xml:"bpmnElement,attr"`
	IsHorizontal string `xml:"isHorizontal,attr,omitempty"`
	IsExpanded   string `xml:"isExpanded,attr,omitempty"`
	Bounds       bounds `xml:"dc:Bounds"`
}

type bounds struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type edge struct {
	ID          string     `xml:"id,attr"`
	BPMNElement string     `xml:"bpmnElement,attr"`
	Waypoints   []waypoint `xml:"di:waypoint"`
}

type waypoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

func newShape(id string, r graph.Rect, horizontal bool) shape {
	s := shape{
		ID:          id + "_di",
		BPMNElement: id,
		Bounds:      bounds{X: r.X, Y: r.Y, Width: r.W, Height: r.H},
	}
	if horizontal {
		s.IsHorizontal = "true"
	}
	return s
}

func newEdge(id string, pts []graph.Point) edge {
	e := edge{ID: id + "_di", BPMNElement: id}
	for _, p := range pts {
		e.Waypoints = append(e.Waypoints, waypoint{X: p.X, Y: p.Y})
	}
	return e
}

func name(local string) xml.Name { return xml.Name{Local: "bpmn:" + local} }
