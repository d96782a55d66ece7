package bpmn

import (
	"fmt"

	"github.com/matzehuels/swimlane/pkg/graph"
)

// tags maps a kind to its BPMN element and the event definition it
// carries, if any.
var tags = map[graph.Kind]struct{ element, definition string }{
	graph.KindStart:            {"startEvent", ""},
	graph.KindStartTimer:       {"startEvent", "timerEventDefinition"},
	graph.KindStartSignal:      {"startEvent", "signalEventDefinition"},
	graph.KindStartMessage:     {"startEvent", "messageEventDefinition"},
	graph.KindStartConditional: {"startEvent", "conditionalEventDefinition"},

	graph.KindEnd:             {"endEvent", ""},
	graph.KindEndError:        {"endEvent", "errorEventDefinition"},
	graph.KindEndCancel:       {"endEvent", "cancelEventDefinition"},
	graph.KindEndSignal:       {"endEvent", "signalEventDefinition"},
	graph.KindEndMessage:      {"endEvent", "messageEventDefinition"},
	graph.KindEndTerminate:    {"endEvent", "terminateEventDefinition"},
	graph.KindEndEscalation:   {"endEvent", "escalationEventDefinition"},
	graph.KindEndCompensation: {"endEvent", "compensateEventDefinition"},

	graph.KindIntermediate: {"intermediateThrowEvent", ""},
	graph.KindMessage:      {"intermediateCatchEvent", "messageEventDefinition"},
	graph.KindTimer:        {"intermediateCatchEvent", "timerEventDefinition"},
	graph.KindConditional:  {"intermediateCatchEvent", "conditionalEventDefinition"},
	graph.KindSignal:       {"intermediateCatchEvent", "signalEventDefinition"},
	graph.KindError:        {"intermediateThrowEvent", "errorEventDefinition"},
	graph.KindEscalation:   {"intermediateThrowEvent", "escalationEventDefinition"},
	graph.KindCompensate:   {"intermediateThrowEvent", "compensateEventDefinition"},
	graph.KindTerminate:    {"intermediateThrowEvent", "terminateEventDefinition"},

	graph.KindGatewayExclusive: {"exclusiveGateway", ""},
	graph.KindGatewayInclusive: {"inclusiveGateway", ""},
	graph.KindGatewayParallel:  {"parallelGateway", ""},
	graph.KindGatewayJoin:      {"parallelGateway", ""},

	graph.KindTask:             {"task", ""},
	graph.KindTaskUser:         {"userTask", ""},
	graph.KindTaskService:      {"serviceTask", ""},
	graph.KindTaskBusinessRule: {"businessRuleTask", ""},
	graph.KindTaskScript:       {"scriptTask", ""},
	graph.KindCallActivity:     {"callActivity", ""},

	graph.KindSubprocess:      {"subProcess", ""},
	graph.KindEventSubprocess: {"subProcess", ""},
	graph.KindTransaction:     {"transaction", ""},

	graph.KindDataStore:  {"dataStoreReference", ""},
	graph.KindDataObject: {"dataObjectReference", ""},
}

func idPrefix(k graph.Kind) string {
	switch {
	case k.IsStart():
		return "StartEvent"
	case k.IsEnd():
		return "EndEvent"
	case k.IsGateway():
		return "Gateway"
	case k == graph.KindDataStore:
		return "DataStoreReference"
	case k == graph.KindDataObject:
		return "DataObjectReference"
	case k.IsEvent():
		return "Event"
	case k == graph.KindSubprocess:
		return "SubProcess"
	case k == graph.KindEventSubprocess:
		return "EventSubProcess"
	case k == graph.KindTransaction:
		return "Transaction"
	case k == graph.KindCallActivity:
		return "CallActivity"
	}
	return "Activity"
}

// flowNode returns the process elements for n. Data objects also need the
// dataObject they reference.
func flowNode(g *graph.Graph, n *graph.Node) []element {
	t, ok := tags[n.Kind]
	if !ok {
		t = tags[graph.KindTask]
	}
	id := ElementID(n)
	el := element{XMLName: name(t.element), ID: id, Name: n.Label}

	if n.Kind.IsData() {
		if n.Kind != graph.KindDataObject {
			return []element{el}
		}
		obj := fmt.Sprintf("DataObject_%d", n.ID)
		el.DataObjectRef = obj
		return []element{{XMLName: name("dataObject"), ID: obj}, el}
	}

	el.TriggeredByEvent = n.Kind == graph.KindEventSubprocess
	for _, e := range g.Incoming(n.ID) {
		if sequence(g, e) {
			el.Incoming = append(el.Incoming, FlowID(e))
		}
	}
	for _, e := range g.Outgoing(n.ID) {
		if sequence(g, e) {
			el.Outgoing = append(el.Outgoing, FlowID(e))
		}
	}
	if t.definition != "" {
		el.Definition = &definition{XMLName: name(t.definition), ID: fmt.Sprintf("%s_def_%d", t.definition, n.ID)}
	}
	return []element{el}
}

// sequence reports whether e is encoded as a sequence flow.
func sequence(g *graph.Graph, e *graph.Edge) bool {
	from, ok1 := g.Node(e.From)
	to, ok2 := g.Node(e.To)
	return ok1 && ok2 && from.Pool == to.Pool && !from.Kind.IsData() && !to.Kind.IsData()
}
