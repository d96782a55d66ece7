package graph

import "strings"

// Kind identifies the process element a node renders as.
// The zero value renders as a plain task.
type Kind string

// Events.
const (
	KindStart            Kind = "start"
	KindStartTimer       Kind = "start_timer"
	KindStartSignal      Kind = "start_signal"
	KindStartMessage     Kind = "start_message"
	KindStartConditional Kind = "start_conditional"

	KindEnd             Kind = "end"
	KindEndError        Kind = "end_error"
	KindEndCancel       Kind = "end_cancel"
	KindEndSignal       Kind = "end_signal"
	KindEndMessage      Kind = "end_message"
	KindEndTerminate    Kind = "end_terminate"
	KindEndEscalation   Kind = "end_escalation"
	KindEndCompensation Kind = "end_compensation"

	KindIntermediate Kind = "intermediate"
	KindMessage      Kind = "message"
	KindTimer        Kind = "timer"
	KindConditional  Kind = "conditional"
	KindSignal       Kind = "signal"
	KindError        Kind = "error"
	KindEscalation   Kind = "escalation"
	KindCompensate   Kind = "compensate"
	KindTerminate    Kind = "terminate"
)

// Gateways.
const (
	KindGatewayExclusive Kind = "gateway_exclusive"
	KindGatewayInclusive Kind = "gateway_inclusive"
	KindGatewayParallel  Kind = "gateway_parallel"
	KindGatewayJoin      Kind = "gateway_join"
)

// Activities.
const (
	KindTask             Kind = "task"
	KindTaskUser         Kind = "task_user"
	KindTaskService      Kind = "task_service"
	KindTaskBusinessRule Kind = "task_business_rule"
	KindTaskScript       Kind = "task_script"
	KindCallActivity     Kind = "call_activity"

	KindSubprocess      Kind = "subprocess"
	KindEventSubprocess Kind = "event_subprocess"
	KindTransaction     Kind = "transaction"
)

// Data.
const (
	KindDataStore  Kind = "data_store"
	KindDataObject Kind = "data_object"
)

// Size is a rendered width and height in pixels.
type Size struct {
	W, H float64
}

// Reference sizes used by the size table.
var (
	SizeEvent      = Size{36, 36}
	SizeGateway    = Size{50, 50}
	SizeTask       = Size{100, 80}
	SizeSubprocess = Size{350, 200}
	SizeDataObject = Size{36, 50}
)

var kindSizes = map[Kind]Size{
	KindStart:            SizeEvent,
	KindStartTimer:       SizeEvent,
	KindStartSignal:      SizeEvent,
	KindStartMessage:     SizeEvent,
	KindStartConditional: SizeEvent,
	KindEnd:              SizeEvent,
	KindEndError:         SizeEvent,
	KindEndCancel:        SizeEvent,
	KindEndSignal:        SizeEvent,
	KindEndMessage:       SizeEvent,
	KindEndTerminate:     SizeEvent,
	KindEndEscalation:    SizeEvent,
	KindEndCompensation:  SizeEvent,
	KindIntermediate:     SizeEvent,
	KindMessage:          SizeEvent,
	KindTimer:            SizeEvent,
	KindConditional:      SizeEvent,
	KindSignal:           SizeEvent,
	KindError:            SizeEvent,
	KindEscalation:       SizeEvent,
	KindCompensate:       SizeEvent,
	KindTerminate:        SizeEvent,

	KindGatewayExclusive: SizeGateway,
	KindGatewayInclusive: SizeGateway,
	KindGatewayParallel:  SizeGateway,
	KindGatewayJoin:      SizeGateway,
	KindDataStore:        SizeGateway,

	KindDataObject: SizeDataObject,

	KindTask:             SizeTask,
	KindTaskUser:         SizeTask,
	KindTaskService:      SizeTask,
	KindTaskBusinessRule: SizeTask,
	KindTaskScript:       SizeTask,
	KindCallActivity:     SizeTask,

	KindSubprocess:      SizeSubprocess,
	KindEventSubprocess: SizeSubprocess,
	KindTransaction:     SizeSubprocess,
}

// Size returns the rendered size of the element kind.
// Unknown and empty kinds render as tasks.
func (k Kind) Size() Size {
	if s, ok := kindSizes[k]; ok {
		return s
	}
	return SizeTask
}

// Known reports whether k is one of the kinds in the size table.
func (k Kind) Known() bool {
	_, ok := kindSizes[k]
	return ok
}

// IsEvent reports whether the kind is a start, end or intermediate event.
func (k Kind) IsEvent() bool { return k.Known() && k.Size() == SizeEvent }

// IsStart reports whether the kind is a start event.
func (k Kind) IsStart() bool { return strings.HasPrefix(string(k), "start") }

// IsEnd reports whether the kind is an end event.
func (k Kind) IsEnd() bool { return strings.HasPrefix(string(k), "end") }

// IsGateway reports whether the kind is a gateway.
func (k Kind) IsGateway() bool { return strings.HasPrefix(string(k), "gateway") }

// IsData reports whether the kind is a data store or data object.
func (k Kind) IsData() bool { return k == KindDataStore || k == KindDataObject }

// IsExpanded reports whether the kind renders as an expanded container.
func (k Kind) IsExpanded() bool { return k.Size() == SizeSubprocess }
