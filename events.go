package lettastream

// EventKind identifies the semantic kind of a classified stream event.
type EventKind string

const (
	// EventAssistantText carries visible answer content.
	EventAssistantText EventKind = "assistant_text"

	// EventUsageStatistics carries token and step accounting.
	EventUsageStatistics EventKind = "usage_statistics"

	// EventReasoningStep carries an intermediate reasoning step.
	EventReasoningStep EventKind = "reasoning_step"

	// EventUnrecognized is a syntactically valid record with an unknown
	// discriminator. Recorded for diagnostics, never forwarded.
	EventUnrecognized EventKind = "unrecognized"

	// EventParseError is a malformed payload inside an otherwise healthy
	// stream. Recovered locally, never aborts the run.
	EventParseError EventKind = "parse_error"
)

// Event is the classified result of a data frame. Events are immutable
// value objects: produced by the classifier, consumed once by the run,
// then discarded.
type Event struct {
	// Kind is the semantic kind of this event.
	Kind EventKind

	// Content is the text payload for assistant text and reasoning events.
	Content string

	// Step is the reasoning step identifier ("unknown" when absent).
	Step string

	// Fields is the full decoded record.
	Fields map[string]any

	// Raw is the original payload text, kept for diagnostics.
	Raw string

	// Err is the decode failure for parse-error events.
	Err error
}

// Sink event types delivered to the consumer callback.
const (
	SinkTypeStatus    = "status"
	SinkTypeMessage   = "message"
	SinkTypeUsage     = "usage"
	SinkTypeReasoning = "reasoning"
	SinkTypeWarning   = "warning"
	SinkTypeError     = "error"
)

// SinkEvent is one structured event delivered to the consumer callback.
// Delivery order matches upstream wire order.
type SinkEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Sink receives forwarded events. A nil Sink means no forwarding; the run
// still accumulates the answer.
type Sink func(SinkEvent)
