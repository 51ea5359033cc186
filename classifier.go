package lettastream

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Wire discriminator values (the record's "message_type" field).
const (
	messageTypeAssistant = "assistant_message"
	messageTypeUsage     = "usage_statistics"
	messageTypeReasoning = "reasoning_message"
)

// ClassifyFrame parses a data frame's payload and determines its kind.
// It never fails: malformed JSON yields an EventParseError event carrying
// the offending text, and unknown discriminators yield EventUnrecognized.
func ClassifyFrame(payload []byte) Event {
	raw := string(payload)

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Event{Kind: EventParseError, Raw: raw, Err: err}
	}

	ev := Event{Fields: fields, Raw: raw}
	switch gjson.GetBytes(payload, "message_type").String() {
	case messageTypeAssistant:
		ev.Kind = EventAssistantText
		ev.Content = gjson.GetBytes(payload, "content").String()
	case messageTypeUsage:
		ev.Kind = EventUsageStatistics
	case messageTypeReasoning:
		ev.Kind = EventReasoningStep
		ev.Content = gjson.GetBytes(payload, "content").String()
		ev.Step = "unknown"
		if step := gjson.GetBytes(payload, "step"); step.Exists() {
			ev.Step = step.String()
		}
	default:
		ev.Kind = EventUnrecognized
	}
	return ev
}
