package lettastream

import "github.com/haowjy/letta-stream-go/transport"

// Message roles accepted from callers. Anything else is dropped during
// formatting.
const (
	RoleUser      = "user"
	RoleSystem    = "system"
	RoleAssistant = "assistant"
)

// Message is a single message in the conversation history.
type Message struct {
	// Role is "user", "system", or "assistant".
	Role string

	// Content is the message text, treated as opaque UTF-8.
	Content string
}

// formatMessages converts caller messages to the wire format: unsupported
// roles are skipped, system stays system, everything else becomes user.
// An empty result falls back to a single greeting message.
func formatMessages(messages []Message) []transport.Message {
	formatted := make([]transport.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleUser, RoleSystem, RoleAssistant:
		default:
			continue
		}
		role := RoleUser
		if msg.Role == RoleSystem {
			role = RoleSystem
		}
		formatted = append(formatted, transport.Message{Role: role, Content: msg.Content})
	}
	if len(formatted) == 0 {
		formatted = append(formatted, transport.Message{Role: RoleUser, Content: "Hello"})
	}
	return formatted
}

// buildPayload builds the stream request for one run. Only the most recent
// message is sent upstream: the agent keeps its own conversation memory
// server-side, and resending history would duplicate context.
func buildPayload(messages []Message) *transport.Payload {
	formatted := formatMessages(messages)
	return &transport.Payload{
		Messages:     formatted[len(formatted)-1:],
		StreamSteps:  true,
		StreamTokens: true,
	}
}
