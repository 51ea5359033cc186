package lettastream

import "fmt"

// emitter forwards classified events to the caller's sink, applying the
// resolved display policy. A nil sink makes every emit a no-op; answer
// accumulation is unaffected either way.
type emitter struct {
	sink   Sink
	policy DisplayPolicy
}

func newEmitter(sink Sink, policy DisplayPolicy) *emitter {
	return &emitter{sink: sink, policy: policy}
}

func (e *emitter) emit(eventType string, data map[string]any) {
	if e.sink == nil {
		return
	}
	e.sink(SinkEvent{Type: eventType, Data: data})
}

// message delivers an answer increment. Increments are gated only by sink
// presence, not by the event display toggles.
func (e *emitter) message(content string) {
	e.emit(SinkTypeMessage, map[string]any{"content": content})
}

func (e *emitter) status(status, description string, done bool) {
	if !e.policy.ShowEvents {
		return
	}
	e.emit(SinkTypeStatus, map[string]any{
		"status":      status,
		"description": description,
		"done":        done,
	})
}

func (e *emitter) usage(fields map[string]any) {
	if !e.policy.ShowEvents {
		return
	}
	e.emit(SinkTypeUsage, fields)
}

func (e *emitter) reasoning(step, content string) {
	if !e.policy.ShowEvents {
		return
	}
	e.emit(SinkTypeReasoning, map[string]any{"step": step, "content": content})
}

func (e *emitter) warning(message, chunk string, cause error) {
	if !e.policy.ShowEvents {
		return
	}
	e.emit(SinkTypeWarning, map[string]any{
		"message": message,
		"chunk":   chunk,
		"error":   cause.Error(),
	})
}

// error delivers the terminal failure event. It honors ShowEvents like
// every other non-message emit: a consumer that disabled event display
// gets no error event and learns about the failure from the returned
// error alone.
func (e *emitter) error(err error) {
	if !e.policy.ShowEvents {
		return
	}
	e.emit(SinkTypeError, map[string]any{
		"error": err.Error(),
		"type":  fmt.Sprintf("%T", err),
	})
}
