// Package lettastream is a streaming client for Letta agent servers. It
// opens the agent's message-stream endpoint, consumes the incrementally
// delivered event stream, classifies each event, forwards a filtered subset
// to a caller-supplied sink, and assembles the final answer.
package lettastream

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/haowjy/letta-stream-go/diag"
	"github.com/haowjy/letta-stream-go/sse"
	"github.com/haowjy/letta-stream-go/transport"
)

// runState tracks where a run is in its lifecycle. Frames are processed
// strictly sequentially within a run; independent runs may execute
// concurrently, sharing only the read-only config.
type runState int

const (
	stateIdle runState = iota
	stateRequesting
	stateStreaming
	stateCompleted
	stateFailed
)

func (s runState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateRequesting:
		return "requesting"
	case stateStreaming:
		return "streaming"
	case stateCompleted:
		return "completed"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Client drives runs against one agent. Safe for concurrent use.
type Client struct {
	cfg      *Config
	streamer transport.Streamer
	rec      *diag.Recorder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithStreamer replaces the transport. Mainly for tests and custom
// transports; the default is a retrying HTTP client built from the config.
func WithStreamer(s transport.Streamer) ClientOption {
	return func(c *Client) { c.streamer = s }
}

// WithRecorder replaces the diagnostic recorder derived from the config.
func WithRecorder(r *diag.Recorder) ClientOption {
	return func(c *Client) { c.rec = r }
}

// New creates a Client from an immutable config snapshot.
func New(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, rec: diag.Nop}
	if cfg.Diagnostics.Enabled {
		c.rec = diag.New(cfg.Diagnostics.Path)
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.streamer == nil {
		hc, err := transport.NewClient(cfg.BaseURL, cfg.AgentID, cfg.Credential)
		if err != nil {
			return nil, err
		}
		c.streamer = transport.NewRetrying(hc)
	}
	return c, nil
}

// RunOption configures a single run.
type RunOption func(*runOptions)

type runOptions struct {
	sink Sink
	user DisplayToggles
}

// WithSink registers the consumer callback receiving forwarded events.
func WithSink(sink Sink) RunOption {
	return func(o *runOptions) { o.sink = sink }
}

// WithUserToggles narrows the system display toggles for this run. A user
// toggle can only disable what the system permits, never enable more.
func WithUserToggles(user DisplayToggles) RunOption {
	return func(o *runOptions) { o.user = user }
}

func newRunOptions(opts []RunOption) *runOptions {
	o := &runOptions{user: AllDisplayToggles()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run sends the conversation and blocks until the agent's answer is
// complete. On a terminal failure the returned RunResult still carries the
// partial answer accumulated before the stream broke.
func (c *Client) Run(ctx context.Context, messages []Message, opts ...RunOption) (*RunResult, error) {
	events, err := c.Stream(ctx, messages, opts...)
	if err != nil {
		return &RunResult{Err: err}, err
	}

	var parts []string
	var runErr error
	for ev := range events {
		if ev.Err != nil {
			runErr = ev.Err
			continue
		}
		if ev.Text != "" {
			parts = append(parts, ev.Text)
		}
	}
	return &RunResult{Answer: strings.Join(parts, "\n"), Err: runErr}, runErr
}

// Stream sends the conversation and returns a lazy, single-pass sequence
// of answer increments. The channel closes on completion; a terminal error
// is delivered as the final event. Establishment failures (including retry
// exhaustion) are returned synchronously. The caller must drain the channel
// until it closes.
func (c *Client) Stream(ctx context.Context, messages []Message, opts ...RunOption) (<-chan StreamEvent, error) {
	o := newRunOptions(opts)
	em := newEmitter(o.sink, ResolvePolicy(c.cfg.Display, o.user))

	if len(messages) == 0 {
		runErr := &RunError{Message: "no messages provided", Err: ErrNoMessages}
		em.error(runErr)
		return nil, runErr
	}

	runID := uuid.NewString()
	log := logger.With("run_id", runID, "agent_id", c.cfg.AgentID)

	ctx, span := tracer.Start(ctx, "lettastream.run",
		trace.WithAttributes(attribute.String("letta.agent_id", c.cfg.AgentID)))

	state := stateRequesting
	log.DebugContext(ctx, "establishing agent stream", "state", state.String())
	em.status("processing", "Processing request...", false)

	body, err := c.streamer.Open(ctx, buildPayload(messages))
	if err != nil {
		state = stateFailed
		runErr := &RunError{Message: "failed to establish stream", Err: err}
		log.ErrorContext(ctx, "stream establishment failed", "state", state.String(), "error", err)
		c.recordError(runErr)
		em.error(runErr)
		span.RecordError(runErr)
		span.End()
		return nil, runErr
	}

	state = stateStreaming
	log.DebugContext(ctx, "stream established", "state", state.String())

	out := make(chan StreamEvent, 10) // buffered to keep frame processing ahead of a slow consumer
	go func() {
		defer close(out)
		defer span.End()
		defer body.Close()

		// A caller-initiated cancel must close the connection promptly,
		// even while a read is blocked on the wire.
		stop := context.AfterFunc(ctx, func() { body.Close() })
		defer stop()

		if err := c.consume(ctx, body, em, out); err != nil {
			state = stateFailed
			log.ErrorContext(ctx, "run failed", "state", state.String(), "error", err)
			c.recordError(err)
			em.error(err)
			span.RecordError(err)
			out <- StreamEvent{Err: err}
			return
		}

		state = stateCompleted
		log.DebugContext(ctx, "run completed", "state", state.String())
		em.status("complete", "", true)
		c.rec.Record(diag.TypeStatus, map[string]any{"status": "complete", "done": true})
	}()

	return out, nil
}

// consume processes frames in strict arrival order until the terminal
// marker, a clean end of stream, or a read error. Mid-stream read errors
// are returned, never retried: partial output already delivered must stand.
func (c *Client) consume(ctx context.Context, body io.Reader, em *emitter, out chan<- StreamEvent) error {
	sc := sse.NewScanner(body)
	for {
		frame, err := sc.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return &RunError{Message: "run cancelled", Err: ctx.Err()}
			}
			return &RunError{Message: "stream read failed", Err: err}
		}

		c.rec.Record(diag.TypeRawFrame, string(frame.Raw))
		if frame.Done {
			c.rec.Record(diag.TypeDoneMarker, sse.DonePayload)
			return nil
		}
		if !frame.IsData() {
			continue
		}

		ev := ClassifyFrame(frame.Data)
		if ev.Kind == EventParseError {
			c.rec.Record(diag.TypeParseError, map[string]any{
				"error": ev.Err.Error(),
				"chunk": ev.Raw,
			})
			em.warning("Failed to parse chunk", ev.Raw, ev.Err)
			continue
		}
		c.rec.Record(diag.TypeParsedFrame, ev.Fields)

		switch ev.Kind {
		case EventAssistantText:
			// Empty content is a valid payload and a no-op.
			if ev.Content == "" {
				continue
			}
			c.rec.Record(diag.TypeAssistantMessage, ev.Content)
			select {
			case out <- StreamEvent{Text: ev.Content}:
			case <-ctx.Done():
				return &RunError{Message: "run cancelled", Err: ctx.Err()}
			}
			em.message(ev.Content)

		case EventUsageStatistics:
			if em.policy.ShowUsage {
				c.rec.Record(diag.TypeUsageStats, ev.Fields)
				em.usage(ev.Fields)
			}

		case EventReasoningStep:
			if em.policy.ShowReasoning {
				c.rec.Record(diag.TypeReasoning, map[string]any{
					"step":    ev.Step,
					"content": ev.Content,
				})
				em.reasoning(ev.Step, ev.Content)
			}

		case EventUnrecognized:
			// Already captured as a parsed frame; never forwarded.
		}
	}
}

func (c *Client) recordError(err error) {
	c.rec.Record(diag.TypeError, map[string]any{
		"error": err.Error(),
		"type":  errorTypeName(err),
	})
}
