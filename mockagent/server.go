// Package mockagent implements an HTTP handler that speaks the Letta
// message-stream protocol with generated lorem ipsum content. It exists for
// tests and offline development: no agent server, credentials, or network
// access required.
package mockagent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"
)

// Server serves /v1/agents/{id}/messages/stream with generated responses.
type Server struct {
	generator *loremgen.Lorem

	password    string
	reply       string
	sentences   int
	tokenStream bool
	reasoning   bool
	usage       bool
	frameDelay  time.Duration
	failAfter   int // abruptly drop the connection after this many data frames; 0 = never
}

// Option configures a Server.
type Option func(*Server)

// WithPassword makes the server enforce the X-BARE-PASSWORD header.
func WithPassword(password string) Option {
	return func(s *Server) { s.password = password }
}

// WithCannedReply makes every response carry exactly this text instead of
// generated lorem ipsum. Useful for deterministic tests.
func WithCannedReply(text string) Option {
	return func(s *Server) { s.reply = text }
}

// WithSentences sets how many lorem sentences a generated reply contains.
func WithSentences(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sentences = n
		}
	}
}

// WithTokenStreaming splits assistant content into one frame per word,
// simulating stream_tokens behaviour.
func WithTokenStreaming(enabled bool) Option {
	return func(s *Server) { s.tokenStream = enabled }
}

// WithReasoning controls whether a reasoning_message frame precedes the
// answer.
func WithReasoning(enabled bool) Option {
	return func(s *Server) { s.reasoning = enabled }
}

// WithUsage controls whether a usage_statistics frame follows the answer.
func WithUsage(enabled bool) Option {
	return func(s *Server) { s.usage = enabled }
}

// WithFrameDelay inserts a pause between frames.
func WithFrameDelay(d time.Duration) Option {
	return func(s *Server) { s.frameDelay = d }
}

// WithFailureAfter drops the connection abruptly after n data frames,
// without a terminal marker. Simulates a mid-stream transport failure.
func WithFailureAfter(n int) Option {
	return func(s *Server) { s.failAfter = n }
}

// New creates a mock agent server.
func New(opts ...Option) *Server {
	s := &Server{
		generator: loremgen.New(),
		sentences: 3,
		reasoning: true,
		usage:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/messages/stream") {
		http.NotFound(w, r)
		return
	}
	if s.password != "" && r.Header.Get("X-BARE-PASSWORD") != "password "+s.password {
		http.Error(w, `{"detail":"invalid password"}`, http.StatusUnauthorized)
		return
	}

	var payload struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Messages) == 0 {
		http.Error(w, `{"detail":"messages required"}`, http.StatusUnprocessableEntity)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	st := &stream{w: w, flusher: flusher, ctx: r.Context(), delay: s.frameDelay, failAfter: s.failAfter}

	if s.reasoning {
		st.writeFrame(map[string]any{
			"id":           uuid.NewString(),
			"message_type": "reasoning_message",
			"step":         "planning",
			"content":      s.generator.Sentence(4, 8),
		})
	}

	reply := s.reply
	if reply == "" {
		var sentences []string
		for i := 0; i < s.sentences; i++ {
			sentences = append(sentences, s.generator.Sentence(5, 12))
		}
		reply = strings.Join(sentences, " ")
	}

	words := 0
	if s.tokenStream {
		for _, word := range strings.Fields(reply) {
			words++
			st.writeFrame(map[string]any{
				"id":           uuid.NewString(),
				"message_type": "assistant_message",
				"content":      word + " ",
			})
		}
	} else {
		words = len(strings.Fields(reply))
		st.writeFrame(map[string]any{
			"id":           uuid.NewString(),
			"message_type": "assistant_message",
			"content":      reply,
		})
	}

	if s.usage {
		st.writeFrame(map[string]any{
			"message_type":      "usage_statistics",
			"prompt_tokens":     len(strings.Fields(payload.Messages[len(payload.Messages)-1].Content)),
			"completion_tokens": words,
			"total_tokens":      words,
			"step_count":        1,
		})
	}

	st.writeDone()
}

// stream tracks frame emission for one response.
type stream struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	ctx       context.Context
	delay     time.Duration
	failAfter int
	written   int
	dropped   bool
}

func (st *stream) writeFrame(record map[string]any) {
	if st.dropped {
		return
	}
	if st.failAfter > 0 && st.written >= st.failAfter {
		// Drop the connection mid-stream: panic with ErrAbortHandler
		// makes net/http sever the connection without a clean close.
		st.dropped = true
		panic(http.ErrAbortHandler)
	}
	if st.delay > 0 {
		select {
		case <-time.After(st.delay):
		case <-st.ctx.Done():
			st.dropped = true
			return
		}
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	fmt.Fprintf(st.w, "data: %s\n\n", raw)
	st.flusher.Flush()
	st.written++
}

func (st *stream) writeDone() {
	if st.dropped {
		return
	}
	if st.failAfter > 0 && st.written >= st.failAfter {
		st.dropped = true
		panic(http.ErrAbortHandler)
	}
	fmt.Fprint(st.w, "data: [DONE]\n\n")
	st.flusher.Flush()
}
