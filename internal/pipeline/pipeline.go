// Package pipeline drives a generation request from arrival to streamed
// delivery: dispatch to the LLM backend, heartbeat statuses while waiting,
// normalization and validation of the output, then paced line-by-line
// streaming. Failures downgrade, they never wedge the stream: bad model
// output becomes a fallback error surface and the stream still completes.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/backend"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/builder"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/normalize"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/prompt"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

// EventType discriminates stream events.
type EventType string

const (
	EventStatus   EventType = "status"
	EventA2UI     EventType = "a2ui"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

// Event is one unit of the delivery stream. A2UI events carry exactly one
// canonical protocol line in Data.
type Event struct {
	Type      EventType `json:"type"`
	Message   string    `json:"message,omitempty"`
	Data      string    `json:"data,omitempty"`
	Reasoning string    `json:"reasoning,omitempty"`
}

// Request is one generation request.
type Request struct {
	Message string `json:"message"`
	Profile string `json:"profile,omitempty"`
}

// Options controls delivery pacing.
type Options struct {
	HeartbeatInterval time.Duration
	LineDelay         time.Duration
	GenerationTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 3 * time.Second
	}
	if o.LineDelay < 0 {
		o.LineDelay = 0
	} else if o.LineDelay == 0 {
		o.LineDelay = 50 * time.Millisecond
	}
	if o.GenerationTimeout <= 0 {
		o.GenerationTimeout = 120 * time.Second
	}
	return o
}

// ClientResolver supplies the backend client for a request. Satisfied by
// backend.Registry.
type ClientResolver interface {
	Default(ctx context.Context) (backend.Client, error)
}

// Pipeline turns requests into event streams.
type Pipeline struct {
	resolver    ClientResolver
	prompts     *prompt.Library
	templateFor func(profile string) string
	log         *zap.Logger
	opts        Options
}

// New creates a pipeline. templateFor maps a request profile to a prompt
// template name.
func New(resolver ClientResolver, prompts *prompt.Library, templateFor func(string) string, log *zap.Logger, opts Options) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		resolver:    resolver,
		prompts:     prompts,
		templateFor: templateFor,
		log:         log,
		opts:        opts.withDefaults(),
	}
}

// Status messages cycled while the backend is working.
var waitingStatuses = []string{
	"Analyzing your request...",
	"Planning dashboard layout...",
	"Selecting visualization components...",
	"Generating data structures...",
	"Creating interactive elements...",
	"Finalizing UI design...",
}

type generationResult struct {
	output *protocol.GenerationOutput
	err    error
}

// Run processes one request and returns its event stream. The channel is
// closed when delivery finishes or ctx is cancelled; a cancelled consumer
// never strands the goroutine.
func (p *Pipeline) Run(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		p.run(ctx, req, events)
	}()
	return events
}

func (p *Pipeline) run(ctx context.Context, req Request, events chan<- Event) {
	log := p.log.With(zap.String("profile", req.Profile))
	log.Info("request received", zap.Int("message_len", len(req.Message)))

	if !p.emit(ctx, events, Event{Type: EventStatus, Message: "Message received..."}) {
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		log.Warn("empty request message, streaming fallback surface")
		p.streamFallback(ctx, events, "message is required")
		return
	}

	if !p.emit(ctx, events, Event{Type: EventStatus, Message: "Calling LLM AI to generate UI..."}) {
		return
	}

	done := make(chan generationResult, 1)
	genCtx, cancel := context.WithTimeout(ctx, p.opts.GenerationTimeout)
	defer cancel()
	go func() {
		output, err := p.generate(genCtx, req)
		done <- generationResult{output: output, err: err}
	}()

	// Heartbeat until the backend answers.
	var result generationResult
	ticker := time.NewTicker(p.opts.HeartbeatInterval)
	defer ticker.Stop()
	statusIndex := 0
waiting:
	for {
		select {
		case <-ctx.Done():
			log.Debug("consumer gone while waiting for generation")
			return
		case result = <-done:
			break waiting
		case <-ticker.C:
			msg := waitingStatuses[statusIndex%len(waitingStatuses)]
			statusIndex++
			if !p.emit(ctx, events, Event{Type: EventStatus, Message: msg}) {
				return
			}
		}
	}

	if result.err != nil {
		if ctx.Err() != nil {
			return
		}
		if normalizeDefect(result.err) {
			log.Warn("unusable model output, streaming fallback surface", zap.Error(result.err))
			p.streamFallback(ctx, events, result.err.Error())
			return
		}
		msg := result.err.Error()
		if errors.Is(result.err, context.DeadlineExceeded) {
			msg = "generation timed out"
		}
		log.Error("generation failed", zap.Error(result.err))
		p.emit(ctx, events, Event{Type: EventError, Message: msg})
		return
	}

	output := result.output
	if defects := protocol.Validate(output.Messages); len(defects) > 0 {
		log.Warn("generated sequence is invalid, streaming fallback surface",
			zap.Int("defects", len(defects)),
			zap.String("first", defects[0].String()))
		p.streamFallback(ctx, events, defects[0].String())
		return
	}
	if len(output.Messages) == 0 {
		log.Error("backend produced no messages")
		p.emit(ctx, events, Event{Type: EventError, Message: "no UI output generated"})
		return
	}

	log.Info("generation complete",
		zap.Int("messages", len(output.Messages)),
		zap.Bool("has_reasoning", output.Reasoning != ""))
	p.streamMessages(ctx, events, output.Messages, output.Reasoning)
}

// generate resolves the backend, builds the prompts, and normalizes the raw
// result into a canonical output.
func (p *Pipeline) generate(ctx context.Context, req Request) (*protocol.GenerationOutput, error) {
	client, err := p.resolver.Default(ctx)
	if err != nil {
		return nil, err
	}

	system, err := p.prompts.System(p.templateFor(req.Profile))
	if err != nil {
		return nil, err
	}

	raw, err := client.Generate(ctx, system, prompt.UserPrompt(req.Message))
	if err != nil {
		return nil, err
	}

	if raw.Structured != nil {
		return normalize.FromStructured(raw.Structured)
	}
	return normalize.FromText(raw.Text)
}

// streamMessages delivers a validated sequence line by line, then completes.
func (p *Pipeline) streamMessages(ctx context.Context, events chan<- Event, msgs []protocol.Message, reasoning string) {
	if !p.emit(ctx, events, Event{Type: EventStatus, Message: "UI generation complete! Streaming components..."}) {
		return
	}

	for i, m := range msgs {
		line, err := protocol.EncodeMessage(m)
		if err != nil {
			p.log.Error("encode failed mid-stream", zap.Int("index", i), zap.Error(err))
			p.emit(ctx, events, Event{Type: EventError, Message: err.Error()})
			return
		}
		if !p.emit(ctx, events, Event{Type: EventA2UI, Data: line}) {
			return
		}
		if i < len(msgs)-1 && !p.pause(ctx, p.opts.LineDelay) {
			return
		}
	}

	p.emit(ctx, events, Event{Type: EventComplete, Reasoning: reasoning})
}

// streamFallback delivers the error surface as a normal, successful stream so
// the renderer always ends in a consistent state.
func (p *Pipeline) streamFallback(ctx context.Context, events chan<- Event, detail string) {
	p.streamMessages(ctx, events, builder.ErrorSurface(detail), "")
}

func (p *Pipeline) emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// normalizeDefect reports whether err is recoverable model drift rather than
// a backend fault.
func normalizeDefect(err error) bool {
	var defect *normalize.DefectError
	return errors.As(err, &defect)
}
