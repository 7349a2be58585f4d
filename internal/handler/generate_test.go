package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/backend"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/middleware"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/pipeline"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/prompt"
)

type stubClient struct {
	result *backend.RawResult
	err    error
}

func (c *stubClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*backend.RawResult, error) {
	return c.result, c.err
}

func (c *stubClient) Model() string { return "stub-model" }

type stubResolver struct{ client backend.Client }

func (r stubResolver) Default(ctx context.Context) (backend.Client, error) {
	return r.client, nil
}

func testPipeline(t *testing.T, client backend.Client) *pipeline.Pipeline {
	t.Helper()
	lib, err := prompt.Load()
	if err != nil {
		t.Fatalf("prompt.Load: %v", err)
	}
	return pipeline.New(stubResolver{client: client}, lib,
		func(string) string { return "dashboard_generation" }, nil,
		pipeline.Options{
			HeartbeatInterval: 50 * time.Millisecond,
			LineDelay:         time.Millisecond,
			GenerationTimeout: 5 * time.Second,
		})
}

func structuredStub() *stubClient {
	return &stubClient{result: &backend.RawResult{Structured: json.RawMessage(`{
		"reasoning": "done",
		"messages": [
			{"surfaceUpdate": {"surfaceId": "main", "components": [
				{"id": "t", "component": {"Text": {"text": {"literalString": "Hi"}, "usage_hint": "title"}}}
			]}},
			{"beginRendering": {"surfaceId": "main"}}
		]
	}`)}}
}

// parseSSE splits an SSE body into decoded pipeline events.
func parseSSE(t *testing.T, body string) []pipeline.Event {
	t.Helper()
	var events []pipeline.Event
	for _, block := range strings.Split(body, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		if !strings.HasPrefix(block, "data: ") {
			t.Fatalf("malformed SSE block: %q", block)
		}
		var ev pipeline.Event
		if err := json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &ev); err != nil {
			t.Fatalf("decode event %q: %v", block, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestStreamEndToEnd(t *testing.T) {
	h := NewGenerateHandler(testPipeline(t, structuredStub()), nil)

	req := httptest.NewRequest(http.MethodPost, "/agui/stream", strings.NewReader(`{"message": "hello"}`))
	rec := httptest.NewRecorder()
	h.Stream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get("X-Accel-Buffering") != "no" {
		t.Errorf("missing X-Accel-Buffering header")
	}

	events := parseSSE(t, rec.Body.String())
	if events[0].Type != pipeline.EventStatus || events[0].Message != "Message received..." {
		t.Errorf("first event = %+v", events[0])
	}
	var a2ui int
	for _, ev := range events {
		if ev.Type == pipeline.EventA2UI {
			a2ui++
		}
	}
	if a2ui != 2 {
		t.Errorf("a2ui events = %d, want 2", a2ui)
	}
	last := events[len(events)-1]
	if last.Type != pipeline.EventComplete || last.Reasoning != "done" {
		t.Errorf("last event = %+v", last)
	}
}

func TestStreamLogsCarryTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewGenerateHandler(testPipeline(t, structuredStub()), zap.New(core))

	req := httptest.NewRequest(http.MethodPost, "/agui/stream", strings.NewReader(`{"message": "hello"}`))
	req.Header.Set("X-Trace-Id", "trace-abc123")
	rec := httptest.NewRecorder()
	middleware.Trace(http.HandlerFunc(h.Stream)).ServeHTTP(rec, req)

	entries := logs.FilterMessage("stream opened").All()
	if len(entries) != 1 {
		t.Fatalf("stream opened entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "trace-abc123" {
		t.Errorf("trace_id = %v, want trace-abc123", fields["trace_id"])
	}
	if logs.FilterMessage("stream closed").Len() != 1 {
		t.Errorf("missing stream closed entry")
	}
}

func TestStreamBadBody(t *testing.T) {
	h := NewGenerateHandler(testPipeline(t, structuredStub()), nil)

	req := httptest.NewRequest(http.MethodPost, "/agui/stream", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Stream(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateOneShot(t *testing.T) {
	h := NewGenerateHandler(testPipeline(t, structuredStub()), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"message": "hello"}`))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res pipeline.OneShotResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Success || res.Fallback {
		t.Errorf("result = %+v", res)
	}
	if !strings.Contains(res.A2UI, "beginRendering") {
		t.Errorf("A2UI missing beginRendering: %q", res.A2UI)
	}
}

func TestGenerateRequiresMessage(t *testing.T) {
	h := NewGenerateHandler(testPipeline(t, structuredStub()), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/generate", strings.NewReader(`{"message": ""}`))
	rec := httptest.NewRecorder()
	h.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSampleDashboardEndpoint(t *testing.T) {
	h := &SampleHandler{}
	req := httptest.NewRequest(http.MethodGet, "/test/dashboard", nil)
	rec := httptest.NewRecorder()
	h.Dashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var res struct {
		A2UI    string `json:"a2ui"`
		Success bool   `json:"success"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Success || !strings.Contains(res.A2UI, "Sales Dashboard") {
		t.Errorf("response = %+v", res)
	}
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler("1.0.0", "anthropic", "claude-test")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	var res map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res["status"] != "ok" || res["llm_provider"] != "anthropic" {
		t.Errorf("response = %v", res)
	}
}
