package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/middleware"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/pipeline"
)

// GenerateHandler serves UI generation, streaming and one-shot.
type GenerateHandler struct {
	pipe *pipeline.Pipeline
	log  *zap.Logger
}

// NewGenerateHandler creates a generation handler.
func NewGenerateHandler(pipe *pipeline.Pipeline, log *zap.Logger) *GenerateHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &GenerateHandler{pipe: pipe, log: log}
}

// Stream handles POST /agui/stream: it runs the pipeline and relays its
// events over SSE until the stream completes or the client goes away.
func (h *GenerateHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid JSON body")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", "streaming not supported")
		return
	}

	ctx := r.Context()
	log := h.reqLogger(ctx)
	log.Info("stream opened",
		zap.String("profile", req.Profile),
		zap.Int("message_len", len(req.Message)))

	for ev := range h.pipe.Run(ctx, req) {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Error("marshal event", zap.Error(err))
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			// Write failures mean the client is gone; the context will
			// cancel the pipeline.
			log.Debug("stream write failed", zap.Error(err))
			return
		}
		flusher.Flush()
	}
	log.Info("stream closed")
}

// Generate handles POST /api/generate: one-shot generation returning the
// full JSONL in a single JSON response.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "message is required")
		return
	}

	result := h.pipe.GenerateOnce(r.Context(), req)
	h.reqLogger(r.Context()).Info("one-shot generation",
		zap.String("profile", req.Profile),
		zap.Bool("success", result.Success),
		zap.Bool("fallback", result.Fallback))
	writeJSON(w, http.StatusOK, result)
}

// reqLogger returns the handler logger with the request's trace id attached.
func (h *GenerateHandler) reqLogger(ctx context.Context) *zap.Logger {
	if traceID := middleware.TraceIDFromCtx(ctx); traceID != "" {
		return h.log.With(zap.String("trace_id", traceID))
	}
	return h.log
}
