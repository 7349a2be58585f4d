package handler

import "net/http"

// HealthHandler serves liveness and service discovery endpoints.
type HealthHandler struct {
	version  string
	provider string
	model    string
}

// NewHealthHandler creates a health handler reporting the active backend.
func NewHealthHandler(version, provider, model string) *HealthHandler {
	return &HealthHandler{version: version, provider: provider, model: model}
}

// Health reports service status and the configured backend.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"service":      "a2uihub",
		"version":      h.version,
		"llm_provider": h.provider,
		"llm_model":    h.model,
	})
}

// Root lists the available endpoints.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":     "a2uihub",
		"description": "AI-powered declarative UI generation backend",
		"endpoints": map[string]string{
			"health":         "/health",
			"agui-stream":    "/agui/stream",
			"generate":       "/api/generate",
			"test-dashboard": "/test/dashboard",
		},
	})
}
