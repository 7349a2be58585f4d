package handler

import (
	"net/http"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/builder"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

// SampleHandler serves the canned dashboard used to exercise a renderer
// without an LLM backend.
type SampleHandler struct{}

// Dashboard handles GET /test/dashboard.
func (h *SampleHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	jsonl, err := protocol.EncodeLines(builder.SampleDashboard())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"a2ui":    jsonl,
		"success": true,
	})
}
