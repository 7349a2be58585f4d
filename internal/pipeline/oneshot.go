package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/builder"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
)

// OneShotResult is the non-streaming generation response.
type OneShotResult struct {
	Response  string `json:"response"`
	A2UI      string `json:"a2ui"`
	Success   bool   `json:"success"`
	Reasoning string `json:"reasoning,omitempty"`
	Fallback  bool   `json:"fallback,omitempty"`
	Error     string `json:"error,omitempty"`
}

// GenerateOnce runs generation without streaming and returns the full
// canonical JSONL in one response. Any failure downgrades to the sample
// dashboard so the caller always gets renderable output.
func (p *Pipeline) GenerateOnce(ctx context.Context, req Request) *OneShotResult {
	genCtx, cancel := context.WithTimeout(ctx, p.opts.GenerationTimeout)
	defer cancel()

	output, err := p.generate(genCtx, req)
	if err == nil {
		if defects := protocol.Validate(output.Messages); len(defects) > 0 {
			err = fmt.Errorf("invalid generated sequence: %s", defects[0].String())
		} else if len(output.Messages) == 0 {
			err = fmt.Errorf("no UI output generated")
		}
	}
	if err != nil {
		p.log.Warn("one-shot generation failed, returning sample dashboard", zap.Error(err))
		jsonl, encErr := protocol.EncodeLines(builder.SampleDashboard())
		if encErr != nil {
			// The sample dashboard is static; this cannot happen in practice.
			jsonl = ""
		}
		return &OneShotResult{
			Response: fmt.Sprintf("Generated UI (using fallback): %s", req.Message),
			A2UI:     jsonl,
			Success:  true,
			Fallback: true,
			Error:    err.Error(),
		}
	}

	jsonl, err := protocol.EncodeLines(output.Messages)
	if err != nil {
		p.log.Error("encode one-shot output", zap.Error(err))
		return &OneShotResult{
			Response: fmt.Sprintf("Generated UI (using fallback): %s", req.Message),
			A2UI:     "",
			Success:  false,
			Error:    err.Error(),
		}
	}

	return &OneShotResult{
		Response:  fmt.Sprintf("Generated UI for: %s", req.Message),
		A2UI:      jsonl,
		Success:   true,
		Reasoning: output.Reasoning,
	}
}
