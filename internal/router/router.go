package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/config"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/handler"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/middleware"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/pipeline"
)

// New builds the HTTP router.
func New(cfg *config.Config, pipe *pipeline.Pipeline, version string, log *zap.Logger) http.Handler {
	model := cfg.LLM.AnthropicModel
	if cfg.LLM.Provider == "gemini" {
		model = cfg.LLM.GeminiModel
	}

	healthH := handler.NewHealthHandler(version, cfg.LLM.Provider, model)
	generateH := handler.NewGenerateHandler(pipe, log)
	sampleH := &handler.SampleHandler{}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.Get("/", healthH.Root)
	r.Get("/health", healthH.Health)
	r.Get("/test/dashboard", sampleH.Dashboard)
	r.Post("/api/generate", generateH.Generate)
	r.Post("/agui/stream", generateH.Stream)

	return r
}
