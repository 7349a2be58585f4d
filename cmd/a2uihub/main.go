package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bigricza/ChatLangA2UI-Claude/internal/backend"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/builder"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/config"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/pipeline"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/prompt"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/protocol"
	"github.com/bigricza/ChatLangA2UI-Claude/internal/router"
)

const version = "1.0.0"

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "a2uihub",
	Short: "a2uihub - LLM-backed declarative UI generation server",
	Long: `a2uihub turns natural-language requests into declarative UI definitions
and streams them to a frontend renderer over Server-Sent Events.

Run without arguments to start the server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// serveCmd runs the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation server",
	RunE:  runServe,
}

// sampleCmd prints the sample dashboard
var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Print the sample dashboard as canonical line-delimited JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonl, err := protocol.EncodeLines(builder.SampleDashboard())
		if err != nil {
			return err
		}
		fmt.Println(jsonl)
		return nil
	},
}

// checkCmd validates a message sequence
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a line-delimited message sequence from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		msgs, err := protocol.DecodeLines(string(data))
		if err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		defects := protocol.Validate(msgs)
		if len(defects) == 0 {
			fmt.Printf("OK: %d messages\n", len(msgs))
			return nil
		}
		for _, d := range defects {
			fmt.Println(d.String())
		}
		return fmt.Errorf("%d defects", len(defects))
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	provider, err := backend.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		return err
	}

	prompts, err := prompt.Load()
	if err != nil {
		return err
	}

	registry := backend.NewRegistry(backend.Settings{
		Provider:        provider,
		AnthropicAPIKey: cfg.LLM.AnthropicAPIKey,
		AnthropicModel:  cfg.LLM.AnthropicModel,
		GeminiAPIKey:    cfg.LLM.GeminiAPIKey,
		GeminiModel:     cfg.LLM.GeminiModel,
		Timeout:         cfg.Stream.GenerationTimeoutDuration(),
	})

	pipe := pipeline.New(registry, prompts, cfg.ProfileTemplate, logger, pipeline.Options{
		HeartbeatInterval: cfg.Stream.HeartbeatIntervalDuration(),
		LineDelay:         cfg.Stream.LineDelayDuration(),
		GenerationTimeout: cfg.Stream.GenerationTimeoutDuration(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(cfg, pipe, version, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // SSE streams need unlimited write timeout
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Addr()),
			zap.String("provider", cfg.LLM.Provider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	logger.Info("stopped")
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "a2uihub.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd, sampleCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
