package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joaocesar000-eng/englishflow-ai/api/internal/config"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/handle"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/httpserver"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/lesson"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm/anthropic"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm/gemini"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/llm/openai"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/logger"
	"github.com/joaocesar000-eng/englishflow-ai/api/internal/output"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Port = p
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	v, err := output.NewValidator()
	if err != nil {
		return err
	}
	engs := Engines(cfg)
	log.Info("engines ready", "default", cfg.Provider, "registered", engs.Names(), "strict_schema", cfg.StrictSchema)

	h := handle.New(engs, v, lesson.NewFetcher(nil, lesson.DefaultTimeout), log, cfg.StrictSchema)
	srv := httpserver.New(cfg.Addr(), httpserver.NewRouter(h, log, cfg.CORSOrigins), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

// Engines registers every provider that has a key; cfg.Provider is the
// default for requests without llm_name.
func Engines(cfg *config.Config) *llm.Engines {
	engs := llm.NewEngines(cfg.Provider)
	if cfg.OpenAIAPIKey != "" {
		engs.Register(openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL))
	}
	if cfg.GeminiAPIKey != "" {
		engs.Register(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.AnthropicAPIKey != "" {
		engs.Register(anthropic.New(cfg.AnthropicAPIKey, cfg.AnthropicModel))
	}
	return engs
}
