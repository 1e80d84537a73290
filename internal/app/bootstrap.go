package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/ghost"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
)

// groqTemperature keeps extraction output close to deterministic.
const groqTemperature = 0.1

// Open wires an App from configuration: database, optional Ghost client,
// optional LLM backend (Gemini first, then Groq) and the metrics collector.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	var ghostClient ghost.Client
	if cfg.RequireGhost() == nil {
		ghostClient = ghost.NewClient(cfg)
	} else {
		logger.Debug("ghost not configured, ingestion and publishing disabled")
	}

	var (
		textGen llm.TextGenerator
		closers []func() error
	)
	switch {
	case cfg.GeminiAPIKey != "":
		gemini, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		textGen = gemini
		closers = append(closers, gemini.Close)
		logger.Debug("using gemini for recipe extraction", zap.String("model", cfg.GeminiModel))
	case cfg.GroqAPIKey != "":
		textGen = llm.NewGroqClient(cfg, groqTemperature)
		logger.Debug("using groq for recipe extraction", zap.String("model", cfg.GroqModel))
	default:
		logger.Debug("no llm configured, ingestion and clipping disabled")
	}

	collector := metrics.NewCollector(filepath.Dir(cfg.DatabasePath))
	a := NewApp(cfg, db, ghostClient, textGen, collector, logger)
	a.closers = closers
	return a, nil
}
