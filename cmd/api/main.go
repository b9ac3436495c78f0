package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"cladeshift/adapters/api"
	"cladeshift/adapters/llm"
	"cladeshift/adapters/memory"
	"cladeshift/adapters/postgres"
	"cladeshift/app"
	"cladeshift/internal"
	"cladeshift/internal/config"
	"cladeshift/ports"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := internal.NewDefaultLogger()

	repo := buildRepository(cfg, logger)

	assignment, err := app.NewAssignmentService(cfg.Thresholds, repo, logger)
	if err != nil {
		log.Fatalf("failed to create assignment service: %v", err)
	}

	var interpreter ports.InterpreterPort
	if cfg.LLM.APIKey != "" {
		interpreter, err = llm.NewInterpreterAdapter(llm.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Timeout:     cfg.LLM.Timeout,
		})
		if err != nil {
			log.Fatalf("failed to create interpreter: %v", err)
		}
	} else {
		logger.Info("OPENAI_API_KEY not set, interpretation disabled")
	}

	handler := api.NewRunHandler(assignment, nil, interpreter, repo, logger)
	router := api.NewRouter(handler, cfg.Server.GinMode)

	logger.Info("listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func buildRepository(cfg *config.Config, logger *internal.Logger) ports.SelectionRepository {
	if cfg.Database.URL == "" {
		logger.Info("DATABASE_URL not set, using in-memory repository")
		return memory.NewSelectionRepository()
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}
	return postgres.NewSelectionRepository(db)
}
