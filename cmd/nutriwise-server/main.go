package main

import (
	"context"
	"log"

	"github.com/ankush0511/nutriwise/internal/app"
	"github.com/ankush0511/nutriwise/internal/config"
	"github.com/ankush0511/nutriwise/internal/database"
	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/metrics"
	"github.com/ankush0511/nutriwise/internal/nutrients"
	"github.com/ankush0511/nutriwise/internal/planner"
	"github.com/ankush0511/nutriwise/internal/profile"
	"github.com/ankush0511/nutriwise/internal/recipe"
	"github.com/ankush0511/nutriwise/internal/risk"
	"github.com/ankush0511/nutriwise/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	geminiClient, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	groqClient := llm.NewGroqClient(cfg)

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	profiles, err := profile.NewStore(cfg.ProfileFilePath)
	if err != nil {
		log.Fatalf("Failed to initialize profile store: %v", err)
	}

	application := app.NewApp(
		cfg,
		profiles,
		recipe.NewGenerator(groqClient, groqClient, geminiClient),
		risk.NewPipeline(geminiClient, geminiClient, geminiClient, geminiClient, cfg.AlternativesThreshold),
		planner.NewPlanner(geminiClient),
		nutrients.NewAnalyzer(geminiClient),
		metrics.NewStore(db.SQL),
		db,
		planner.NewPlanRepository(db.SQL),
	)

	router := server.NewServer(application).Router()
	log.Printf("Listening on %s", cfg.ListenAddr)
	log.Fatal(router.Run(cfg.ListenAddr))
}
