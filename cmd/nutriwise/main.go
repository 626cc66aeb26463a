package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ankush0511/nutriwise/internal/app"
	"github.com/ankush0511/nutriwise/internal/config"
	"github.com/ankush0511/nutriwise/internal/database"
	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/metrics"
	"github.com/ankush0511/nutriwise/internal/nutrients"
	"github.com/ankush0511/nutriwise/internal/nutrition"
	"github.com/ankush0511/nutriwise/internal/planner"
	"github.com/ankush0511/nutriwise/internal/profile"
	"github.com/ankush0511/nutriwise/internal/recipe"
	"github.com/ankush0511/nutriwise/internal/risk"
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

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "recipe":
		recipeCmd := flag.NewFlagSet("recipe", flag.ExitOnError)
		ingredients := recipeCmd.String("ingredients", "", "Comma-separated ingredient list")
		imagePath := recipeCmd.String("image", "", "Path to an ingredient photo")
		audioPath := recipeCmd.String("audio", "", "Path to a spoken ingredient recording")
		recipeCmd.Parse(os.Args[2:])
		runRecipe(ctx, application, *ingredients, *imagePath, *audioPath)

	case "analyze":
		analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
		profileName := analyzeCmd.String("profile", "", "Profile whose allergies to check against")
		imagePath := analyzeCmd.String("image", "", "Path to a product label photo")
		analyzeCmd.Parse(os.Args[2:])
		runAnalyze(ctx, application, *profileName, *imagePath)

	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		profileName := planCmd.String("profile", "", "Profile to plan for")
		outPath := planCmd.String("out", "", "Write the markdown document to this file")
		planCmd.Parse(os.Args[2:])
		runPlan(ctx, application, *profileName, *outPath)

	case "nutrients":
		nutrientsCmd := flag.NewFlagSet("nutrients", flag.ExitOnError)
		items := nutrientsCmd.String("items", "", "Comma-separated food items")
		nutrientsCmd.Parse(os.Args[2:])
		runNutrients(ctx, application, *items)

	case "profiles":
		names, err := application.ProfileNames()
		if err != nil {
			log.Fatalf("Failed to list profiles: %v", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}

	case "recommended":
		recCmd := flag.NewFlagSet("recommended", flag.ExitOnError)
		age := recCmd.Int("age", 0, "Age in years")
		sex := recCmd.String("sex", "", "male or female")
		recCmd.Parse(os.Args[2:])
		targets := application.Recommended(*age, nutrition.Sex(*sex))
		fmt.Printf("Calories: %.0f kcal\nProtein: %.0f g\nFat: %.0f g\nCarbs: %.0f g\n",
			targets.Calories, targets.Protein, targets.Fat, targets.Carbs)

	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupMetrics(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runRecipe(ctx context.Context, application *app.App, ingredients, imagePath, audioPath string) {
	var (
		result recipe.Result
		err    error
	)

	switch {
	case ingredients != "":
		result, err = application.RecipeFromText(ctx, ingredients)
	case imagePath != "":
		data, mimeType, readErr := readMedia(imagePath)
		if readErr != nil {
			log.Fatalf("Failed to read image: %v", readErr)
		}
		result, err = application.RecipeFromImage(ctx, mimeType, data)
	case audioPath != "":
		data, mimeType, readErr := readMedia(audioPath)
		if readErr != nil {
			log.Fatalf("Failed to read audio: %v", readErr)
		}
		result, err = application.RecipeFromAudio(ctx, mimeType, data)
	default:
		log.Fatal("One of -ingredients, -image or -audio is required")
	}

	if err != nil {
		log.Fatalf("Recipe generation failed: %v", err)
	}

	fmt.Println(result.Text)
	if result.Name != "" {
		fmt.Printf("\nSuggested image: %s\n", recipe.ImageURL(result.Name))
	}
}

func runAnalyze(ctx context.Context, application *app.App, profileName, imagePath string) {
	if profileName == "" || imagePath == "" {
		log.Fatal("Both -profile and -image are required")
	}

	data, mimeType, err := readMedia(imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	result, err := application.AnalyzeLabel(ctx, profileName, mimeType, data)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Risk score: %.2f\n", result.Assessment.RiskScore)
	if len(result.Assessment.AllergensFound) > 0 {
		fmt.Printf("Allergens found: %s\n", strings.Join(result.Assessment.AllergensFound, ", "))
	}
	fmt.Printf("Explanation: %s\n", result.Assessment.Explanation)

	switch {
	case result.AlternativesSkipped:
		fmt.Println("Risk below threshold; no alternatives requested.")
	case len(result.Alternatives) > 0:
		fmt.Println("\nSafer alternatives:")
		for _, alt := range result.Alternatives {
			fmt.Printf("- %s: %s\n", alt.ProductName, alt.Reason)
		}
	case result.AlternativesRaw != "":
		fmt.Printf("\nAlternatives (unstructured):\n%s\n", result.AlternativesRaw)
	}
}

func runPlan(ctx context.Context, application *app.App, profileName, outPath string) {
	if profileName == "" {
		log.Fatal("-profile is required")
	}

	result, err := application.GenerateDailyPlan(ctx, profileName)
	if err != nil {
		log.Fatalf("Meal plan generation failed: %v", err)
	}

	for _, warning := range result.Plan.Warnings {
		log.Printf("Warning: %s", warning)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(result.Markdown), 0644); err != nil {
			log.Fatalf("Failed to write plan to %s: %v", outPath, err)
		}
		fmt.Printf("Plan %s written to %s\n", result.PlanID, outPath)
		return
	}
	fmt.Print(result.Markdown)
}

func runNutrients(ctx context.Context, application *app.App, items string) {
	if strings.TrimSpace(items) == "" {
		log.Fatal("-items is required")
	}

	var list []string
	for _, item := range strings.Split(items, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			list = append(list, trimmed)
		}
	}

	result, err := application.Nutrients(ctx, list)
	if err != nil {
		log.Fatalf("Nutrient lookup failed: %v", err)
	}

	if !result.Parsed {
		fmt.Println(result.Raw)
		return
	}
	for item, prof := range result.Profiles {
		fmt.Printf("%s:\n", item)
		for nutrient, value := range prof {
			fmt.Printf("  %s: %v\n", nutrient, value)
		}
	}
}

func readMedia(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	return data, mimeTypeFor(path), nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}

func printUsage() {
	fmt.Println("Usage: nutriwise <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  recipe             Generate a recipe from text, image or audio input")
	fmt.Println("  analyze            Score allergen risk for a product label photo")
	fmt.Println("  plan               Generate a four-slot daily meal plan for a profile")
	fmt.Println("  nutrients          Look up nutritional profiles for food items")
	fmt.Println("  profiles           List stored profile names")
	fmt.Println("  recommended        Print the reference daily targets for an age and sex")
	fmt.Println("  metrics-cleanup    Remove old metric records")
}
