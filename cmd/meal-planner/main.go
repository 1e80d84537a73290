package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logging"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if err := run(ctx, application, cfg, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, application *app.App, cfg *config.Config, command string, args []string) error {
	switch command {
	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		dir := fs.String("dir", cfg.RecipeStoragePath, "Directory of recipe JSON files")
		fs.Parse(args)
		if fs.NArg() > 0 {
			*dir = fs.Arg(0)
		}

		n, err := application.ImportCatalog(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d recipes from %s.\n", n, *dir)

	case "export-catalog":
		fs := flag.NewFlagSet("export-catalog", flag.ExitOnError)
		dir := fs.String("dir", cfg.RecipeStoragePath, "Directory to write recipe JSON files to")
		fs.Parse(args)
		if fs.NArg() > 0 {
			*dir = fs.Arg(0)
		}

		n, err := application.ExportCatalog(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d recipes to %s.\n", n, *dir)

	case "ingest":
		report, err := application.IngestRecipes(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Fetched %d posts: %d ingested, %d unchanged, %d failed, %d pruned.\n",
			report.Fetched, report.Ingested, report.Skipped, report.Failed, report.Pruned)

	case "clip":
		if len(args) < 1 {
			return fmt.Errorf("usage: clip <url>")
		}
		rec, err := application.ClipURL(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Saved %q (%s).\n", rec.Title, rec.ID)

	case "plan":
		fs := flag.NewFlagSet("plan", flag.ExitOnError)
		requestPath := fs.String("request", "", "JSON plan request file (defaults come from config)")
		userID := fs.String("user", cfg.DefaultUserID, "User the plan belongs to")
		week := fs.String("week", "", "Week start as YYYY-MM-DD (defaults to next Monday)")
		csvPath := fs.String("csv", "", "Also write the plan as CSV to this file")
		replace := fs.Bool("replace", false, "Replace existing plans for the same week")
		fs.Parse(args)

		req := app.PlanRequestFromConfig(cfg)
		if *requestPath != "" {
			loaded, err := app.LoadPlanRequest(*requestPath, cfg)
			if err != nil {
				return err
			}
			req = loaded
		}
		if *week != "" {
			req.WeekStart = *week
		}
		req.Replace = req.Replace || *replace

		result, err := application.GenerateMealPlan(ctx, *userID, req)
		if err != nil {
			return err
		}
		printPlan(result)

		if *csvPath != "" {
			f, err := os.Create(*csvPath)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", *csvPath, err)
			}
			defer f.Close()
			if err := application.ExportPlanCSV(ctx, result.PlanID, f); err != nil {
				return err
			}
			fmt.Printf("\nCSV written to %s.\n", *csvPath)
		}

	case "recommend":
		fs := flag.NewFlagSet("recommend", flag.ExitOnError)
		requestPath := fs.String("request", "", "JSON plan request file (defaults come from config)")
		limit := fs.Int("limit", planner.DefaultRecommendationLimit, "Number of recipes to show")
		fs.Parse(args)

		req := app.PlanRequestFromConfig(cfg)
		if *requestPath != "" {
			loaded, err := app.LoadPlanRequest(*requestPath, cfg)
			if err != nil {
				return err
			}
			req = loaded
		}

		recs, err := application.Recommend(ctx, req, *limit)
		if err != nil {
			return err
		}
		for i, r := range recs {
			fmt.Printf("%2d. %s (%.0f kcal, %d min)\n", i+1, r.Title, r.Calories, r.ReadyInMinutes)
		}

	case "shopping":
		fs := flag.NewFlagSet("shopping", flag.ExitOnError)
		userID := fs.String("user", cfg.DefaultUserID, "User the plan belongs to")
		week := fs.String("week", "", "Week start as YYYY-MM-DD (defaults to the latest plan)")
		fs.Parse(args)

		var (
			list *shopping.ShoppingList
			err  error
		)
		if *week == "" {
			list, err = application.ShoppingList(ctx, *userID)
		} else {
			weekStart, parseErr := time.Parse("2006-01-02", *week)
			if parseErr != nil {
				return fmt.Errorf("invalid -week %q: %w", *week, parseErr)
			}
			list, err = application.ShoppingListForWeek(ctx, *userID, weekStart)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Shopping list for the week of %s:\n", list.WeekStart.Format("2006-01-02"))
		for _, item := range list.Items {
			fmt.Printf("  - %s\n", shopping.FormatItem(item))
		}

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		planID := fs.Int64("plan-id", 0, "Stored plan to export")
		out := fs.String("out", "", "Output file (defaults to stdout)")
		fs.Parse(args)

		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", *out, err)
			}
			defer f.Close()
			w = f
		}
		return application.ExportPlanCSV(ctx, *planID, w)

	case "publish":
		fs := flag.NewFlagSet("publish", flag.ExitOnError)
		planID := fs.Int64("plan-id", 0, "Stored plan to publish")
		fs.Parse(args)

		post, err := application.PublishPlan(ctx, *planID)
		if err != nil {
			return err
		}
		fmt.Printf("Created draft %q (%s).\n", post.Title, post.ID)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)

		affected, err := application.Metrics().Cleanup(*days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	return nil
}

func printPlan(result *app.PlanResult) {
	week := result.Week
	fmt.Printf("Plan #%d for the week of %s (%d of %d recipes eligible)\n\n",
		result.PlanID, week.WeekStart.Format("2006-01-02"), result.EligibleCount, result.CandidateCount)

	for _, day := range week.Days {
		fmt.Println(day.Date.Format("Monday 02 Jan"))
		for _, slot := range planner.Slots {
			title := "-"
			if r := day.Meal(slot); r != nil {
				title = r.Title
			}
			fmt.Printf("  %-9s %s\n", slot, title)
		}
		fmt.Printf("  %.0f kcal, %.0fg protein, $%.2f\n", day.TotalCalories, day.TotalProtein, day.TotalCost)
	}

	fmt.Printf("\nTotal cost: $%.2f", week.TotalCost)
	if week.OverBudget {
		fmt.Print(" (over budget)")
	}
	fmt.Printf("\nVariety: %.1f  Ingredient overlap: %.1f\n", week.DiversityScore, week.IngredientOverlap)

	fmt.Println("\nShopping list:")
	for _, item := range result.ShoppingList {
		fmt.Printf("  - %s\n", shopping.FormatItem(item))
	}
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  import [dir]             Load recipe JSON files into the catalog")
	fmt.Println("  export-catalog [dir]     Write the catalog as recipe JSON files")
	fmt.Println("  ingest                   Fetch and extract recipes from Ghost")
	fmt.Println("  clip <url>               Extract a recipe from a web page")
	fmt.Println("  plan                     Generate next week's meal plan")
	fmt.Println("  recommend                Show the best matching recipes")
	fmt.Println("  shopping [-week date]    Show the shopping list of a plan")
	fmt.Println("  export -plan-id n        Write a stored plan as CSV")
	fmt.Println("  publish -plan-id n       Create a Ghost draft for a stored plan")
	fmt.Println("  metrics-cleanup          Remove old metric records")
}
