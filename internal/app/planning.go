package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/export"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// PlanResult is a generated and stored weekly plan.
type PlanResult struct {
	PlanID         int64
	UserID         string
	Week           planner.MealPlanWeek
	ShoppingList   []shopping.Item
	CandidateCount int
	EligibleCount  int
}

// GenerateMealPlan runs the planning engine over the stored catalog,
// persists the plan with its shopping list and records the run.
func (a *App) GenerateMealPlan(ctx context.Context, userID string, req PlanRequest) (*PlanResult, error) {
	if err := a.validateRequest(req); err != nil {
		return nil, err
	}
	weekStart, err := a.weekStart(req)
	if err != nil {
		return nil, err
	}

	catalog, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	start := time.Now()
	priorities := req.Priorities
	if req.Preferences.MealPrepFriendly {
		priorities.MealPrep = true
	}
	// Ranked order breaks nutrition-score ties inside the engine's buckets.
	pool := planner.SmartFilterRecipes(catalog, req.Goals, req.Preferences, priorities)
	week := planner.GenerateWeeklyMealPlan(pool, req.Goals, req.Preferences, weekStart)
	elapsed := time.Since(start)

	if req.Replace {
		if err := a.planRepo.DeleteForWeek(ctx, userID, weekStart); err != nil {
			return nil, err
		}
	}
	planID, err := a.planRepo.Save(ctx, userID, week)
	if err != nil {
		return nil, fmt.Errorf("failed to save meal plan: %w", err)
	}

	items := shopping.BuildList(week)
	if _, err := a.shoppingRepo.Save(ctx, &shopping.ShoppingList{
		UserID:     userID,
		MealPlanID: planID,
		WeekStart:  weekStart,
		Items:      items,
	}); err != nil {
		return nil, fmt.Errorf("failed to save shopping list: %w", err)
	}

	a.collector.ObservePlan(week.EmptySlots(), elapsed)
	if err := a.metricsStore.RecordPlanRun(metrics.PlanRun{
		UserID:            userID,
		CandidateCount:    len(catalog),
		EligibleCount:     len(pool),
		EmptySlots:        week.EmptySlots(),
		TotalCost:         week.TotalCost,
		DiversityScore:    week.DiversityScore,
		IngredientOverlap: week.IngredientOverlap,
		LatencyMS:         elapsed.Milliseconds(),
	}); err != nil {
		a.logger.Warn("failed to record planning run", zap.Error(err))
	}

	a.logger.Info("meal plan generated",
		zap.String("user_id", userID),
		zap.Int64("plan_id", planID),
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.Int("candidates", len(catalog)),
		zap.Int("eligible", len(pool)),
		zap.Int("empty_slots", week.EmptySlots()),
		zap.Float64("total_cost", week.TotalCost),
		zap.Bool("over_budget", week.OverBudget),
		zap.Duration("latency", elapsed),
	)

	return &PlanResult{
		PlanID:         planID,
		UserID:         userID,
		Week:           week,
		ShoppingList:   items,
		CandidateCount: len(catalog),
		EligibleCount:  len(pool),
	}, nil
}

// Recommend returns the best catalog recipes for the request with every
// ranking priority enabled.
func (a *App) Recommend(ctx context.Context, req PlanRequest, limit int) ([]recipe.Recipe, error) {
	if err := a.validateRequest(req); err != nil {
		return nil, err
	}

	catalog, err := a.recipeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}
	return planner.GetRecommendedRecipes(catalog, req.Goals, req.Preferences, limit), nil
}

// GetPlan loads a stored plan.
func (a *App) GetPlan(ctx context.Context, planID int64) (*planner.StoredPlan, error) {
	return a.planRepo.Get(ctx, planID)
}

// LatestPlan returns the user's most recent plan, or planner.ErrPlanNotFound.
func (a *App) LatestPlan(ctx context.Context, userID string) (*planner.StoredPlan, error) {
	plans, err := a.planRepo.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, planner.ErrPlanNotFound
	}
	return &plans[0], nil
}

// ShoppingList returns the shopping list of the user's most recent plan.
func (a *App) ShoppingList(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	plan, err := a.LatestPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	list, err := a.shoppingRepo.GetByMealPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		// Lists can be rebuilt from the plan when the row is missing.
		list = &shopping.ShoppingList{
			UserID:     userID,
			MealPlanID: plan.ID,
			WeekStart:  plan.WeekStart,
			Items:      shopping.BuildList(plan.Week),
		}
	}
	return list, nil
}

// ShoppingListForWeek returns the user's shopping list for the week starting
// at weekStart, or planner.ErrPlanNotFound when that week has no plan.
func (a *App) ShoppingListForWeek(ctx context.Context, userID string, weekStart time.Time) (*shopping.ShoppingList, error) {
	list, err := a.shoppingRepo.GetByUserAndWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	if list != nil {
		return list, nil
	}

	plan, err := a.planRepo.LatestForWeek(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}
	return &shopping.ShoppingList{
		UserID:     userID,
		MealPlanID: plan.ID,
		WeekStart:  plan.WeekStart,
		Items:      shopping.BuildList(plan.Week),
	}, nil
}

// ExportPlanCSV writes a stored plan as CSV.
func (a *App) ExportPlanCSV(ctx context.Context, planID int64, w io.Writer) error {
	plan, err := a.planRepo.Get(ctx, planID)
	if err != nil {
		return err
	}
	return export.WriteWeekCSV(w, plan.Week)
}

// NextWeekStart returns the Monday a request without week_start plans for.
func (a *App) NextWeekStart() time.Time {
	return planner.GetNextMonday(a.now())
}

// PlanExists reports whether the user already has a plan for the week.
func (a *App) PlanExists(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	return a.planRepo.ExistsForWeek(ctx, userID, weekStart)
}
