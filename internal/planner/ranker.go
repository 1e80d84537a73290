package planner

import (
	"sort"

	"meal-planner/internal/recipe"
)

// PlaceholderVarietyScore stands in for per-recipe variety when ranking.
// Variety only means something across a whole plan.
const PlaceholderVarietyScore = 50.0

// DefaultRecommendationLimit is used when GetRecommendedRecipes gets limit <= 0.
const DefaultRecommendationLimit = 10

// Weights is the normalized weight record for one ranking call.
type Weights struct {
	Nutrition float64
	Budget    float64
	MealPrep  float64
	Variety   float64
}

var (
	baselineWeights = Weights{Nutrition: 0.25, Budget: 0.25, MealPrep: 0.15, Variety: 0.15}
	boostedWeights  = Weights{Nutrition: 0.4, Budget: 0.4, MealPrep: 0.3, Variety: 0.3}
)

// WeightsFor boosts the flagged weights and renormalizes them to sum to 1.
func WeightsFor(flags PriorityFlags) Weights {
	w := baselineWeights
	if flags.Nutrition {
		w.Nutrition = boostedWeights.Nutrition
	}
	if flags.Budget {
		w.Budget = boostedWeights.Budget
	}
	if flags.MealPrep {
		w.MealPrep = boostedWeights.MealPrep
	}
	if flags.Variety {
		w.Variety = boostedWeights.Variety
	}

	sum := w.Nutrition + w.Budget + w.MealPrep + w.Variety
	return Weights{
		Nutrition: w.Nutrition / sum,
		Budget:    w.Budget / sum,
		MealPrep:  w.MealPrep / sum,
		Variety:   w.Variety / sum,
	}
}

// ScoredRecipe is a recipe with its ranking breakdown.
type ScoredRecipe struct {
	Recipe         recipe.Recipe
	NutritionScore float64
	BudgetScore    float64
	MealPrepScore  float64
	VarietyScore   float64
	EstimatedCost  float64
	Composite      float64
}

// BudgetScore maps a cost onto [0,100]; every currency unit costs 5 points.
func BudgetScore(cost float64) float64 {
	return clamp(100 - cost*5)
}

// RankRecipes filters by prefs and orders the survivors by composite score,
// highest first. The sort is stable: equal scores keep their input order.
func RankRecipes(recipes []recipe.Recipe, goals NutritionalGoals, prefs Preferences, flags PriorityFlags) []ScoredRecipe {
	weights := WeightsFor(flags)

	scored := make([]ScoredRecipe, 0, len(recipes))
	for _, r := range FilterRecipes(recipes, prefs) {
		cost := EstimateRecipeCost(r)
		s := ScoredRecipe{
			Recipe:         r,
			NutritionScore: NutritionalScore(r, goals),
			BudgetScore:    BudgetScore(cost),
			MealPrepScore:  MealPrepScore(r),
			VarietyScore:   PlaceholderVarietyScore,
			EstimatedCost:  cost,
		}
		s.Composite = weights.Nutrition*s.NutritionScore +
			weights.Budget*s.BudgetScore +
			weights.MealPrep*s.MealPrepScore +
			weights.Variety*s.VarietyScore
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Composite > scored[j].Composite
	})
	return scored
}

// SmartFilterRecipes returns the eligible recipes in ranking order.
func SmartFilterRecipes(recipes []recipe.Recipe, goals NutritionalGoals, prefs Preferences, flags PriorityFlags) []recipe.Recipe {
	ranked := RankRecipes(recipes, goals, prefs, flags)
	out := make([]recipe.Recipe, len(ranked))
	for i, s := range ranked {
		out[i] = s.Recipe
	}
	return out
}

// GetRecommendedRecipes ranks with every priority enabled and keeps the top limit.
func GetRecommendedRecipes(recipes []recipe.Recipe, goals NutritionalGoals, prefs Preferences, limit int) []recipe.Recipe {
	if limit <= 0 {
		limit = DefaultRecommendationLimit
	}
	ranked := SmartFilterRecipes(recipes, goals, prefs, AllPriorities())
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
