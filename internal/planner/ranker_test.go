package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/recipe"
)

func weightSum(w Weights) float64 {
	return w.Nutrition + w.Budget + w.MealPrep + w.Variety
}

func TestWeightsFor(t *testing.T) {
	t.Run("baseline", func(t *testing.T) {
		w := WeightsFor(PriorityFlags{})
		assert.InDelta(t, 1, weightSum(w), 1e-9)
		assert.InDelta(t, 0.25/0.8, w.Nutrition, 1e-9)
		assert.InDelta(t, 0.15/0.8, w.Variety, 1e-9)
	})

	t.Run("all boosted", func(t *testing.T) {
		w := WeightsFor(AllPriorities())
		assert.InDelta(t, 1, weightSum(w), 1e-9)
		assert.InDelta(t, 0.4/1.4, w.Budget, 1e-9)
		assert.InDelta(t, 0.3/1.4, w.MealPrep, 1e-9)
	})

	t.Run("boost raises the flagged share", func(t *testing.T) {
		base := WeightsFor(PriorityFlags{})
		budget := WeightsFor(PriorityFlags{Budget: true})
		assert.Greater(t, budget.Budget, base.Budget)
		assert.Less(t, budget.Nutrition, base.Nutrition)
	})

	t.Run("calls do not leak into each other", func(t *testing.T) {
		first := WeightsFor(PriorityFlags{})
		_ = WeightsFor(AllPriorities())
		assert.Equal(t, first, WeightsFor(PriorityFlags{}))
	})
}

func TestBudgetScore(t *testing.T) {
	assert.Equal(t, 100.0, BudgetScore(0))
	assert.Equal(t, 50.0, BudgetScore(10))
	assert.Equal(t, 0.0, BudgetScore(20))
	assert.Equal(t, 0.0, BudgetScore(35))
	assert.Equal(t, 100.0, BudgetScore(-10))
}

func TestRankRecipes_NonPositiveKnownCost(t *testing.T) {
	negative, zero := -10.0, 0.0
	cheap := newRecipe("neg", "Odd Import", "lunch", 650)
	cheap.EstimatedCost = &negative
	free := newRecipe("zero", "Free Lunch", "lunch", 650)
	free.EstimatedCost = &zero

	ranked := RankRecipes([]recipe.Recipe{cheap, free}, standardGoals, Preferences{}, AllPriorities())
	require.Len(t, ranked, 2)
	for _, s := range ranked {
		assert.GreaterOrEqual(t, s.EstimatedCost, 1.0, s.Recipe.ID)
		for _, score := range []float64{s.BudgetScore, s.NutritionScore, s.MealPrepScore, s.Composite} {
			assert.GreaterOrEqual(t, score, 0.0, s.Recipe.ID)
			assert.LessOrEqual(t, score, 100.0, s.Recipe.ID)
		}
	}
}

func TestRankRecipes(t *testing.T) {
	pool := catalog(9)
	pool = append(pool, newRecipe("meat", "Pork Chops", "dinner", 650, "pork loin"))

	ranked := RankRecipes(pool, standardGoals, Preferences{DietaryRestrictions: []string{"vegetarian"}}, PriorityFlags{})
	require.Len(t, ranked, 9)

	for i, s := range ranked {
		assert.NotEqual(t, "meat", s.Recipe.ID)
		assert.Equal(t, PlaceholderVarietyScore, s.VarietyScore)
		assert.Equal(t, EstimateRecipeCost(s.Recipe), s.EstimatedCost)
		assert.GreaterOrEqual(t, s.Composite, 0.0)
		assert.LessOrEqual(t, s.Composite, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].Composite, s.Composite)
		}
	}
}

func TestRankRecipes_TiesKeepInputOrder(t *testing.T) {
	pool := []recipe.Recipe{
		newRecipe("z", "Same", "lunch", 600, "kale"),
		newRecipe("a", "Same", "lunch", 600, "kale"),
		newRecipe("m", "Same", "lunch", 600, "kale"),
	}

	ranked := SmartFilterRecipes(pool, standardGoals, Preferences{}, AllPriorities())
	assert.Equal(t, []string{"z", "a", "m"}, ids(ranked))
}

func TestGetRecommendedRecipes(t *testing.T) {
	pool := catalog(20)

	t.Run("limit", func(t *testing.T) {
		recs := GetRecommendedRecipes(pool, standardGoals, Preferences{}, 5)
		require.Len(t, recs, 5)

		ranked := RankRecipes(pool, standardGoals, Preferences{}, AllPriorities())
		composite := make(map[string]float64, len(ranked))
		for _, s := range ranked {
			composite[s.Recipe.ID] = s.Composite
		}
		for i := 1; i < len(recs); i++ {
			assert.GreaterOrEqual(t, composite[recs[i-1].ID], composite[recs[i].ID])
		}
		assert.Equal(t, ids(SmartFilterRecipes(pool, standardGoals, Preferences{}, AllPriorities())[:5]), ids(recs))
	})

	t.Run("default limit", func(t *testing.T) {
		assert.Len(t, GetRecommendedRecipes(pool, standardGoals, Preferences{}, 0), DefaultRecommendationLimit)
	})

	t.Run("fewer than limit", func(t *testing.T) {
		assert.Len(t, GetRecommendedRecipes(pool[:3], standardGoals, Preferences{}, 5), 3)
	})

	t.Run("empty pool", func(t *testing.T) {
		assert.Empty(t, GetRecommendedRecipes(nil, standardGoals, Preferences{}, 5))
	})
}
