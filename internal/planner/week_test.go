package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/recipe"
)

var monday = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

func slotIDs(day MealPlanDay) [mealsPerDay]string {
	var out [mealsPerDay]string
	for i, slot := range Slots {
		if r := day.Meal(slot); r != nil {
			out[i] = r.ID
		}
	}
	return out
}

func TestGenerateWeeklyMealPlan_SingleRecipePerBucket(t *testing.T) {
	pool := []recipe.Recipe{
		newRecipe("porridge", "Oat Porridge", "breakfast", 400, "oats", "banana"),
		newRecipe("soup", "Tomato Soup", "lunch", 450, "tomato", "basil"),
		newRecipe("curry", "Vegetable Curry", "dinner", 700, "chickpeas", "spinach"),
	}

	week := GenerateWeeklyMealPlan(pool, standardGoals, Preferences{}, monday)

	assert.Equal(t, [mealsPerDay]string{"porridge", "soup", "curry"}, slotIDs(week.Days[0]))
	assert.Zero(t, week.Days[0].EmptySlots())
	for i := 1; i < DaysPerWeek; i++ {
		assert.Equal(t, mealsPerDay, week.Days[i].EmptySlots(), "day %d", i)
		assert.Zero(t, week.Days[i].TotalCost)
	}
	assert.Equal(t, 18, week.EmptySlots())
	assert.InDelta(t, (400.0+450+700)/DaysPerWeek, week.AverageCalories, 1e-9)
}

func TestGenerateWeeklyMealPlan_NoDuplicates(t *testing.T) {
	week := GenerateWeeklyMealPlan(catalog(21), standardGoals, Preferences{}, monday)

	seen := make(map[string]bool)
	for _, r := range week.Recipes() {
		assert.False(t, seen[r.ID], "recipe %s placed twice", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, seen, 21)
	assert.Zero(t, week.EmptySlots())
	assert.Zero(t, week.IngredientOverlap)
}

func TestGenerateWeeklyMealPlan_FallbackBucketNeverRepeatsWithinDay(t *testing.T) {
	pool := []recipe.Recipe{newRecipe("plain", "Plain Plate", "", 500, "kale")}

	week := GenerateWeeklyMealPlan(pool, standardGoals, Preferences{}, monday)

	assert.Equal(t, [mealsPerDay]string{"plain", "", ""}, slotIDs(week.Days[0]))
	assert.Equal(t, 20, week.EmptySlots())
}

func TestGenerateWeeklyMealPlan_Repetition(t *testing.T) {
	pool := catalog(21)

	t.Run("blocks repeat and restart from the same ranking", func(t *testing.T) {
		prefs := Preferences{AllowMealRepetition: true, RepetitionDays: 2}
		week := GenerateWeeklyMealPlan(pool, standardGoals, prefs, monday)

		first := slotIDs(week.Days[0])
		for i := 1; i < DaysPerWeek; i++ {
			assert.Equal(t, first, slotIDs(week.Days[i]), "day %d", i)
		}
	})

	t.Run("varied blocks", func(t *testing.T) {
		prefs := Preferences{AllowMealRepetition: true, RepetitionDays: 3, VaryRepetitionBlocks: true}
		week := GenerateWeeklyMealPlan(pool, standardGoals, prefs, monday)

		assert.Equal(t, slotIDs(week.Days[0]), slotIDs(week.Days[1]))
		assert.Equal(t, slotIDs(week.Days[0]), slotIDs(week.Days[2]))
		assert.Equal(t, slotIDs(week.Days[3]), slotIDs(week.Days[5]))
		assert.NotEqual(t, slotIDs(week.Days[0]), slotIDs(week.Days[3]))
		assert.NotEqual(t, slotIDs(week.Days[3]), slotIDs(week.Days[6]))
		assert.Zero(t, week.EmptySlots())
	})

	t.Run("default block length", func(t *testing.T) {
		prefs := Preferences{AllowMealRepetition: true, VaryRepetitionBlocks: true}
		week := GenerateWeeklyMealPlan(pool, standardGoals, prefs, monday)

		assert.Equal(t, slotIDs(week.Days[0]), slotIDs(week.Days[1]))
		assert.NotEqual(t, slotIDs(week.Days[1]), slotIDs(week.Days[2]))
		assert.Equal(t, slotIDs(week.Days[2]), slotIDs(week.Days[3]))
	})
}

func TestGenerateWeeklyMealPlan_RepeatedDaysDoNotShareRecipes(t *testing.T) {
	prefs := Preferences{AllowMealRepetition: true, RepetitionDays: 2}
	week := GenerateWeeklyMealPlan(catalog(21), standardGoals, prefs, monday)

	require.NotNil(t, week.Days[0].Breakfast)
	require.NotNil(t, week.Days[1].Breakfast)
	assert.NotSame(t, week.Days[0].Breakfast, week.Days[1].Breakfast)

	title := week.Days[1].Breakfast.Title
	week.Days[0].Breakfast.Title = "changed"
	assert.Equal(t, title, week.Days[1].Breakfast.Title)
}

func TestGenerateWeeklyMealPlan_Dates(t *testing.T) {
	start := time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC)

	week := GenerateWeeklyMealPlan(catalog(6), standardGoals, Preferences{}, start)

	assert.Equal(t, monday, week.WeekStart)
	for i, d := range week.Days {
		assert.Equal(t, monday.AddDate(0, 0, i), d.Date)
	}
}

func TestGenerateWeeklyMealPlan_Deterministic(t *testing.T) {
	pool := catalog(15)
	prefs := Preferences{AllowMealRepetition: true, RepetitionDays: 2}

	assert.Equal(t,
		GenerateWeeklyMealPlan(pool, standardGoals, prefs, monday),
		GenerateWeeklyMealPlan(pool, standardGoals, prefs, monday))
}

func TestGenerateWeeklyMealPlan_EmptyPool(t *testing.T) {
	week := GenerateWeeklyMealPlan(nil, standardGoals, Preferences{}, monday)

	assert.Equal(t, DaysPerWeek*mealsPerDay, week.EmptySlots())
	assert.Zero(t, week.TotalCost)
	assert.Zero(t, week.AverageCalories)
	assert.Zero(t, week.DiversityScore)
	assert.Zero(t, week.IngredientOverlap)
	assert.False(t, week.OverBudget)
}

func TestGenerateWeeklyMealPlan_AppliesPreferences(t *testing.T) {
	pool := append(catalog(9),
		newRecipe("bacon", "Bacon Breakfast Sandwich", "breakfast", 667, "bacon", "bun"),
		newRecipe("slow", "Slow Braise", "dinner", 667, "cabbage"),
	)
	pool[10].ReadyInMinutes = 240

	week := GenerateWeeklyMealPlan(pool, standardGoals, Preferences{
		DietaryRestrictions: []string{"vegetarian"},
		MaxCookingTime:      60,
	}, monday)

	for _, r := range week.Recipes() {
		assert.NotEqual(t, "bacon", r.ID)
		assert.NotEqual(t, "slow", r.ID)
	}
}

func TestGenerateWeeklyMealPlan_Totals(t *testing.T) {
	week := GenerateWeeklyMealPlan(catalog(21), standardGoals, Preferences{}, monday)

	var cost, calories float64
	for _, d := range week.Days {
		var dayCost, dayCalories float64
		for _, r := range d.Meals() {
			dayCost += EstimateRecipeCost(r)
			dayCalories += r.Calories
		}
		assert.InDelta(t, dayCost, d.TotalCost, 1e-9)
		assert.InDelta(t, dayCalories, d.TotalCalories, 1e-9)
		assert.Equal(t, DiversityScore(d.Meals(), nil), d.DiversityScore)
		cost += d.TotalCost
		calories += d.TotalCalories
	}
	assert.InDelta(t, cost, week.TotalCost, 1e-9)
	assert.InDelta(t, calories/DaysPerWeek, week.AverageCalories, 1e-9)
}

func TestGenerateWeeklyMealPlan_Budget(t *testing.T) {
	pool := catalog(21)

	tight := 10.0
	week := GenerateWeeklyMealPlan(pool, NutritionalGoals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65, WeeklyBudget: &tight}, Preferences{}, monday)
	assert.True(t, week.OverBudget)

	generous := 1000.0
	week = GenerateWeeklyMealPlan(pool, NutritionalGoals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65, WeeklyBudget: &generous}, Preferences{}, monday)
	assert.False(t, week.OverBudget)

	week = GenerateWeeklyMealPlan(pool, standardGoals, Preferences{}, monday)
	assert.False(t, week.OverBudget)
}
