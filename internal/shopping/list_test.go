package shopping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

func TestBuildList(t *testing.T) {
	oats := &recipe.Recipe{ID: "oats", Ingredients: []recipe.Ingredient{
		{Name: "Rolled Oats", Amount: 80, Unit: "g"},
		{Name: "milk", Amount: 1, Unit: "cup"},
	}}
	soup := &recipe.Recipe{ID: "soup", Ingredients: []recipe.Ingredient{
		{Name: " rolled oats ", Amount: 20, Unit: "G"},
		{Name: "milk", Amount: 200, Unit: "ml"},
		{Name: "", Amount: 1},
	}}

	var week planner.MealPlanWeek
	week.WeekStart = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	week.Days[0] = planner.MealPlanDay{Breakfast: oats, Lunch: soup}
	week.Days[1] = planner.MealPlanDay{Breakfast: oats}

	items := BuildList(week)

	assert.Equal(t, []Item{
		{Name: "milk", Amount: 2, Unit: "cup", Count: 2},
		{Name: "milk", Amount: 200, Unit: "ml", Count: 1},
		{Name: "rolled oats", Amount: 180, Unit: "g", Count: 3},
	}, items)
}

func TestBuildList_EmptyWeek(t *testing.T) {
	assert.Empty(t, BuildList(planner.MealPlanWeek{}))
}

func TestFormatItem(t *testing.T) {
	assert.Equal(t, "rice 2 cup", FormatItem(Item{Name: "rice", Amount: 2, Unit: "cup"}))
	assert.Equal(t, "lemon 1.5", FormatItem(Item{Name: "lemon", Amount: 1.5}))
	assert.Equal(t, "salt", FormatItem(Item{Name: "salt"}))
}
