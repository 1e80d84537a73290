package planner

import (
	"time"

	"meal-planner/internal/recipe"
)

// DaysPerWeek is the fixed length of a plan.
const DaysPerWeek = 7

// Slot names a meal of the day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

// Slots lists the meals of a day in serving order.
var Slots = [mealsPerDay]Slot{SlotBreakfast, SlotLunch, SlotDinner}

// MealPlanDay is one planned day. A nil slot means no eligible recipe was left.
type MealPlanDay struct {
	Date           time.Time      `json:"date"`
	Breakfast      *recipe.Recipe `json:"breakfast,omitempty"`
	Lunch          *recipe.Recipe `json:"lunch,omitempty"`
	Dinner         *recipe.Recipe `json:"dinner,omitempty"`
	TotalCalories  float64        `json:"total_calories"`
	TotalProtein   float64        `json:"total_protein"`
	TotalCarbs     float64        `json:"total_carbs"`
	TotalFat       float64        `json:"total_fat"`
	TotalCost      float64        `json:"total_cost"`
	DiversityScore float64        `json:"diversity_score"`
}

// Meal returns the recipe in slot, or nil.
func (d MealPlanDay) Meal(slot Slot) *recipe.Recipe {
	switch slot {
	case SlotBreakfast:
		return d.Breakfast
	case SlotLunch:
		return d.Lunch
	case SlotDinner:
		return d.Dinner
	}
	return nil
}

// Meals returns the filled slots in breakfast, lunch, dinner order.
func (d MealPlanDay) Meals() []recipe.Recipe {
	meals := make([]recipe.Recipe, 0, mealsPerDay)
	for _, slot := range Slots {
		if r := d.Meal(slot); r != nil {
			meals = append(meals, *r)
		}
	}
	return meals
}

// EmptySlots counts the absent meals of the day.
func (d MealPlanDay) EmptySlots() int {
	return mealsPerDay - len(d.Meals())
}

// MealPlanWeek is the engine's output: seven days plus weekly aggregates.
type MealPlanWeek struct {
	WeekStart         time.Time                `json:"week_start"`
	Days              [DaysPerWeek]MealPlanDay `json:"days"`
	TotalCost         float64                  `json:"total_cost"`
	AverageCalories   float64                  `json:"average_calories"`
	AverageProtein    float64                  `json:"average_protein"`
	AverageCarbs      float64                  `json:"average_carbs"`
	AverageFat        float64                  `json:"average_fat"`
	DiversityScore    float64                  `json:"diversity_score"`
	IngredientOverlap float64                  `json:"ingredient_overlap"`
	OverBudget        bool                     `json:"over_budget"`
}

// Recipes returns every placed recipe in placement order, repeats included.
func (w MealPlanWeek) Recipes() []recipe.Recipe {
	var all []recipe.Recipe
	for _, d := range w.Days {
		all = append(all, d.Meals()...)
	}
	return all
}

// EmptySlots counts absent meals across the week.
func (w MealPlanWeek) EmptySlots() int {
	n := 0
	for _, d := range w.Days {
		n += d.EmptySlots()
	}
	return n
}
