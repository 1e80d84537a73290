package planner

import "meal-planner/internal/recipe"

// DifficultyPreference restricts recipes to one difficulty, or to any with DifficultyMixed.
type DifficultyPreference string

const (
	DifficultyMixed  DifficultyPreference = "mixed"
	DifficultyEasy   DifficultyPreference = DifficultyPreference(recipe.DifficultyEasy)
	DifficultyMedium DifficultyPreference = DifficultyPreference(recipe.DifficultyMedium)
	DifficultyHard   DifficultyPreference = DifficultyPreference(recipe.DifficultyHard)
)

// DefaultRepetitionDays is the block length used when repetition is on
// and no valid length was given.
const DefaultRepetitionDays = 2

// NutritionalGoals are the daily targets a plan is scored against.
type NutritionalGoals struct {
	Calories     float64  `json:"calories" validate:"gte=0"`
	Protein      float64  `json:"protein" validate:"gte=0"`
	Carbs        float64  `json:"carbs" validate:"gte=0"`
	Fat          float64  `json:"fat" validate:"gte=0"`
	WeeklyBudget *float64 `json:"weekly_budget,omitempty" validate:"omitempty,gte=0"`
}

// Preferences are the user's hard constraints and repetition policy.
type Preferences struct {
	DietaryRestrictions  []string             `json:"dietary_restrictions,omitempty"`
	ExcludedIngredients  []string             `json:"excluded_ingredients,omitempty"`
	PreferredCuisines    []string             `json:"preferred_cuisines,omitempty"` // informational only
	MaxCookingTime       int                  `json:"max_cooking_time,omitempty" validate:"gte=0"`
	DifficultyPreference DifficultyPreference `json:"difficulty_preference,omitempty" validate:"omitempty,oneof=easy medium hard mixed"`
	MealPrepFriendly     bool                 `json:"meal_prep_friendly,omitempty"`
	AllowMealRepetition  bool                 `json:"allow_meal_repetition,omitempty"`
	RepetitionDays       int                  `json:"repetition_days,omitempty" validate:"gte=0"`

	// VaryRepetitionBlocks keeps a recipe chosen for one repetition block
	// out of later blocks. Without it every block starts from the same
	// ranking and usually repeats the first block's meals.
	VaryRepetitionBlocks bool `json:"vary_repetition_blocks,omitempty"`
}

// blockLength returns the effective repetition block length.
func (p Preferences) blockLength() int {
	if p.RepetitionDays < 1 {
		return DefaultRepetitionDays
	}
	return p.RepetitionDays
}

// PriorityFlags boost the matching ranking weights.
type PriorityFlags struct {
	Nutrition bool `json:"nutrition,omitempty"`
	Budget    bool `json:"budget,omitempty"`
	MealPrep  bool `json:"meal_prep,omitempty"`
	Variety   bool `json:"variety,omitempty"`
}

// AllPriorities enables every boost.
func AllPriorities() PriorityFlags {
	return PriorityFlags{Nutrition: true, Budget: true, MealPrep: true, Variety: true}
}
