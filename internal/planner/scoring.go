package planner

import (
	"math"
	"strings"

	"meal-planner/internal/recipe"
)

const mealsPerDay = 3

// Macro blend used by NutritionalScore; calorie accuracy dominates.
const (
	calorieWeight = 0.4
	proteinWeight = 0.3
	carbsWeight   = 0.2
	fatWeight     = 0.1
)

// Cost model constants for EstimateRecipeCost.
const (
	costPerIngredient      = 2.0
	budgetIngredientCredit = 0.5
	premiumIngredientCost  = 3.0
	minimumRecipeCost      = 1.0
	defaultIngredientCount = 5
)

var (
	BudgetKeywords  = []string{"rice", "pasta", "beans", "lentils", "egg", "potato", "carrot", "onion"}
	PremiumKeywords = []string{"beef", "salmon", "shrimp", "lobster", "truffle"}
	BatchKeywords   = []string{"one-pot", "batch", "casserole", "bake", "slow cooker", "instant pot", "stew", "soup", "curry"}
)

// NutritionalScore rates how close a recipe's macros are to one third of
// the daily goals. A zero target scores 0 for that macro.
func NutritionalScore(r recipe.Recipe, goals NutritionalGoals) float64 {
	score := calorieWeight*macroScore(r.Calories, goals.Calories/mealsPerDay) +
		proteinWeight*macroScore(r.Protein, goals.Protein/mealsPerDay) +
		carbsWeight*macroScore(r.Carbs, goals.Carbs/mealsPerDay) +
		fatWeight*macroScore(r.Fat, goals.Fat/mealsPerDay)
	return clamp(score)
}

func macroScore(actual, target float64) float64 {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return 0
	}
	return math.Max(0, 100-math.Abs(actual-target)/target*100)
}

// EstimateRecipeCost returns the recipe's known cost when it is positive,
// otherwise an estimate from its ingredient list that is never below 1.
//
// A nil ingredient list means the ingredients are unknown and is priced as
// five ordinary ingredients (10). An empty, non-nil list is a recipe with no
// ingredients and costs the floor of 1.
func EstimateRecipeCost(r recipe.Recipe) float64 {
	if r.EstimatedCost != nil && *r.EstimatedCost > 0 {
		return *r.EstimatedCost
	}
	if r.Ingredients == nil {
		return defaultIngredientCount * costPerIngredient
	}

	cost := float64(len(r.Ingredients)) * costPerIngredient
	for _, ing := range r.Ingredients {
		name := strings.ToLower(ing.Name)
		if containsKeyword(name, BudgetKeywords) {
			cost -= budgetIngredientCredit
		}
		if containsKeyword(name, PremiumKeywords) {
			cost += premiumIngredientCost
		}
	}
	return math.Max(minimumRecipeCost, cost)
}

// MealPrepScore rates batch-cooking suitability.
func MealPrepScore(r recipe.Recipe) float64 {
	score := 50.0
	switch {
	case r.Servings >= 6:
		score += 30
	case r.Servings >= 4:
		score += 20
	}
	if containsKeyword(strings.ToLower(r.Title), BatchKeywords) {
		score += 20
	}
	if r.Difficulty == recipe.DifficultyEasy {
		score += 10
	}
	return math.Min(100, score)
}

// DiversityScore rates cuisine, dish-type and ingredient variety across
// candidates and existing together.
func DiversityScore(candidates, existing []recipe.Recipe) float64 {
	cuisines := make(map[string]struct{})
	dishTypes := make(map[string]struct{})
	ingredients := make(map[string]struct{})

	for _, set := range [][]recipe.Recipe{candidates, existing} {
		for _, r := range set {
			for _, c := range r.Cuisines {
				cuisines[c] = struct{}{}
			}
			for _, dt := range r.DishTypes {
				dishTypes[dt] = struct{}{}
			}
			for _, ing := range r.Ingredients {
				ingredients[strings.ToLower(ing.Name)] = struct{}{}
			}
		}
	}

	cuisineScore := math.Min(100, float64(len(cuisines))*10)
	dishTypeScore := math.Min(100, float64(len(dishTypes))*8)
	ingredientScore := math.Min(100, float64(len(ingredients))*2)

	return clamp(0.3*cuisineScore + 0.3*dishTypeScore + 0.4*ingredientScore)
}

// IngredientOverlap rates ingredient reuse: 0 when every occurrence is a
// distinct item, approaching 100 as the same items repeat.
func IngredientOverlap(recipes []recipe.Recipe) float64 {
	total := 0
	distinct := make(map[string]struct{})
	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			total++
			distinct[strings.ToLower(ing.Name)] = struct{}{}
		}
	}
	if total == 0 {
		return 0
	}
	return clamp((1 - float64(len(distinct))/float64(total)) * 100)
}

func clamp(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(100, score))
}
