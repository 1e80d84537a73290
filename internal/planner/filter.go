package planner

import (
	"strings"

	"meal-planner/internal/recipe"
)

// Keyword vocabularies for dietary restrictions. Matching is a
// case-insensitive substring test against the title and ingredient names,
// so "eggplant" trips the egg keyword; that is accepted policy.
var (
	MeatKeywords = []string{
		"chicken", "beef", "pork", "lamb", "turkey", "bacon", "ham", "sausage",
		"steak", "veal", "duck", "meat", "fish", "salmon", "tuna", "cod",
		"shrimp", "prawn", "crab", "lobster", "anchovy", "gelatin",
	}
	AnimalProductKeywords = []string{
		"egg", "milk", "cheese", "butter", "cream", "yogurt", "yoghurt",
		"honey", "dairy", "whey", "ghee",
	}
	GlutenKeywords = []string{"wheat", "bread", "pasta", "flour", "barley", "rye"}
)

// restrictionKeywords maps a normalized restriction tag to the keyword lists it rejects.
var restrictionKeywords = map[string][][]string{
	"vegetarian":  {MeatKeywords},
	"vegan":       {MeatKeywords, AnimalProductKeywords},
	"gluten-free": {GlutenKeywords},
	"gluten free": {GlutenKeywords},
	"glutenfree":  {GlutenKeywords},
}

// MeetsPreferences reports whether a recipe survives every hard constraint.
// Checks run in order (diet, exclusions, time, difficulty) and the first
// failure short-circuits.
func MeetsPreferences(r recipe.Recipe, prefs Preferences) bool {
	haystack := searchText(r)

	for _, restriction := range prefs.DietaryRestrictions {
		for _, keywords := range restrictionKeywords[normalize(restriction)] {
			if containsAny(haystack, keywords) {
				return false
			}
		}
	}

	for _, excluded := range prefs.ExcludedIngredients {
		excluded = normalize(excluded)
		if excluded == "" {
			continue
		}
		for _, text := range haystack {
			if strings.Contains(text, excluded) {
				return false
			}
		}
	}

	if prefs.MaxCookingTime > 0 && r.ReadyInMinutes > prefs.MaxCookingTime {
		return false
	}

	switch prefs.DifficultyPreference {
	case "", DifficultyMixed:
	default:
		if string(r.Difficulty) != string(prefs.DifficultyPreference) {
			return false
		}
	}

	return true
}

// FilterRecipes keeps the recipes that meet prefs, preserving order.
func FilterRecipes(recipes []recipe.Recipe, prefs Preferences) []recipe.Recipe {
	filtered := make([]recipe.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if MeetsPreferences(r, prefs) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// searchText returns the lower-cased title followed by the lower-cased ingredient names.
func searchText(r recipe.Recipe) []string {
	texts := make([]string, 0, len(r.Ingredients)+1)
	texts = append(texts, strings.ToLower(r.Title))
	for _, name := range r.IngredientNames() {
		texts = append(texts, strings.ToLower(name))
	}
	return texts
}

func containsAny(texts []string, keywords []string) bool {
	for _, text := range texts {
		if containsKeyword(text, keywords) {
			return true
		}
	}
	return false
}

// containsKeyword expects text to be lower-cased already.
func containsKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
