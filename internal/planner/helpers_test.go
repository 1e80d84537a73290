package planner

import (
	"fmt"

	"meal-planner/internal/recipe"
)

var standardGoals = NutritionalGoals{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

func newRecipe(id, title, dishType string, calories float64, ingredients ...string) recipe.Recipe {
	r := recipe.Recipe{
		ID:             id,
		Title:          title,
		ReadyInMinutes: 30,
		Servings:       2,
		Calories:       calories,
		Protein:        calories * 0.075,
		Carbs:          calories * 0.1,
		Fat:            calories * 0.0325,
		Difficulty:     recipe.DifficultyMedium,
		Ingredients:    []recipe.Ingredient{},
	}
	if dishType != "" {
		r.DishTypes = []string{dishType}
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{Name: name, Amount: 1, Unit: "cup"})
	}
	return r
}

// catalog returns n recipes cycling through breakfast, lunch and dinner
// tags, each with its own ingredients.
func catalog(n int) []recipe.Recipe {
	dishTypes := []string{"breakfast", "lunch", "dinner"}
	out := make([]recipe.Recipe, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, newRecipe(
			fmt.Sprintf("r%02d", i),
			fmt.Sprintf("Recipe %02d", i),
			dishTypes[i%len(dishTypes)],
			500+float64(i*15),
			fmt.Sprintf("item-%02d-a", i),
			fmt.Sprintf("item-%02d-b", i),
		))
	}
	return out
}

func ids(recipes []recipe.Recipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}
