package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a recipe id is not in the catalog.
var ErrNotFound = errors.New("recipe not found")

// Difficulty is the qualitative effort tag of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Ingredient is a single line item of a recipe.
type Ingredient struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Recipe is a catalog entry as consumed by the planner.
// A nil Ingredients slice means the source did not provide an ingredient list;
// an empty slice means the recipe has no ingredients.
type Recipe struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	ReadyInMinutes int          `json:"ready_in_minutes"`
	Servings       int          `json:"servings"`
	Cuisines       []string     `json:"cuisines,omitempty"`
	Diets          []string     `json:"diets,omitempty"`
	DishTypes      []string     `json:"dish_types,omitempty"`
	Calories       float64      `json:"calories"`
	Protein        float64      `json:"protein"`
	Carbs          float64      `json:"carbs"`
	Fat            float64      `json:"fat"`
	Ingredients    []Ingredient `json:"ingredients"`
	Difficulty     Difficulty   `json:"difficulty,omitempty"`
	EstimatedCost  *float64     `json:"estimated_cost,omitempty"`
	SourceURL      string       `json:"source_url,omitempty"`
	UpdatedAt      string       `json:"updated_at,omitempty"`
}

// PostData is the raw material handed to the extractor.
type PostData struct {
	ID        string
	Title     string
	UpdatedAt string
	SourceURL string
	HTML      string
}

// Validate checks the fields ingestion relies on.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("recipe id is required")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("recipe %s: title is required", r.ID)
	}
	if r.Calories < 0 || r.Protein < 0 || r.Carbs < 0 || r.Fat < 0 {
		return fmt.Errorf("recipe %s: macros cannot be negative", r.ID)
	}
	if r.EstimatedCost != nil && *r.EstimatedCost < 0 {
		return fmt.Errorf("recipe %s: estimated cost cannot be negative", r.ID)
	}
	if r.ReadyInMinutes < 0 || r.Servings < 0 {
		return fmt.Errorf("recipe %s: time and servings cannot be negative", r.ID)
	}
	switch r.Difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("recipe %s: unknown difficulty %q", r.ID, r.Difficulty)
	}
	return nil
}

// IngredientNames returns the ingredient names in list order.
func (r Recipe) IngredientNames() []string {
	names := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// HasDishType reports whether the recipe carries the dish type tag, ignoring case.
func (r Recipe) HasDishType(dishType string) bool {
	for _, dt := range r.DishTypes {
		if strings.EqualFold(strings.TrimSpace(dt), dishType) {
			return true
		}
	}
	return false
}
