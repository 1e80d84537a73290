package planner

import (
	"sort"
	"strings"
	"time"

	"meal-planner/internal/recipe"
)

// Meal-type heuristics used to bucket the filtered pool.
var (
	breakfastDishTypes = []string{"breakfast"}
	breakfastTitleKeys = []string{"breakfast", "omelette", "eggs"}
	lunchDishTypes     = []string{"lunch", "soup"}
	lunchTitleKeys     = []string{"soup", "salad", "bowl"}
	dinnerDishTypes    = []string{"dinner", "main course"}
	dinnerTitleKeys    = []string{"curry", "stew", "pasta", "rice"}
)

// GenerateWeeklyMealPlan assigns breakfast, lunch and dinner for seven days
// starting at weekStart. Selection is greedy per slot and per day: the best
// remaining recipe by nutrition score wins, with no lookahead. Slots that
// cannot be filled are left nil.
func GenerateWeeklyMealPlan(recipes []recipe.Recipe, goals NutritionalGoals, prefs Preferences, weekStart time.Time) MealPlanWeek {
	pool := FilterRecipes(recipes, prefs)
	buckets := [mealsPerDay][]recipe.Recipe{
		bucketFor(pool, breakfastDishTypes, breakfastTitleKeys, goals),
		bucketFor(pool, lunchDishTypes, lunchTitleKeys, goals),
		bucketFor(pool, dinnerDishTypes, dinnerTitleKeys, goals),
	}

	start := time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, weekStart.Location())
	block := prefs.blockLength()

	used := make(map[string]struct{})
	var last [mealsPerDay]*recipe.Recipe

	week := MealPlanWeek{WeekStart: start}
	for i := 0; i < DaysPerWeek; i++ {
		var picks [mealsPerDay]*recipe.Recipe
		if prefs.AllowMealRepetition && i%block != 0 {
			picks = repeatPicks(last)
		} else {
			markUsed := !prefs.AllowMealRepetition || prefs.VaryRepetitionBlocks
			for s, bucket := range buckets {
				picks[s] = pickUnused(bucket, used)
				if picks[s] != nil && markUsed {
					used[picks[s].ID] = struct{}{}
				}
			}
		}
		last = picks
		week.Days[i] = buildDay(start.AddDate(0, 0, i), picks)
	}

	return aggregateWeek(week, goals)
}

// bucketFor returns the pool members matching the meal type, best
// nutrition score first. An empty match falls back to the whole pool.
func bucketFor(pool []recipe.Recipe, dishTypes, titleKeys []string, goals NutritionalGoals) []recipe.Recipe {
	type scored struct {
		recipe recipe.Recipe
		score  float64
	}

	var matches []scored
	for _, r := range pool {
		if matchesMealType(r, dishTypes, titleKeys) {
			matches = append(matches, scored{recipe: r})
		}
	}
	if len(matches) == 0 {
		for _, r := range pool {
			matches = append(matches, scored{recipe: r})
		}
	}

	for i := range matches {
		matches[i].score = NutritionalScore(matches[i].recipe, goals)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	bucket := make([]recipe.Recipe, len(matches))
	for i, m := range matches {
		bucket[i] = m.recipe
	}
	return bucket
}

func matchesMealType(r recipe.Recipe, dishTypes, titleKeys []string) bool {
	for _, dt := range dishTypes {
		if r.HasDishType(dt) {
			return true
		}
	}
	return containsKeyword(strings.ToLower(r.Title), titleKeys)
}

// repeatPicks copies the previous day's recipes so no two days share a
// pointer. Slice fields still alias the input catalog.
func repeatPicks(last [mealsPerDay]*recipe.Recipe) [mealsPerDay]*recipe.Recipe {
	var picks [mealsPerDay]*recipe.Recipe
	for s, r := range last {
		if r != nil {
			c := *r
			picks[s] = &c
		}
	}
	return picks
}

// pickUnused returns a copy of the first bucket entry not yet used.
func pickUnused(bucket []recipe.Recipe, used map[string]struct{}) *recipe.Recipe {
	for _, r := range bucket {
		if _, taken := used[r.ID]; taken {
			continue
		}
		pick := r
		return &pick
	}
	return nil
}

func buildDay(date time.Time, picks [mealsPerDay]*recipe.Recipe) MealPlanDay {
	day := MealPlanDay{
		Date:      date,
		Breakfast: picks[0],
		Lunch:     picks[1],
		Dinner:    picks[2],
	}

	meals := day.Meals()
	for _, r := range meals {
		day.TotalCalories += r.Calories
		day.TotalProtein += r.Protein
		day.TotalCarbs += r.Carbs
		day.TotalFat += r.Fat
		day.TotalCost += EstimateRecipeCost(r)
	}
	day.DiversityScore = DiversityScore(meals, nil)
	return day
}

func aggregateWeek(week MealPlanWeek, goals NutritionalGoals) MealPlanWeek {
	var calories, protein, carbs, fat float64
	for _, d := range week.Days {
		week.TotalCost += d.TotalCost
		calories += d.TotalCalories
		protein += d.TotalProtein
		carbs += d.TotalCarbs
		fat += d.TotalFat
	}
	week.AverageCalories = calories / DaysPerWeek
	week.AverageProtein = protein / DaysPerWeek
	week.AverageCarbs = carbs / DaysPerWeek
	week.AverageFat = fat / DaysPerWeek

	placed := week.Recipes()
	week.DiversityScore = DiversityScore(placed, nil)
	week.IngredientOverlap = IngredientOverlap(placed)
	week.OverBudget = goals.WeeklyBudget != nil && week.TotalCost > *goals.WeeklyBudget
	return week
}
