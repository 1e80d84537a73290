package telegram

import (
	"fmt"
	"strings"

	"meal-planner/internal/app"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

const quickCookingMinutes = 30

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "[", "\\[", "`", "\\`")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func codeBlock(s string) string {
	return "```\n" + strings.ReplaceAll(s, "```", "'''") + "\n```"
}

// parsePlanText applies free-text keywords such as "vegan quick budget"
// on top of base. Unknown words are ignored.
func parsePlanText(text string, base app.PlanRequest) app.PlanRequest {
	req := base
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ",.;!")
		switch word {
		case "vegetarian", "vegan", "gluten-free", "glutenfree":
			req.Preferences.DietaryRestrictions = append(req.Preferences.DietaryRestrictions, word)
		case "quick", "fast":
			req.Preferences.MaxCookingTime = quickCookingMinutes
		case "easy":
			req.Preferences.DifficultyPreference = planner.DifficultyEasy
		case "budget", "cheap":
			req.Priorities.Budget = true
		case "prep", "mealprep":
			req.Preferences.MealPrepFriendly = true
		case "repeat", "leftovers":
			req.Preferences.AllowMealRepetition = true
		case "variety":
			req.Priorities.Variety = true
		case "protein", "healthy":
			req.Priorities.Nutrition = true
		}
	}
	return req
}

func formatWeekMarkdown(week planner.MealPlanWeek) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 *Weekly Meal Plan* (%s)\n\n", week.WeekStart.Format("Jan 2"))

	for _, day := range week.Days {
		fmt.Fprintf(&sb, "*%s*\n", day.Date.Format("Monday"))
		for _, slot := range planner.Slots {
			title := "_nothing suitable_"
			if r := day.Meal(slot); r != nil {
				title = fmt.Sprintf("%s (%d mins)", escapeMarkdown(r.Title), r.ReadyInMinutes)
			}
			fmt.Fprintf(&sb, "  • %s: %s\n", slot, title)
		}
		fmt.Fprintf(&sb, "  _%.0f kcal_\n", day.TotalCalories)
	}

	fmt.Fprintf(&sb, "\n🔥 *Avg Calories:* %.0f kcal/day\n", week.AverageCalories)
	fmt.Fprintf(&sb, "💪 *Avg Protein:* %.0f g/day\n", week.AverageProtein)
	fmt.Fprintf(&sb, "💰 *Total Cost:* $%.2f", week.TotalCost)
	if week.OverBudget {
		sb.WriteString(" ⚠️ over budget")
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "🌈 *Variety:* %.0f%%", week.DiversityScore)
	return sb.String()
}

func formatShoppingMarkdown(items []shopping.Item) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping List*\n\n")
	if len(items) == 0 {
		sb.WriteString("_Nothing to buy_")
		return sb.String()
	}
	for _, item := range items {
		fmt.Fprintf(&sb, "• %s\n", escapeMarkdown(shopping.FormatItem(item)))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func formatRecommendationsMarkdown(recs []recipe.Recipe) string {
	if len(recs) == 0 {
		return "🤷 No recipe matches your preferences yet."
	}
	var sb strings.Builder
	sb.WriteString("⭐ *Recommended Recipes*\n\n")
	for i, r := range recs {
		fmt.Fprintf(&sb, "%d. *%s*: %.0f kcal, %d mins\n", i+1, escapeMarkdown(r.Title), r.Calories, r.ReadyInMinutes)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
