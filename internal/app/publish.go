package app

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"meal-planner/internal/ghost"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

const mealPlanTag = "meal-plan"

// PublishPlan renders a stored plan and its shopping list as a Ghost draft.
func (a *App) PublishPlan(ctx context.Context, planID int64) (*ghost.Post, error) {
	if a.ghostClient == nil {
		return nil, ErrGhostNotConfigured
	}

	plan, err := a.planRepo.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	list, err := a.shoppingRepo.GetByMealPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}
	items := shopping.BuildList(plan.Week)
	if list != nil {
		items = list.Items
	}

	title := fmt.Sprintf("Meal plan for the week of %s", plan.WeekStart.Format("January 2, 2006"))
	post, err := a.ghostClient.CreatePost(ctx, title, renderPlanHTML(plan.Week, items), []string{mealPlanTag}, false)
	if err != nil {
		return nil, fmt.Errorf("failed to publish meal plan: %w", err)
	}

	a.logger.Info("meal plan published", zap.Int64("plan_id", planID), zap.String("post_id", post.ID))
	return post, nil
}

func renderPlanHTML(week planner.MealPlanWeek, items []shopping.Item) string {
	var sb strings.Builder

	sb.WriteString("<table><thead><tr><th>Day</th><th>Breakfast</th><th>Lunch</th><th>Dinner</th><th>kcal</th></tr></thead><tbody>")
	for _, day := range week.Days {
		fmt.Fprintf(&sb, "<tr><td>%s</td>", day.Date.Format("Mon Jan 2"))
		for _, slot := range planner.Slots {
			cell := "-"
			if r := day.Meal(slot); r != nil {
				cell = html.EscapeString(r.Title)
				if r.SourceURL != "" {
					cell = fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(r.SourceURL), cell)
				}
			}
			fmt.Fprintf(&sb, "<td>%s</td>", cell)
		}
		fmt.Fprintf(&sb, "<td>%.0f</td></tr>", day.TotalCalories)
	}
	sb.WriteString("</tbody></table>")

	fmt.Fprintf(&sb, "<p><strong>Daily average:</strong> %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat</p>",
		week.AverageCalories, week.AverageProtein, week.AverageCarbs, week.AverageFat)
	fmt.Fprintf(&sb, "<p><strong>Estimated cost:</strong> %.2f", week.TotalCost)
	if week.OverBudget {
		sb.WriteString(" (over budget)")
	}
	sb.WriteString("</p>")

	if len(items) > 0 {
		sb.WriteString("<h2>Shopping list</h2><ul>")
		for _, item := range items {
			fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(shopping.FormatItem(item)))
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}
