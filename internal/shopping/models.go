package shopping

import "time"

// Item is one aggregated line of a shopping list.
type Item struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Count  int     `json:"count"`
}

// ShoppingList represents a shopping list for a meal plan.
type ShoppingList struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	MealPlanID int64     `json:"meal_plan_id"`
	WeekStart  time.Time `json:"week_start"`
	Items      []Item    `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}
