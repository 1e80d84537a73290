package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save creates a new shopping list in the database.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shopping_lists (user_id, meal_plan_id, week_start_date, items, created_at) VALUES (?, ?, ?, ?, ?)`,
		list.UserID, list.MealPlanID, list.WeekStart.Format(dateLayout), string(itemsJSON),
		time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}
	return res.LastInsertId()
}

// GetByMealPlanID retrieves a shopping list by meal plan ID.
// It returns nil, nil when the plan has no list.
func (r *Repository) GetByMealPlanID(ctx context.Context, mealPlanID int64) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, meal_plan_id, week_start_date, items, created_at FROM shopping_lists
		 WHERE meal_plan_id = ? ORDER BY id DESC LIMIT 1`, mealPlanID)

	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by meal plan ID: %w", err)
	}
	return list, nil
}

// GetByUserAndWeek retrieves the latest shopping list for a user and week.
// It returns nil, nil when there is none.
func (r *Repository) GetByUserAndWeek(ctx context.Context, userID string, weekStart time.Time) (*ShoppingList, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, meal_plan_id, week_start_date, items, created_at FROM shopping_lists
		 WHERE user_id = ? AND week_start_date = ? ORDER BY id DESC LIMIT 1`,
		userID, weekStart.Format(dateLayout))

	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list by user and week: %w", err)
	}
	return list, nil
}

// DeleteByMealPlanID deletes a shopping list by meal plan ID.
func (r *Repository) DeleteByMealPlanID(ctx context.Context, mealPlanID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE meal_plan_id = ?`, mealPlanID); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

func scanList(row *sql.Row) (*ShoppingList, error) {
	var (
		list                 ShoppingList
		weekStart, createdAt string
		items                string
	)
	if err := row.Scan(&list.ID, &list.UserID, &list.MealPlanID, &weekStart, &items, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}

	var err error
	if list.WeekStart, err = time.Parse(dateLayout, weekStart); err != nil {
		return nil, fmt.Errorf("invalid week_start_date %q: %w", weekStart, err)
	}
	if list.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return &list, nil
}
