package planner

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

// ErrPlanNotFound is returned when a stored plan id does not exist.
var ErrPlanNotFound = errors.New("meal plan not found")

// StoredPlan is a persisted weekly plan.
type StoredPlan struct {
	ID        int64
	UserID    string
	WeekStart time.Time
	Week      MealPlanWeek
	CreatedAt time.Time
}

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts a new meal plan and returns its id.
func (r *PlanRepository) Save(ctx context.Context, userID string, week MealPlanWeek) (int64, error) {
	planData, err := json.Marshal(week)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO meal_plans (user_id, week_start, plan_data, created_at) VALUES (?, ?, ?, ?)`,
		userID, week.WeekStart.Format(dateLayout), string(planData), time.Now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert meal plan for user %s: %w", userID, err)
	}
	return res.LastInsertId()
}

// Get retrieves a meal plan by id.
func (r *PlanRepository) Get(ctx context.Context, id int64) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, plan_data, created_at FROM meal_plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan %d: %w", id, err)
	}
	return plan, nil
}

// ListRecentByUserID retrieves the N most recent meal plans for a given user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, week_start, plan_data, created_at FROM meal_plans
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan for user %s: %w", userID, err)
		}
		plans = append(plans, *plan)
	}
	return plans, rows.Err()
}

// LatestForWeek returns the most recent plan a user saved for the week.
func (r *PlanRepository) LatestForWeek(ctx context.Context, userID string, weekStart time.Time) (*StoredPlan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, week_start, plan_data, created_at FROM meal_plans
		 WHERE user_id = ? AND week_start = ? ORDER BY id DESC LIMIT 1`,
		userID, weekStart.Format(dateLayout))
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get meal plan for week: %w", err)
	}
	return plan, nil
}

// ExistsForWeek reports whether the user already has a plan for the week.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(dateLayout)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check meal plan existence: %w", err)
	}
	return count > 0, nil
}

// DeleteForWeek removes the user's plans for the week; their shopping lists cascade.
func (r *PlanRepository) DeleteForWeek(ctx context.Context, userID string, weekStart time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to delete meal plans for week: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*StoredPlan, error) {
	var (
		plan                 StoredPlan
		weekStart, createdAt string
		planData             string
	)
	if err := row.Scan(&plan.ID, &plan.UserID, &weekStart, &planData, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(planData), &plan.Week); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal plan %d: %w", plan.ID, err)
	}

	var err error
	if plan.WeekStart, err = time.Parse(dateLayout, weekStart); err != nil {
		return nil, fmt.Errorf("invalid week_start %q: %w", weekStart, err)
	}
	if plan.CreatedAt, err = time.Parse(timestampLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return &plan, nil
}

// GetNextMonday returns the date of the Monday following t (t itself is never returned).
func GetNextMonday(t time.Time) time.Time {
	daysUntil := (int(time.Monday) - int(t.Weekday()) + 7) % 7
	if daysUntil == 0 {
		daysUntil = 7
	}
	next := t.AddDate(0, 0, daysUntil)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, t.Location())
}
