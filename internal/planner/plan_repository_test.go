package planner

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/database"
)

func newTestPlanRepository(t *testing.T) *PlanRepository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPlanRepository(db.SQL)
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestPlanRepository(t)
	week := GenerateWeeklyMealPlan(catalog(21), standardGoals, Preferences{}, monday)

	id, err := repo.Save(ctx, "user-1", week)
	require.NoError(t, err)
	assert.Positive(t, id)

	t.Run("Get", func(t *testing.T) {
		stored, err := repo.Get(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, "user-1", stored.UserID)
		assert.True(t, stored.WeekStart.Equal(monday))
		assert.WithinDuration(t, time.Now(), stored.CreatedAt, time.Minute)
		assert.InDelta(t, week.TotalCost, stored.Week.TotalCost, 1e-9)
		for i := range week.Days {
			assert.Equal(t, slotIDs(week.Days[i]), slotIDs(stored.Week.Days[i]))
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, id+100)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})

	t.Run("ExistsForWeek", func(t *testing.T) {
		exists, err := repo.ExistsForWeek(ctx, "user-1", monday)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsForWeek(ctx, "user-2", monday)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("ListRecentByUserID", func(t *testing.T) {
		nextWeek := GenerateWeeklyMealPlan(catalog(21), standardGoals, Preferences{}, monday.AddDate(0, 0, 7))
		newer, err := repo.Save(ctx, "user-1", nextWeek)
		require.NoError(t, err)

		plans, err := repo.ListRecentByUserID(ctx, "user-1", 5)
		require.NoError(t, err)
		require.Len(t, plans, 2)
		assert.Equal(t, newer, plans[0].ID)
		assert.Equal(t, id, plans[1].ID)

		latest, err := repo.LatestForWeek(ctx, "user-1", monday.AddDate(0, 0, 7))
		require.NoError(t, err)
		assert.Equal(t, newer, latest.ID)
	})

	t.Run("DeleteForWeek", func(t *testing.T) {
		require.NoError(t, repo.DeleteForWeek(ctx, "user-1", monday))

		exists, err := repo.ExistsForWeek(ctx, "user-1", monday)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.LatestForWeek(ctx, "user-1", monday)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestGetNextMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"friday", time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC), monday},
		{"sunday", time.Date(2026, time.October, 18, 23, 0, 0, 0, time.UTC), monday},
		{"monday moves a week", time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC), monday.AddDate(0, 0, 7)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetNextMonday(tt.in))
		})
	}
}
