package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "data/meal_planner.db", cfg.DatabasePath)
		assert.Equal(t, "data/recipes", cfg.RecipeStoragePath)
		assert.Equal(t, "default_user", cfg.DefaultUserID)
		assert.Equal(t, 2000.0, cfg.DefaultDailyCalories)
		assert.Equal(t, 150.0, cfg.DefaultDailyProtein)
		assert.Equal(t, 200.0, cfg.DefaultDailyCarbs)
		assert.Equal(t, 65.0, cfg.DefaultDailyFat)
		assert.Zero(t, cfg.DefaultWeeklyBudget)
		assert.Equal(t, "8080", cfg.Port)
	})

	t.Run("Overrides", func(t *testing.T) {
		t.Setenv("DATABASE_PATH", "/tmp/plans.db")
		t.Setenv("GHOST_API_URL", "http://ghost.test/")
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")
		t.Setenv("DEFAULT_DAILY_CALORIES", "1800")
		t.Setenv("DEFAULT_WEEKLY_BUDGET", "75.5")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		t.Setenv("ADMIN_TELEGRAM_ID", "12")

		cfg, err := NewFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/plans.db", cfg.DatabasePath)
		assert.Equal(t, "http://ghost.test", cfg.GhostURL)
		assert.Equal(t, "ghost_key", cfg.GhostAdminKey, "admin key falls back to content key")
		assert.Equal(t, 1800.0, cfg.DefaultDailyCalories)
		assert.Equal(t, 75.5, cfg.DefaultWeeklyBudget)
		assert.Equal(t, []int64{12, 34}, cfg.TelegramAllowedUserIDs)
		assert.Equal(t, int64(12), cfg.AdminTelegramID)
	})

	t.Run("InvalidNumber", func(t *testing.T) {
		t.Setenv("DEFAULT_DAILY_PROTEIN", "lots")

		_, err := NewFromEnv()
		assert.EqualError(t, err, `DEFAULT_DAILY_PROTEIN: expected a non-negative number, got "lots"`)
	})

	t.Run("InvalidUserIDs", func(t *testing.T) {
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_ALLOWED_USER_IDS")
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "planner.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_user_id: alice\nlog_level: debug\n"), 0644))
		t.Setenv("MEAL_PLANNER_CONFIG", path)
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "alice", cfg.DefaultUserID)
		assert.Equal(t, "warn", cfg.LogLevel, "environment wins over the file")
	})
}

func TestRequire(t *testing.T) {
	t.Run("MissingGhostURL", func(t *testing.T) {
		cfg := &Config{GhostContentKey: "key"}
		assert.EqualError(t, cfg.RequireGhost(), "GHOST_API_URL environment variable not set")
	})

	t.Run("MissingGhostAPIKey", func(t *testing.T) {
		cfg := &Config{GhostURL: "http://ghost.test"}
		assert.EqualError(t, cfg.RequireGhost(), "GHOST_CONTENT_API_KEY environment variable not set")
	})

	t.Run("MissingLLM", func(t *testing.T) {
		assert.EqualError(t, (&Config{}).RequireLLM(), "GROQ_API_KEY environment variable not set")
		assert.NoError(t, (&Config{GeminiAPIKey: "gemini"}).RequireLLM())
	})

	t.Run("MissingTelegram", func(t *testing.T) {
		cfg := &Config{TelegramBotToken: "token"}
		assert.EqualError(t, cfg.RequireTelegram(), "TELEGRAM_WEBHOOK_URL environment variable not set")
	})
}
