package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath      string
	RecipeStoragePath string
	LogLevel          string
	LogFormat         string
	DefaultUserID     string

	// Planning defaults used when a request does not carry its own goals.
	DefaultDailyCalories float64
	DefaultDailyProtein  float64
	DefaultDailyCarbs    float64
	DefaultDailyFat      float64
	DefaultWeeklyBudget  float64

	GhostURL        string
	GhostContentKey string
	GhostAdminKey   string
	GeminiAPIKey    string
	GeminiModel     string
	GroqAPIKey      string
	GroqModel       string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
	Port                   string
}

// NewFromEnv creates a new Config object from environment variables.
// When MEAL_PLANNER_CONFIG names a file, its keys are read first and the
// environment still wins.
func NewFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("meal_planner_config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		DatabasePath:       v.GetString("database_path"),
		RecipeStoragePath:  v.GetString("recipe_storage_path"),
		LogLevel:           v.GetString("log_level"),
		LogFormat:          v.GetString("log_format"),
		DefaultUserID:      v.GetString("default_user_id"),
		GhostURL:           strings.TrimSuffix(v.GetString("ghost_api_url"), "/"),
		GhostContentKey:    v.GetString("ghost_content_api_key"),
		GhostAdminKey:      v.GetString("ghost_admin_api_key"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		GeminiModel:        v.GetString("gemini_model"),
		GroqAPIKey:         v.GetString("groq_api_key"),
		GroqModel:          v.GetString("groq_model"),
		TelegramBotToken:   v.GetString("telegram_bot_token"),
		TelegramWebhookURL: v.GetString("telegram_webhook_url"),
		Port:               v.GetString("port"),
	}

	if cfg.GhostAdminKey == "" {
		// Fallback to content key if only one is provided
		cfg.GhostAdminKey = cfg.GhostContentKey
	}

	var err error
	floats := []struct {
		key string
		dst *float64
	}{
		{"default_daily_calories", &cfg.DefaultDailyCalories},
		{"default_daily_protein", &cfg.DefaultDailyProtein},
		{"default_daily_carbs", &cfg.DefaultDailyCarbs},
		{"default_daily_fat", &cfg.DefaultDailyFat},
		{"default_weekly_budget", &cfg.DefaultWeeklyBudget},
	}
	for _, f := range floats {
		if *f.dst, err = parseFloat(v, f.key); err != nil {
			return nil, err
		}
	}

	if cfg.TelegramAllowedUserIDs, err = parseIDList(v.GetString("telegram_allowed_user_ids")); err != nil {
		return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}
	if raw := strings.TrimSpace(v.GetString("admin_telegram_id")); raw != "" {
		if cfg.AdminTelegramID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID: invalid id %q", raw)
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/meal_planner.db")
	v.SetDefault("recipe_storage_path", "data/recipes")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("default_user_id", "default_user")
	v.SetDefault("default_daily_calories", "2000")
	v.SetDefault("default_daily_protein", "150")
	v.SetDefault("default_daily_carbs", "200")
	v.SetDefault("default_daily_fat", "65")
	v.SetDefault("default_weekly_budget", "0")
	v.SetDefault("port", "8080")
}

func parseFloat(v *viper.Viper, key string) (float64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%s: expected a non-negative number, got %q", strings.ToUpper(key), raw)
	}
	return f, nil
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// RequireGhost checks the settings needed to talk to the Ghost APIs.
func (c *Config) RequireGhost() error {
	if c.GhostURL == "" {
		return fmt.Errorf("GHOST_API_URL environment variable not set")
	}
	if c.GhostContentKey == "" {
		return fmt.Errorf("GHOST_CONTENT_API_KEY environment variable not set")
	}
	return nil
}

// RequireLLM checks that at least one text generation backend is configured.
func (c *Config) RequireLLM() error {
	if c.GroqAPIKey == "" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GROQ_API_KEY environment variable not set")
	}
	return nil
}

// RequireTelegram checks the settings needed by the bot.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}
