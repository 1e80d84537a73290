package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"meal-planner/internal/clipper"
	"meal-planner/internal/config"
	"meal-planner/internal/database"
	"meal-planner/internal/ghost"
	"meal-planner/internal/llm"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// defaultIngestDelay keeps ingestion under the Gemini free tier limit of 15 requests per minute.
const defaultIngestDelay = 5 * time.Second

var (
	// ErrEmptyCatalog is returned when planning is requested before any recipe was imported.
	ErrEmptyCatalog = errors.New("recipe catalog is empty")
	// ErrGhostNotConfigured is returned by operations that need the Ghost APIs.
	ErrGhostNotConfigured = errors.New("ghost client not configured")
	// ErrLLMNotConfigured is returned by operations that need a text generator.
	ErrLLMNotConfigured = errors.New("text generator not configured")
)

// App holds the application's dependencies.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	db           *database.DB
	recipeRepo   *recipe.Repository
	planRepo     *planner.PlanRepository
	shoppingRepo *shopping.Repository
	metricsStore *metrics.Store
	collector    *metrics.Collector

	ghostClient   ghost.Client
	extractor     *recipe.Extractor
	recipeClipper *clipper.Clipper

	validate    *validator.Validate
	now         func() time.Time
	ingestDelay time.Duration
	closers     []func() error
}

// NewApp creates and initializes a new App instance. ghostClient and
// textGen may be nil; the operations that need them then fail with
// ErrGhostNotConfigured or ErrLLMNotConfigured.
func NewApp(
	cfg *config.Config,
	db *database.DB,
	ghostClient ghost.Client,
	textGen llm.TextGenerator,
	collector *metrics.Collector,
	logger *zap.Logger,
) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector("")
	}

	a := &App{
		cfg:          cfg,
		logger:       logger,
		db:           db,
		recipeRepo:   recipe.NewRepository(db.SQL, logger),
		planRepo:     planner.NewPlanRepository(db.SQL),
		shoppingRepo: shopping.NewRepository(db.SQL),
		metricsStore: metrics.NewStore(db.SQL),
		collector:    collector,
		ghostClient:  ghostClient,
		validate:     validator.New(),
		now:          time.Now,
		ingestDelay:  defaultIngestDelay,
	}

	if textGen != nil {
		a.extractor = recipe.NewExtractor(textGen)
		a.recipeClipper = clipper.NewClipper(a.extractor, ghostClient, false)
	}
	return a
}

// Close releases the database and any client the App owns.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}

// Collector exposes the Prometheus collector for HTTP serving.
func (a *App) Collector() *metrics.Collector {
	return a.collector
}

// Metrics exposes the usage store.
func (a *App) Metrics() *metrics.Store {
	return a.metricsStore
}

// SchemaVersion reports the database schema version.
func (a *App) SchemaVersion() uint {
	return a.db.Version
}

// Config returns the configuration the App was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// PlanRequest is everything one plan generation needs besides the catalog.
type PlanRequest struct {
	Goals       planner.NutritionalGoals `json:"goals"`
	Preferences planner.Preferences      `json:"preferences"`
	Priorities  planner.PriorityFlags    `json:"priorities"`
	// WeekStart is a YYYY-MM-DD date; empty means next Monday.
	WeekStart string `json:"week_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	// Replace drops earlier plans of the same user and week.
	Replace bool `json:"replace,omitempty"`
}

// PlanRequestFromConfig builds a request from the configured defaults.
func PlanRequestFromConfig(cfg *config.Config) PlanRequest {
	req := PlanRequest{
		Goals: planner.NutritionalGoals{
			Calories: cfg.DefaultDailyCalories,
			Protein:  cfg.DefaultDailyProtein,
			Carbs:    cfg.DefaultDailyCarbs,
			Fat:      cfg.DefaultDailyFat,
		},
	}
	if cfg.DefaultWeeklyBudget > 0 {
		budget := cfg.DefaultWeeklyBudget
		req.Goals.WeeklyBudget = &budget
	}
	return req
}

// LoadPlanRequest reads a JSON request file. Goals the file leaves at zero
// fall back to the configured defaults.
func LoadPlanRequest(path string, cfg *config.Config) (PlanRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanRequest{}, fmt.Errorf("failed to read plan request: %w", err)
	}

	var req PlanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return PlanRequest{}, fmt.Errorf("failed to parse plan request %s: %w", path, err)
	}

	defaults := PlanRequestFromConfig(cfg)
	if req.Goals.Calories == 0 && req.Goals.Protein == 0 && req.Goals.Carbs == 0 && req.Goals.Fat == 0 {
		budget := req.Goals.WeeklyBudget
		req.Goals = defaults.Goals
		if budget != nil {
			req.Goals.WeeklyBudget = budget
		}
	}
	return req, nil
}

func (a *App) validateRequest(req PlanRequest) error {
	if err := a.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid plan request: %w", err)
	}
	return nil
}

// weekStart resolves the request's week, defaulting to next Monday.
func (a *App) weekStart(req PlanRequest) (time.Time, error) {
	if req.WeekStart == "" {
		return planner.GetNextMonday(a.now()), nil
	}
	t, err := time.Parse("2006-01-02", req.WeekStart)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week_start %q: %w", req.WeekStart, err)
	}
	return t, nil
}
