package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meal-planner/internal/llm"
)

const timestampLayout = "2006-01-02 15:04:05"

// ExecutionMetric records metadata for a single agent execution.
type ExecutionMetric struct {
	AgentName        string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// PlanRun records the outcome of one weekly plan generation.
type PlanRun struct {
	UserID            string
	CandidateCount    int
	EligibleCount     int
	EmptySlots        int
	TotalCost         float64
	DiversityScore    float64
	IngredientOverlap float64
	LatencyMS         int64
	Timestamp         time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m ExecutionMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO execution_metrics (agent_name, model, prompt_tokens, completion_tokens, latency_ms, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.AgentName, m.Model, m.PromptTokens, m.CompletionTokens, m.LatencyMS, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record execution metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from llm.AgentMeta.
func (s *Store) RecordMeta(meta llm.AgentMeta) error {
	if meta.Usage.PromptTokens == 0 && meta.Usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(MapUsage(meta.AgentName, meta.Usage, meta.Latency))
}

// RecordPlanRun saves the summary of a plan generation.
func (s *Store) RecordPlanRun(run PlanRun) error {
	ts := run.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO planning_runs (user_id, candidate_count, eligible_count, empty_slots, total_cost,
		 diversity_score, ingredient_overlap, latency_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.UserID, run.CandidateCount, run.EligibleCount, run.EmptySlots, run.TotalCost,
		run.DiversityScore, run.IngredientOverlap, run.LatencyMS, ts.UTC().Format(timestampLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record planning run: %w", err)
	}
	return nil
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
}

// GetDailyUsage retrieves usage for the last N days, newest day first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(timestampLayout)
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT substr(timestamp, 1, 10) AS day, SUM(prompt_tokens), SUM(completion_tokens), COUNT(*)
		 FROM execution_metrics WHERE timestamp >= ? GROUP BY day ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalExecution); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// RecentPlanRuns returns the latest planning runs, newest first.
func (s *Store) RecentPlanRuns(limit int) ([]PlanRun, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT user_id, candidate_count, eligible_count, empty_slots, total_cost, diversity_score,
		 ingredient_overlap, latency_ms, timestamp FROM planning_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query planning runs: %w", err)
	}
	defer rows.Close()

	var runs []PlanRun
	for rows.Next() {
		var (
			run PlanRun
			ts  string
		)
		if err := rows.Scan(&run.UserID, &run.CandidateCount, &run.EligibleCount, &run.EmptySlots,
			&run.TotalCost, &run.DiversityScore, &run.IngredientOverlap, &run.LatencyMS, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan planning run: %w", err)
		}
		if run.Timestamp, err = time.Parse(timestampLayout, ts); err != nil {
			return nil, fmt.Errorf("invalid planning run timestamp %q: %w", ts, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Cleanup removes records older than the specified number of days and
// returns how many rows went.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(timestampLayout)

	var total int64
	for _, table := range []string{"execution_metrics", "planning_runs"} {
		res, err := s.db.ExecContext(context.Background(),
			`DELETE FROM `+table+` WHERE timestamp < ?`, threshold)
		if err != nil {
			return total, fmt.Errorf("failed to clean up %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to count cleaned %s rows: %w", table, err)
		}
		total += n
	}
	return total, nil
}

// MapUsage helper to convert llm.TokenUsage to ExecutionMetric.
func MapUsage(agentName string, usage llm.TokenUsage, latency time.Duration) ExecutionMetric {
	return ExecutionMetric{
		AgentName:        agentName,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
