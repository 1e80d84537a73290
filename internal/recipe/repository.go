package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timeLayout = "2006-01-02 15:04:05"

// Repository is a database-backed repository for recipes.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: d, logger: logger}
}

// Save inserts or updates a recipe in the database.
func (r *Repository) Save(ctx context.Context, rec Recipe) error {
	recipeJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe to JSON: %w", err)
	}

	updatedAt := time.Now().UTC()
	if rec.UpdatedAt != "" {
		parsed, err := time.Parse(time.RFC3339, rec.UpdatedAt)
		if err != nil {
			r.logger.Warn("unparseable recipe updated_at, using current time",
				zap.String("recipe_id", rec.ID),
				zap.String("updated_at", rec.UpdatedAt),
				zap.Error(err),
			)
		} else {
			updatedAt = parsed.UTC()
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO recipes (id, title, data, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, data = excluded.data, updated_at = excluded.updated_at`,
		rec.ID, rec.Title, string(recipeJSON), updatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save recipe %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a recipe by its ID.
func (r *Repository) Get(ctx context.Context, id string) (*Recipe, error) {
	var data string
	err := r.db.QueryRowContext(ctx, `SELECT data FROM recipes WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe by ID: %w", err)
	}

	var rec Recipe
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	return &rec, nil
}

// GetByIDs retrieves multiple recipes by their IDs. Unknown ids are skipped.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Recipe, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM recipes WHERE id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes by IDs: %w", err)
	}
	return r.scanRecipes(rows)
}

// List retrieves the whole catalog ordered by id.
func (r *Repository) List(ctx context.Context) ([]Recipe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, data FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return r.scanRecipes(rows)
}

// Count returns the number of recipes in the database.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return count, nil
}

// Delete removes a recipe. Deleting an unknown id is not an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete recipe %s: %w", id, err)
	}
	return nil
}

func (r *Repository) scanRecipes(rows *sql.Rows) ([]Recipe, error) {
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan recipe row: %w", err)
		}
		var rec Recipe
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			// Corrupted rows are skipped so one bad entry does not hide the catalog.
			r.logger.Warn("failed to unmarshal recipe JSON", zap.String("recipe_id", id), zap.Error(err))
			continue
		}
		recipes = append(recipes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipes: %w", err)
	}
	return recipes, nil
}
