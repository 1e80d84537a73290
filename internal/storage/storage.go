package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"meal-planner/internal/recipe"
)

// unversioned stands in for the timestamp of recipes without UpdatedAt.
const unversioned = "unversioned"

// RecipeStore provides a file-based storage for catalog recipes.
type RecipeStore struct {
	basePath string
}

// NewRecipeStore creates a new RecipeStore and ensures the base directory exists.
func NewRecipeStore(basePath string) (*RecipeStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &RecipeStore{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	if ts == "" {
		return unversioned
	}
	return strings.ReplaceAll(ts, ":", "-")
}

// getVersionedPath returns the full path for a given recipe ID and version.
func (s *RecipeStore) getVersionedPath(recipeID, updatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", recipeID, sanitizeTimestamp(updatedAt))
	return filepath.Join(s.basePath, filename)
}

// Save writes the recipe as <id>_<updatedAt>.json, replacing older versions.
func (s *RecipeStore) Save(rec recipe.Recipe) error {
	if strings.ContainsAny(rec.ID, `/\`) || rec.ID == "" {
		return fmt.Errorf("invalid recipe id %q", rec.ID)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	if err := s.RemoveStaleVersions(rec.ID); err != nil {
		return err
	}

	filePath := s.getVersionedPath(rec.ID, rec.UpdatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write recipe file: %w", err)
	}
	return nil
}

// Exists checks if a specific version of a recipe file exists.
func (s *RecipeStore) Exists(recipeID, updatedAt string) bool {
	filePath := s.getVersionedPath(recipeID, updatedAt)
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes all files associated with a recipeID.
func (s *RecipeStore) RemoveStaleVersions(recipeID string) error {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", recipeID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}

// ListAll reads every recipe file in the store and returns the newest
// version of each recipe, ordered by id. Files need not follow the
// versioned naming; the id inside the file is authoritative.
func (s *RecipeStore) ListAll() ([]recipe.Recipe, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob recipe files: %w", err)
	}
	sort.Strings(matches)

	latest := make(map[string]recipe.Recipe)
	for _, path := range matches {
		rec, err := readRecipe(path)
		if err != nil {
			return nil, err
		}
		if rec.ID == "" {
			return nil, fmt.Errorf("recipe file %s has no id", filepath.Base(path))
		}
		if prev, ok := latest[rec.ID]; ok && prev.UpdatedAt > rec.UpdatedAt {
			continue
		}
		latest[rec.ID] = *rec
	}

	recipes := make([]recipe.Recipe, 0, len(latest))
	for _, rec := range latest {
		recipes = append(recipes, rec)
	}
	sort.Slice(recipes, func(i, j int) bool { return recipes[i].ID < recipes[j].ID })
	return recipes, nil
}

func readRecipe(path string) (*recipe.Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe file: %w", err)
	}

	var rec recipe.Recipe
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}
