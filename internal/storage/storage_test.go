package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/recipe"
)

func TestRecipeStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewRecipeStore(tempDir)
	require.NoError(t, err)

	rec := recipe.Recipe{
		ID:          "test-recipe-123",
		Title:       "Test Recipe",
		Calories:    420,
		Ingredients: []recipe.Ingredient{{Name: "testing", Amount: 1, Unit: "cup"}},
		UpdatedAt:   "2026-01-01T10:00:00Z",
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		assert.False(t, store.Exists(rec.ID, rec.UpdatedAt))
	})

	t.Run("Save", func(t *testing.T) {
		require.NoError(t, store.Save(rec))

		filePath := filepath.Join(tempDir, "test-recipe-123_2026-01-01T10-00-00Z.json")
		assert.FileExists(t, filePath)
		assert.True(t, store.Exists(rec.ID, rec.UpdatedAt))
	})

	t.Run("ListAll", func(t *testing.T) {
		loaded, err := store.ListAll()
		require.NoError(t, err)
		require.Len(t, loaded, 1)
		assert.Equal(t, rec, loaded[0])
	})

	t.Run("Save-ReplacesOldVersion", func(t *testing.T) {
		newer := rec
		newer.Title = "Test Recipe v2"
		newer.UpdatedAt = "2026-02-01T10:00:00Z"
		require.NoError(t, store.Save(newer))

		assert.False(t, store.Exists(rec.ID, rec.UpdatedAt))
		assert.True(t, store.Exists(newer.ID, newer.UpdatedAt))
	})

	t.Run("Save-InvalidID", func(t *testing.T) {
		assert.Error(t, store.Save(recipe.Recipe{ID: "../escape", Title: "x"}))
		assert.Error(t, store.Save(recipe.Recipe{Title: "x"}))
	})
}

func TestRecipeStore_ListAll(t *testing.T) {
	tempDir := t.TempDir()
	store, err := NewRecipeStore(tempDir)
	require.NoError(t, err)

	require.NoError(t, store.Save(recipe.Recipe{ID: "b", Title: "Beans"}))
	require.NoError(t, store.Save(recipe.Recipe{ID: "a", Title: "Apple Oats", UpdatedAt: "2026-01-01T00:00:00Z"}))

	// Hand-written catalog files may use any name; the newest version wins.
	older := `{"id": "a", "title": "Old Apple Oats", "updated_at": "2025-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "zz-apple.json"), []byte(older), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("ignored"), 0644))

	recipes, err := store.ListAll()
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "a", recipes[0].ID)
	assert.Equal(t, "Apple Oats", recipes[0].Title)
	assert.Equal(t, "b", recipes[1].ID)

	t.Run("CorruptFile", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "broken.json"), []byte("{"), 0644))
		_, err := store.ListAll()
		assert.ErrorContains(t, err, "broken.json")
	})

	t.Run("MissingID", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewRecipeStore(dir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "anon.json"), []byte(`{"title": "Nameless"}`), 0644))
		_, err = s.ListAll()
		assert.ErrorContains(t, err, "has no id")
	})
}
