package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/ghost"
	"meal-planner/internal/llm"
	"meal-planner/internal/recipe"
	"meal-planner/internal/storage"
)

// IngestReport summarizes one ingestion run.
type IngestReport struct {
	Fetched  int
	Ingested int
	Skipped  int
	Failed   int
	Pruned   int
}

// ImportCatalog loads every recipe file in dir into the catalog. Invalid
// recipes are logged and skipped.
func (a *App) ImportCatalog(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recipes, err := store.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to read catalog files: %w", err)
	}

	imported := 0
	for _, rec := range recipes {
		if err := rec.Validate(); err != nil {
			a.logger.Warn("skipping invalid recipe", zap.String("recipe_id", rec.ID), zap.Error(err))
			continue
		}
		if err := a.recipeRepo.Save(ctx, rec); err != nil {
			return imported, err
		}
		imported++
	}

	a.collector.AddRecipesIngested(imported)
	a.logger.Info("catalog imported", zap.String("dir", dir), zap.Int("files", len(recipes)), zap.Int("imported", imported))
	return imported, nil
}

// ExportCatalog writes the catalog to dir as versioned recipe files and
// returns how many were written. Versions already on disk are skipped;
// recipes without UpdatedAt are always rewritten.
func (a *App) ExportCatalog(ctx context.Context, dir string) (int, error) {
	store, err := storage.NewRecipeStore(dir)
	if err != nil {
		return 0, err
	}
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, rec := range recipes {
		if rec.UpdatedAt != "" && store.Exists(rec.ID, rec.UpdatedAt) {
			continue
		}
		if err := store.Save(rec); err != nil {
			return written, fmt.Errorf("failed to export recipe %s: %w", rec.ID, err)
		}
		written++
	}
	a.logger.Info("catalog exported", zap.String("dir", dir), zap.Int("recipes", len(recipes)), zap.Int("written", written))
	return written, nil
}

// IngestRecipes pulls every Ghost post, extracts the ones that changed
// since the last run and drops Ghost recipes that are no longer published.
// A post that fails extraction is logged and counted; it does not stop the run.
func (a *App) IngestRecipes(ctx context.Context) (IngestReport, error) {
	var report IngestReport
	if a.ghostClient == nil {
		return report, ErrGhostNotConfigured
	}
	if a.extractor == nil {
		return report, ErrLLMNotConfigured
	}

	posts, err := a.ghostClient.FetchRecipes(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to fetch recipes from ghost: %w", err)
	}
	report.Fetched = len(posts)
	a.logger.Info("fetched recipe posts from ghost", zap.Int("count", len(posts)))

	published := make(map[string]struct{}, len(posts))
	calledLLM := false
	for _, post := range posts {
		published[post.ID] = struct{}{}

		existing, err := a.recipeRepo.Get(ctx, post.ID)
		if err == nil && existing.UpdatedAt == post.UpdatedAt {
			report.Skipped++
			continue
		}

		if calledLLM && a.ingestDelay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(a.ingestDelay):
			}
		}
		calledLLM = true

		if err := a.ingestPost(ctx, post); err != nil {
			a.logger.Warn("failed to ingest recipe", zap.String("post_id", post.ID), zap.String("title", post.Title), zap.Error(err))
			report.Failed++
			continue
		}
		report.Ingested++
	}

	pruned, err := a.pruneUnpublished(ctx, published)
	report.Pruned = pruned
	if err != nil {
		return report, err
	}

	a.collector.AddRecipesIngested(report.Ingested)
	a.logger.Info("ingestion complete",
		zap.Int("ingested", report.Ingested),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("pruned", report.Pruned),
	)
	return report, nil
}

func (a *App) ingestPost(ctx context.Context, post ghost.Post) error {
	sourceURL := post.URL
	if sourceURL == "" {
		sourceURL = a.ghostPostURL(post.ID)
	}

	result, err := a.extractor.Extract(ctx, recipe.PostData{
		ID:        post.ID,
		Title:     post.Title,
		UpdatedAt: post.UpdatedAt,
		SourceURL: sourceURL,
		HTML:      post.HTML,
	})
	a.recordMeta(result.Meta)
	if err != nil {
		return err
	}
	// Ghost owns these recipes; the post URL marks them for pruning.
	result.Recipe.SourceURL = sourceURL
	return a.recipeRepo.Save(ctx, result.Recipe)
}

// pruneUnpublished deletes catalog recipes that came from Ghost but are no
// longer among its posts. Imported and clipped recipes are left alone.
func (a *App) pruneUnpublished(ctx context.Context, published map[string]struct{}) (int, error) {
	recipes, err := a.recipeRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, rec := range recipes {
		if _, ok := published[rec.ID]; ok || !a.fromGhost(rec) {
			continue
		}
		if err := a.recipeRepo.Delete(ctx, rec.ID); err != nil {
			return pruned, err
		}
		a.logger.Info("pruned unpublished recipe", zap.String("recipe_id", rec.ID), zap.String("title", rec.Title))
		pruned++
	}
	return pruned, nil
}

func (a *App) ghostPostURL(id string) string {
	return fmt.Sprintf("%s/p/%s/", a.cfg.GhostURL, id)
}

func (a *App) fromGhost(rec recipe.Recipe) bool {
	return a.cfg.GhostURL != "" && strings.HasPrefix(rec.SourceURL, a.cfg.GhostURL)
}

// ClipURL extracts a recipe from a web page and adds it to the catalog.
// When the clipper also published it to Ghost, the post id becomes the
// recipe id so the next ingestion recognizes it.
func (a *App) ClipURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	if a.recipeClipper == nil {
		return nil, ErrLLMNotConfigured
	}

	result, err := a.recipeClipper.ClipURL(ctx, url)
	if result != nil {
		a.recordMeta(result.Meta)
	}
	if err != nil && result == nil {
		return nil, err
	}
	if err != nil {
		a.logger.Warn("clipped recipe kept locally only", zap.String("url", url), zap.Error(err))
	}

	rec := result.Recipe
	if result.Post != nil {
		rec.ID = result.Post.ID
		if result.Post.UpdatedAt != "" {
			rec.UpdatedAt = result.Post.UpdatedAt
		}
	}
	if err := a.recipeRepo.Save(ctx, rec); err != nil {
		return nil, err
	}
	a.collector.AddRecipesIngested(1)
	return &rec, nil
}

func (a *App) recordMeta(meta llm.AgentMeta) {
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		a.logger.Warn("failed to record llm usage", zap.String("agent", meta.AgentName), zap.Error(err))
	}
}
