package clipper

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"meal-planner/internal/ghost"
	"meal-planner/internal/llm"
	"meal-planner/internal/recipe"
)

const (
	fetchTimeout = 15 * time.Second
	// maxContentChars bounds the page text sent to the model.
	maxContentChars = 20000
	clippedTag      = "clipped"
)

// ClipResult is a recipe clipped from the web.
type ClipResult struct {
	Recipe recipe.Recipe
	Meta   llm.AgentMeta
	// Post is set when the recipe was also published to Ghost.
	Post *ghost.Post
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	extractor   *recipe.Extractor
	ghostClient ghost.Client
	httpClient  *http.Client
	publish     bool
}

// NewClipper creates a new Clipper. ghostClient may be nil, in which case
// clipped recipes are only returned.
func NewClipper(extractor *recipe.Extractor, ghostClient ghost.Client, publish bool) *Clipper {
	return &Clipper{
		extractor:   extractor,
		ghostClient: ghostClient,
		httpClient:  &http.Client{Timeout: fetchTimeout},
		publish:     publish,
	}
}

// ClipURL fetches the URL, extracts the recipe with the LLM and, when a
// Ghost client is configured, stores a formatted copy there.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*ClipResult, error) {
	title, content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	extracted, err := c.extractor.Extract(ctx, recipe.PostData{
		ID:        uuid.NewString(),
		Title:     title,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		SourceURL: url,
		HTML:      content,
	})
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}

	result := &ClipResult{Recipe: extracted.Recipe, Meta: extracted.Meta}
	if c.ghostClient == nil {
		return result, nil
	}

	tags := append([]string{clippedTag}, extracted.Recipe.DishTypes...)
	post, err := c.ghostClient.CreatePost(ctx, extracted.Recipe.Title, formatToHTML(extracted.Recipe), tags, c.publish)
	if err != nil {
		return result, fmt.Errorf("failed to save to ghost: %w", err)
	}
	result.Post = post
	return result, nil
}

// fetchAndCleanHTML returns the page title and its visible body text.
func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, svg, form, .ads, #ads, .comments").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}
	return title, text, nil
}

func formatToHTML(r recipe.Recipe) string {
	var sb strings.Builder
	if r.SourceURL != "" {
		src := html.EscapeString(r.SourceURL)
		fmt.Fprintf(&sb, "<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", src, src)
	}

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.Ingredients {
		line := ing.Name
		if ing.Amount > 0 {
			line = strings.Join(strings.Fields(fmt.Sprintf("%g %s %s", ing.Amount, ing.Unit, ing.Name)), " ")
		}
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(line))
	}
	sb.WriteString("</ul>")

	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Ready in:</strong> %d min | <strong>Servings:</strong> %d</p>", r.ReadyInMinutes, r.Servings)
	fmt.Fprintf(&sb, "<p><strong>Per serving:</strong> %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat</p>",
		r.Calories, r.Protein, r.Carbs, r.Fat)

	return sb.String()
}
