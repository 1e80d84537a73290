package ghost

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"meal-planner/internal/config"
)

const (
	pageSize       = 50
	requestTimeout = 30 * time.Second
)

// Tag is a Ghost post tag.
type Tag struct {
	Name string `json:"name"`
}

// Post represents a single recipe post from the Ghost API.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	URL       string `json:"url,omitempty"`
	Status    string `json:"status,omitempty"`
	UpdatedAt string `json:"updated_at"`
	Tags      []Tag  `json:"tags,omitempty"`
}

type pagination struct {
	Page  int  `json:"page"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
}

// PostsResponse is the top-level structure of the Ghost API response for posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
	Meta  struct {
		Pagination pagination `json:"pagination"`
	} `json:"meta"`
}

// Client is an interface for a Ghost API client (Content & Admin).
type Client interface {
	FetchRecipes(ctx context.Context) ([]Post, error)
	CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*Post, error)
}

// ghostClient is the concrete implementation of the Ghost API client.
type ghostClient struct {
	httpClient *http.Client
	config     *config.Config
}

// NewClient creates a new Ghost API client.
func NewClient(cfg *config.Config) Client {
	return &ghostClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		config:     cfg,
	}
}

// FetchRecipes fetches every published post from the Ghost Content API,
// following pagination.
func (c *ghostClient) FetchRecipes(ctx context.Context) ([]Post, error) {
	var posts []Post
	for page := 1; ; {
		q := url.Values{}
		q.Set("key", c.config.GhostContentKey)
		q.Set("limit", fmt.Sprint(pageSize))
		q.Set("page", fmt.Sprint(page))
		q.Set("include", "tags")
		endpoint := fmt.Sprintf("%s/ghost/api/v3/content/posts/?%s", c.config.GhostURL, q.Encode())

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		var postsResponse PostsResponse
		if err := c.do(req, http.StatusOK, &postsResponse); err != nil {
			return nil, fmt.Errorf("content api: %w", err)
		}
		posts = append(posts, postsResponse.Posts...)

		next := postsResponse.Meta.Pagination.Next
		if next == nil || *next <= page {
			return posts, nil
		}
		page = *next
	}
}

// CreatePost creates a new post using the Ghost Admin API.
func (c *ghostClient) CreatePost(ctx context.Context, title, html string, tags []string, publish bool) (*Post, error) {
	token, err := c.createAdminToken()
	if err != nil {
		return nil, fmt.Errorf("failed to create admin token: %w", err)
	}

	status := "draft"
	if publish {
		status = "published"
	}

	post := Post{Title: title, HTML: html, Status: status}
	for _, t := range tags {
		post.Tags = append(post.Tags, Tag{Name: t})
	}
	body, err := json.Marshal(map[string][]Post{"posts": {post}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post: %w", err)
	}

	endpoint := fmt.Sprintf("%s/ghost/api/v3/admin/posts/?source=html", c.config.GhostURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+token)
	req.Header.Set("Content-Type", "application/json")

	var response PostsResponse
	if err := c.do(req, http.StatusCreated, &response); err != nil {
		return nil, fmt.Errorf("admin api: %w", err)
	}
	if len(response.Posts) == 0 {
		return nil, fmt.Errorf("no post returned from api")
	}
	return &response.Posts[0], nil
}

func (c *ghostClient) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// createAdminToken generates a short-lived JWT for the Admin API.
func (c *ghostClient) createAdminToken() (string, error) {
	id, secretHex, ok := strings.Cut(c.config.GhostAdminKey, ":")
	if !ok || id == "" || strings.Contains(secretHex, ":") {
		return "", fmt.Errorf("invalid admin key format: expected id:secret")
	}

	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return "", fmt.Errorf("failed to decode secret hex: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
		"aud": "/v3/admin/",
	})
	token.Header["kid"] = id

	return token.SignedString(secret)
}
