// Package wiki wraps the MediaWiki action API behind the two read-only
// lookups the gateway's Wikipedia tools need.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anuraag-b/voice-gateway/internal/cache"
	"github.com/anuraag-b/voice-gateway/internal/version"
)

const defaultBaseURL = "https://en.wikipedia.org/w/api.php"

// Client calls the English Wikipedia API with a dedicated HTTP client.
// Wikipedia asks API consumers to identify themselves, so every request
// carries a descriptive User-Agent.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      *cache.Store
}

// New creates a Wikipedia client. store may be nil.
func New(store *cache.Store) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		store: store,
	}
}

// SetBaseURL points the client at a different API host, for tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Extract *string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Search looks a topic up and returns up to the requested number of
// sentences of plain-text extract.
func (c *Client) Search(ctx context.Context, query string, sentences int) (map[string]any, error) {
	key := version.CacheKey("wiki:search", fmt.Sprintf("%s:%d", query, sentences))
	if result, ok := c.cached(ctx, key); ok {
		return result, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", query)
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exsentences", strconv.Itoa(sentences))
	params.Set("redirects", "1")

	page, err := c.fetchFirstPage(ctx, params)
	if err != nil {
		return nil, err
	}
	if page == nil || page.Extract == nil {
		return nil, fmt.Errorf("no Wikipedia article found for '%s'", query)
	}

	result := map[string]any{
		"title":   page.Title,
		"extract": *page.Extract,
		"source":  "Wikipedia",
	}
	c.remember(ctx, key, result)
	return result, nil
}

// Summary returns the plain-text introduction of a page.
func (c *Client) Summary(ctx context.Context, pageTitle string) (map[string]any, error) {
	key := version.CacheKey("wiki:summary", pageTitle)
	if result, ok := c.cached(ctx, key); ok {
		return result, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("titles", pageTitle)
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("exintro", "1")
	params.Set("redirects", "1")

	page, err := c.fetchFirstPage(ctx, params)
	if err != nil {
		return nil, err
	}
	if page == nil || page.Extract == nil {
		return nil, fmt.Errorf("no Wikipedia article found for '%s'", pageTitle)
	}

	result := map[string]any{
		"title":   page.Title,
		"summary": *page.Extract,
		"source":  "Wikipedia",
	}
	c.remember(ctx, key, result)
	return result, nil
}

type pageResult struct {
	Title   string
	Extract *string
}

func (c *Client) fetchFirstPage(ctx context.Context, params url.Values) (*pageResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", "voice-gateway/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Wikipedia API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Wikipedia API returned status %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Wikipedia response: %w", err)
	}
	for _, page := range parsed.Query.Pages {
		return &pageResult{Title: page.Title, Extract: page.Extract}, nil
	}
	return nil, nil
}

func (c *Client) cached(ctx context.Context, key string) (map[string]any, bool) {
	payload, ok := c.store.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, false
	}
	return result, true
}

func (c *Client) remember(ctx context.Context, key string, result map[string]any) {
	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	c.store.Set(ctx, key, string(payload))
}
