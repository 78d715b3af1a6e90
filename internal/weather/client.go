// Package weather wraps the OpenWeatherMap API behind the two read-only
// lookups the gateway's weather tools need. Results are plain maps so the
// tool layer can return them unchanged, and successful lookups are cached
// under versioned keys.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/anuraag-b/voice-gateway/internal/cache"
	"github.com/anuraag-b/voice-gateway/internal/version"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client calls OpenWeatherMap with a dedicated, timeout-bounded HTTP client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	store      *cache.Store
}

// New creates a weather client. The API key may be empty when the weather
// integration is not configured; lookups then fail fast without a network
// call. store may be nil.
func New(apiKey string, store *cache.Store) *Client {
	return &Client{
		apiKey:  apiKey,
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

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Message string `json:"message"`
}

// Current returns the current weather for a city in metric units.
func (c *Client) Current(ctx context.Context, city string) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, errors.New("OpenWeatherMap API key not configured")
	}

	key := version.CacheKey("weather:current", city)
	if result, ok := c.cached(ctx, key); ok {
		return result, nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	var parsed currentResponse
	if err := c.get(ctx, "/weather", params, &parsed); err != nil {
		return nil, err
	}

	description := ""
	if len(parsed.Weather) > 0 {
		description = parsed.Weather[0].Description
	}
	result := map[string]any{
		"city":        parsed.Name,
		"temperature": parsed.Main.Temp,
		"description": description,
		"humidity":    parsed.Main.Humidity,
		"wind_speed":  parsed.Wind.Speed,
	}
	c.remember(ctx, key, result)
	return result, nil
}

type forecastResponse struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List    []map[string]any `json:"list"`
	Message any              `json:"message"`
}

// Forecast returns the forecast for a city. The upstream API produces eight
// three-hour entries per day; only the first eight entries are returned to
// keep the payload small enough for the model to summarize.
func (c *Client) Forecast(ctx context.Context, city string, days int) (map[string]any, error) {
	if c.apiKey == "" {
		return nil, errors.New("OpenWeatherMap API key not configured")
	}

	key := version.CacheKey("weather:forecast", fmt.Sprintf("%s:%d", city, days))
	if result, ok := c.cached(ctx, key); ok {
		return result, nil
	}

	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("cnt", strconv.Itoa(days*8))

	var parsed forecastResponse
	if err := c.get(ctx, "/forecast", params, &parsed); err != nil {
		return nil, err
	}

	entries := parsed.List
	if len(entries) > 8 {
		entries = entries[:8]
	}
	result := map[string]any{
		"city":      parsed.City.Name,
		"days":      days,
		"forecasts": entries,
	}
	c.remember(ctx, key, result)
	return result, nil
}

// get performs a GET against the API and decodes the payload, turning
// non-200 statuses into errors carrying the upstream message when present.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("weather service error: %s", apiErr.Message)
		}
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
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
