// Package spotify wraps the Spotify Web API behind the playback-control
// operations the gateway's tools need, plus the authorization-code flow that
// obtains the user token. The access token lives in process memory only;
// persisting it is out of scope.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAccountsURL = "https://accounts.spotify.com"
	defaultAPIURL      = "https://api.spotify.com/v1"

	// Scopes required for the playback-control tools.
	authScopes = "user-read-playback-state user-modify-playback-state playlist-modify-public"

	// Refresh slightly before the reported expiry so an in-flight call never
	// races the token's end of life.
	expirySkew = 30 * time.Second
)

// Client talks to the Spotify accounts service and Web API. All methods are
// safe for concurrent use; the token is guarded by a mutex.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string

	accountsURL string
	apiURL      string
	httpClient  *http.Client

	mu    sync.Mutex
	token token
}

type token struct {
	access  string
	refresh string
	expiry  time.Time
}

// New creates a Spotify client from application credentials.
func New(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		accountsURL:  defaultAccountsURL,
		apiURL:       defaultAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetBaseURLs points the client at different hosts, for tests.
func (c *Client) SetBaseURLs(accountsURL, apiURL string) {
	c.accountsURL = accountsURL
	c.apiURL = apiURL
}

// Configured reports whether application credentials are present.
func (c *Client) Configured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

// AuthURL returns the Spotify authorization page the user must visit to
// grant the playback scopes.
func (c *Client) AuthURL() string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.clientID)
	params.Set("scope", authScopes)
	params.Set("redirect_uri", c.redirectURI)
	return c.accountsURL + "/authorize?" + params.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// ExchangeCode trades an authorization code for tokens, stores them, and
// returns the raw token payload for the callback response.
func (c *Client) ExchangeCode(ctx context.Context, code string) (map[string]any, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	c.mu.Lock()
	defer c.mu.Unlock()
	parsed, err := c.requestToken(ctx, form)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"access_token": parsed.AccessToken,
		"token_type":   parsed.TokenType,
		"scope":        parsed.Scope,
		"expires_in":   parsed.ExpiresIn,
	}, nil
}

// accessToken returns a valid access token, refreshing it when close to
// expiry. It fails with a clear instruction when the flow was never run.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token.access == "" && c.token.refresh == "" {
		return "", errors.New("Spotify is not authorized; visit /spotify/login first")
	}
	if c.token.access != "" && time.Until(c.token.expiry) > expirySkew {
		return c.token.access, nil
	}
	if c.token.refresh == "" {
		return "", errors.New("Spotify token expired and no refresh token is available; visit /spotify/login again")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.token.refresh)

	parsed, err := c.requestToken(ctx, form)
	if err != nil {
		return "", fmt.Errorf("failed to refresh Spotify token: %w", err)
	}
	return parsed.AccessToken, nil
}

// requestToken posts a grant to the accounts service using HTTP basic
// authentication with the application credentials, and stores the result.
// Callers hold c.mu.
func (c *Client) requestToken(ctx context.Context, form url.Values) (*tokenResponse, error) {
	if !c.Configured() {
		return nil, errors.New("Spotify credentials not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.accountsURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Spotify token request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Spotify token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		if parsed.ErrorDesc != "" {
			return nil, fmt.Errorf("Spotify token error: %s", parsed.ErrorDesc)
		}
		return nil, fmt.Errorf("Spotify token endpoint returned status %d", resp.StatusCode)
	}

	c.token.access = parsed.AccessToken
	if parsed.RefreshToken != "" {
		c.token.refresh = parsed.RefreshToken
	}
	c.token.expiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return &parsed, nil
}
