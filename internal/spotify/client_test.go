package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthURL(t *testing.T) {
	client := New("my-id", "my-secret", "http://localhost:8000/spotify/callback")

	raw := client.AuthURL()
	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "/authorize", parsed.Path)
	q := parsed.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "my-id", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8000/spotify/callback", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "user-modify-playback-state")
}

func TestExchangeCodeStoresToken(t *testing.T) {
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "my-id", user)
		assert.Equal(t, "my-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "token-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	defer accounts.Close()

	client := New("my-id", "my-secret", "http://localhost/callback")
	client.SetBaseURLs(accounts.URL, "http://unused")

	result, err := client.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "token-1", result["access_token"])

	token, err := client.accessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
}

func TestPlayerOpsRequireAuthorization(t *testing.T) {
	client := New("my-id", "my-secret", "http://localhost/callback")

	_, err := client.Pause(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/spotify/login")
}

// authorizedClient returns a client with a valid token pointed at api.
func authorizedClient(t *testing.T, api *httptest.Server) *Client {
	t.Helper()
	accounts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	t.Cleanup(accounts.Close)

	client := New("my-id", "my-secret", "http://localhost/callback")
	client.SetBaseURLs(accounts.URL, api.URL)
	_, err := client.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)
	return client
}

func TestPlaySong(t *testing.T) {
	var playBody map[string]any
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "Yesterday", r.URL.Query().Get("q"))
			assert.Equal(t, "track", r.URL.Query().Get("type"))
			w.Write([]byte(`{"tracks":{"items":[{
				"uri":"spotify:track:123",
				"name":"Yesterday",
				"artists":[{"name":"The Beatles"}]
			}]}}`))
		case "/me/player/play":
			require.Equal(t, http.MethodPut, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&playBody))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer api.Close()

	client := authorizedClient(t, api)
	result, err := client.PlaySong(context.Background(), "Yesterday")
	require.NoError(t, err)

	assert.Equal(t, "playing", result["status"])
	assert.Equal(t, "Yesterday", result["track"])
	assert.Equal(t, "The Beatles", result["artist"])
	assert.Equal(t, []any{"spotify:track:123"}, playBody["uris"])
}

func TestPlaySongNoMatch(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tracks":{"items":[]}}`))
	}))
	defer api.Close()

	client := authorizedClient(t, api)
	_, err := client.PlaySong(context.Background(), "Unfindable Song Title")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no track found")
}

func TestPlayerErrorsAreFriendly(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"no active device", http.StatusNotFound, "no active Spotify device"},
		{"premium required", http.StatusForbidden, "Premium"},
		{"expired token", http.StatusUnauthorized, "/spotify/login"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer api.Close()

			client := authorizedClient(t, api)
			_, err := client.Pause(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCurrentTrackNothingPlaying(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer api.Close()

	client := authorizedClient(t, api)
	result, err := client.CurrentTrack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, false, result["playing"])
}

func TestCurrentTrack(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me/player/currently-playing", r.URL.Path)
		w.Write([]byte(`{
			"is_playing": true,
			"progress_ms": 4200,
			"item": {"name": "Yesterday", "artists": [{"name": "The Beatles"}]}
		}`))
	}))
	defer api.Close()

	client := authorizedClient(t, api)
	result, err := client.CurrentTrack(context.Background())
	require.NoError(t, err)
	assert.Equal(t, true, result["playing"])
	assert.Equal(t, "Yesterday", result["track"])
	assert.Equal(t, "The Beatles", result["artist"])
	assert.Equal(t, 4200, result["progress_ms"])
}
