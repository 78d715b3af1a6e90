package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// PlaySong searches for the best matching track and starts playing it on the
// user's active device.
func (c *Client) PlaySong(ctx context.Context, song string) (map[string]any, error) {
	track, err := c.searchTrack(ctx, song)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"uris": []string{track.URI}}
	if err := c.playerRequest(ctx, http.MethodPut, "/me/player/play", body); err != nil {
		return nil, err
	}
	return map[string]any{
		"status": "playing",
		"track":  track.Name,
		"artist": track.Artist,
	}, nil
}

// Pause pauses playback on the active device.
func (c *Client) Pause(ctx context.Context) (map[string]any, error) {
	if err := c.playerRequest(ctx, http.MethodPut, "/me/player/pause", nil); err != nil {
		return nil, err
	}
	return map[string]any{"status": "paused"}, nil
}

// Resume resumes playback on the active device.
func (c *Client) Resume(ctx context.Context) (map[string]any, error) {
	if err := c.playerRequest(ctx, http.MethodPut, "/me/player/play", nil); err != nil {
		return nil, err
	}
	return map[string]any{"status": "playing"}, nil
}

// NextTrack skips to the next track.
func (c *Client) NextTrack(ctx context.Context) (map[string]any, error) {
	if err := c.playerRequest(ctx, http.MethodPost, "/me/player/next", nil); err != nil {
		return nil, err
	}
	return map[string]any{"status": "skipped to next track"}, nil
}

// PreviousTrack goes back to the previous track.
func (c *Client) PreviousTrack(ctx context.Context) (map[string]any, error) {
	if err := c.playerRequest(ctx, http.MethodPost, "/me/player/previous", nil); err != nil {
		return nil, err
	}
	return map[string]any{"status": "returned to previous track"}, nil
}

type currentlyPlayingResponse struct {
	IsPlaying  bool `json:"is_playing"`
	ProgressMS int  `json:"progress_ms"`
	Item       struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"item"`
}

// CurrentTrack reports what is playing right now. A 204 from the API means
// nothing is playing; that is a normal answer, not an error.
func (c *Client) CurrentTrack(ctx context.Context) (map[string]any, error) {
	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/me/player/currently-playing", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Spotify API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return map[string]any{"playing": false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var parsed currentlyPlayingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Spotify response: %w", err)
	}

	artist := ""
	if len(parsed.Item.Artists) > 0 {
		artist = parsed.Item.Artists[0].Name
	}
	return map[string]any{
		"playing":     parsed.IsPlaying,
		"track":       parsed.Item.Name,
		"artist":      artist,
		"progress_ms": parsed.ProgressMS,
	}, nil
}

type trackMatch struct {
	URI    string
	Name   string
	Artist string
}

type searchResponse struct {
	Tracks struct {
		Items []struct {
			URI     string `json:"uri"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
		} `json:"items"`
	} `json:"tracks"`
}

func (c *Client) searchTrack(ctx context.Context, song string) (*trackMatch, error) {
	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", song)
	params.Set("type", "track")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spotify search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Spotify search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Spotify search response: %w", err)
	}
	if len(parsed.Tracks.Items) == 0 {
		return nil, fmt.Errorf("no track found matching '%s'", song)
	}

	item := parsed.Tracks.Items[0]
	match := &trackMatch{URI: item.URI, Name: item.Name}
	if len(item.Artists) > 0 {
		match.Artist = item.Artists[0].Name
	}
	return match, nil
}

// playerRequest issues a player-control call, translating the API's status
// codes into messages a model can relay to the user.
func (c *Client) playerRequest(ctx context.Context, method, path string, body any) error {
	accessToken, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal player request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create Spotify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Spotify API request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusAccepted:
		return nil
	default:
		return apiError(resp)
	}
}

func apiError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.New("no active Spotify device found; start playback on a device first")
	case http.StatusForbidden:
		return errors.New("Spotify Premium is required for playback control")
	case http.StatusUnauthorized:
		return errors.New("Spotify authorization expired; visit /spotify/login again")
	}

	var apiErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("Spotify API error: %s", apiErr.Error.Message)
	}
	return fmt.Errorf("Spotify API returned status %d", resp.StatusCode)
}
