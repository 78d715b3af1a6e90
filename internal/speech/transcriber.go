// Package speech defines the narrow interface to the speech-to-text
// collaborator. Capture and recognition happen in an external transcription
// server; this package only asks it for text.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Transcription is the result of one capture-and-transcribe round trip.
type Transcription struct {
	Text            string  `json:"text"`
	Language        string  `json:"language"`
	DurationSeconds float64 `json:"duration"`
}

// Transcriber records for the given number of seconds and returns the
// transcribed text.
type Transcriber interface {
	Transcribe(ctx context.Context, durationSeconds int, language string) (*Transcription, error)
}

// HTTPTranscriber asks a local whisper-style transcription server to record
// and transcribe. The server owns the microphone; the gateway never touches
// audio data.
type HTTPTranscriber struct {
	url        string
	httpClient *http.Client
}

var _ Transcriber = (*HTTPTranscriber)(nil)

// NewHTTPTranscriber creates a transcriber for the given endpoint. The HTTP
// client carries no timeout of its own; the call blocks for the recording
// duration, so the per-request context sets the bound.
func NewHTTPTranscriber(url string) *HTTPTranscriber {
	return &HTTPTranscriber{
		url:        url,
		httpClient: &http.Client{},
	}
}

type transcribeRequest struct {
	DurationSeconds int    `json:"duration"`
	Language        string `json:"language,omitempty"`
}

type transcribeResponse struct {
	Text            string  `json:"text"`
	Language        string  `json:"language"`
	DurationSeconds float64 `json:"duration"`
	Error           string  `json:"error,omitempty"`
}

// Transcribe asks the server to record durationSeconds of audio and return
// its transcription. Callers should allow the context at least the recording
// duration plus transcription headroom.
func (t *HTTPTranscriber) Transcribe(ctx context.Context, durationSeconds int, language string) (*Transcription, error) {
	payload, err := json.Marshal(transcribeRequest{
		DurationSeconds: durationSeconds,
		Language:        language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create transcription request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription server request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != "" {
		if parsed.Error != "" {
			return nil, fmt.Errorf("transcription failed: %s", parsed.Error)
		}
		return nil, fmt.Errorf("transcription server returned status %d", resp.StatusCode)
	}
	if strings.TrimSpace(parsed.Text) == "" {
		return nil, fmt.Errorf("transcription produced no text")
	}

	return &Transcription{
		Text:            parsed.Text,
		Language:        parsed.Language,
		DurationSeconds: parsed.DurationSeconds,
	}, nil
}

// ContextTimeout returns a sensible upper bound for a transcription call:
// the recording duration plus headroom for model inference.
func ContextTimeout(durationSeconds int) time.Duration {
	return time.Duration(durationSeconds)*time.Second + 30*time.Second
}
