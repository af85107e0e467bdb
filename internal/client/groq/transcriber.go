// Package groq transcribes audio with Groq's hosted Whisper models through
// its OpenAI-compatible API.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// ErrEmptyTranscript is returned when the service answers with no usable text.
var ErrEmptyTranscript = errors.New("groq: empty transcript")

type audioClient interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// Transcriber converts audio files to text.
type Transcriber struct {
	client   audioClient
	model    string
	language string
}

// NewTranscriber builds a Transcriber for the given key, endpoint, model and spoken language.
func NewTranscriber(apiKey, baseURL, model, language string) *Transcriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = baseURL
	return &Transcriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Transcribe uploads the audio at path and returns the trimmed transcript.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: path,
		Language: t.language,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("groq transcription failed with status %d: %w", apiErr.HTTPStatusCode, err)
		}
		return "", fmt.Errorf("groq transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
