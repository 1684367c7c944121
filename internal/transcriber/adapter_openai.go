package transcriber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter transcribes audio files through the OpenAI audio API.
type OpenAIAdapter struct {
	client *openai.Client
	config Config
}

func NewOpenAIAdapter(config Config) *OpenAIAdapter {
	return &OpenAIAdapter{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

func (a *OpenAIAdapter) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidFile, audioPath)
	}

	req := openai.AudioRequest{
		Model:    a.config.Model,
		FilePath: audioPath,
		Language: a.config.Language,
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("transcriber: API call failed after %v: %v", duration, err)
		return "", classifyError(err)
	}

	log.Printf("transcriber: transcribed %s in %v (%d chars)", audioPath, duration, len(resp.Text))
	return resp.Text, nil
}

// classifyError maps go-openai failures onto the transcriber error taxonomy.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrInvalidKey, apiErr.Message)
		}
		return &APIError{Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
