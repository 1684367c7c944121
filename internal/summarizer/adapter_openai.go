package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIAdapter summarizes transcripts through the OpenAI chat completions
// API.
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

func (a *OpenAIAdapter) Summarize(ctx context.Context, transcript string, meta Metadata) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	model := a.config.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: BuildSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(transcript, meta)},
		},
		Temperature: 0.3,
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		log.Printf("summarizer: API call failed after %v: %v", duration, err)
		return "", classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", ErrDecoding)
	}

	summary := resp.Choices[0].Message.Content
	log.Printf("summarizer: summarized %s session in %v (%d chars)", meta.AppName, duration, len(summary))
	return summary, nil
}

func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrInvalidKey, apiErr.Message)
		}
		return &APIError{Message: apiErr.Message}
	}

	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return fmt.Errorf("%w: %v", ErrDecoding, err)
	}

	var marshalErr *json.MarshalerError
	if errors.As(err, &marshalErr) {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
