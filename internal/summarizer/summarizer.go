package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// Failure classes surfaced to the user when a summary cannot be produced.
var (
	ErrInvalidKey      = errors.New("summarization API key rejected")
	ErrEmptyTranscript = errors.New("transcript is empty, nothing to summarize")
	ErrEncoding        = errors.New("summarization request could not be encoded")
	ErrNetwork         = errors.New("summarization service unreachable")
	ErrDecoding        = errors.New("summarization response malformed")
)

// APIError carries the provider's own error message.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e == nil || e.Message == "" {
		return "summarization API error"
	}
	return "summarization API error: " + e.Message
}

// Metadata describes the recording session a transcript came from.
type Metadata struct {
	AppName   string
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration is the session length, clamped to zero for clock skew.
func (m Metadata) Duration() time.Duration {
	d := m.EndedAt.Sub(m.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}

// Summarizer turns a transcript plus session metadata into a markdown
// summary.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string, meta Metadata) (string, error)
}

// Config selects and parameterizes the summarization backend.
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}
}

// New creates a summarizer for the configured provider.
func New(config Config) (Summarizer, error) {
	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required: set summary.api_key or OPENAI_API_KEY")
		}
		return NewOpenAIAdapter(config), nil
	default:
		return nil, fmt.Errorf("unsupported summarization provider: %s", config.Provider)
	}
}
