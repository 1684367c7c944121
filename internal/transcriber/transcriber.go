package transcriber

import (
	"context"
	"fmt"
	"os"
)

// Transcriber converts a recorded audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Config selects and parameterizes the transcription backend.
type Config struct {
	Provider string
	APIKey   string
	Language string
	Model    string
}

func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Language: "",
		Model:    "whisper-1",
	}
}

// New creates a transcriber for the configured provider.
func New(config Config) (Transcriber, error) {
	switch config.Provider {
	case "openai":
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if config.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required: set transcription.api_key or OPENAI_API_KEY")
		}
		return NewOpenAIAdapter(config), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", config.Provider)
	}
}
