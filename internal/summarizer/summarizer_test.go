package summarizer

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func TestNew(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := New(Config{Provider: "openai", APIKey: "sk-test"}); err != nil {
		t.Errorf("New() with key: %v", err)
	}
	if _, err := New(Config{Provider: "openai"}); err == nil {
		t.Errorf("New() without key should fail")
	}
	if _, err := New(Config{Provider: "acme", APIKey: "x"}); err == nil {
		t.Errorf("New() with unknown provider should fail")
	}
}

func TestMetadata_Duration(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	meta := Metadata{StartedAt: start, EndedAt: start.Add(42 * time.Second)}
	if got := meta.Duration(); got != 42*time.Second {
		t.Errorf("Duration() = %v, want 42s", got)
	}

	// End before start clamps to zero.
	backwards := Metadata{StartedAt: start, EndedAt: start.Add(-time.Minute)}
	if got := backwards.Duration(); got != 0 {
		t.Errorf("Duration() = %v, want 0", got)
	}
}

func TestSummarize_EmptyTranscript(t *testing.T) {
	adapter := NewOpenAIAdapter(Config{APIKey: "sk-test"})

	for _, transcript := range []string{"", "   \n\t"} {
		_, err := adapter.Summarize(context.Background(), transcript, Metadata{AppName: "Zoom"})
		if !errors.Is(err, ErrEmptyTranscript) {
			t.Errorf("Summarize(%q) = %v, want ErrEmptyTranscript", transcript, err)
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	start := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	meta := Metadata{AppName: "Zoom", StartedAt: start, EndedAt: start.Add(30 * time.Minute)}

	prompt := BuildUserPrompt("we discussed the roadmap", meta)

	for _, want := range []string{"Zoom", "30m0s", "we discussed the roadmap"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPrompt_Sections(t *testing.T) {
	prompt := BuildSystemPrompt()
	for _, section := range []string{"## Overview", "## Key Points", "## Action Items"} {
		if !strings.Contains(prompt, section) {
			t.Errorf("system prompt missing %q", section)
		}
	}
}

func TestClassifyError(t *testing.T) {
	if got := classifyError(&openai.APIError{HTTPStatusCode: http.StatusUnauthorized}); !errors.Is(got, ErrInvalidKey) {
		t.Errorf("unauthorized should map to ErrInvalidKey, got %v", got)
	}

	var apiErr *APIError
	got := classifyError(&openai.APIError{HTTPStatusCode: 429, Message: "rate limited"})
	if !errors.As(got, &apiErr) || apiErr.Message != "rate limited" {
		t.Errorf("expected APIError with message, got %v", got)
	}

	if got := classifyError(errors.New("dial tcp: refused")); !errors.Is(got, ErrNetwork) {
		t.Errorf("generic failure should map to ErrNetwork, got %v", got)
	}
}
