package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

// editTranscription handles the transcription settings
func editTranscription(cfg *config.Config) error {
	apiKey := cfg.Transcription.APIKey
	language := cfg.Transcription.Language
	model := cfg.Transcription.Model
	if model == "" {
		model = "whisper-1"
	}

	modelOptions := []huh.Option[string]{
		huh.NewOption("whisper-1 - Recommended", "whisper-1"),
		huh.NewOption("gpt-4o-transcribe", "gpt-4o-transcribe"),
		huh.NewOption("gpt-4o-mini-transcribe", "gpt-4o-mini-transcribe"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API Key").
				Description("Leave empty to use the OPENAI_API_KEY environment variable").
				Placeholder("sk-...").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Transcription Model").
				Options(modelOptions...).
				Value(&model),
			huh.NewInput().
				Title("Language").
				Description("ISO code like 'en' or 'it'. Empty = auto-detect.").
				Placeholder("(auto)").
				Value(&language),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Transcription.Provider = "openai"
	cfg.Transcription.APIKey = apiKey
	cfg.Transcription.Language = language
	cfg.Transcription.Model = model

	return nil
}
