package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

// editSummary handles the meeting summary settings
func editSummary(cfg *config.Config) error {
	apiKey := cfg.Summary.APIKey
	model := cfg.Summary.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	modelOptions := []huh.Option[string]{
		huh.NewOption("gpt-4o-mini - Recommended", "gpt-4o-mini"),
		huh.NewOption("gpt-4o", "gpt-4o"),
		huh.NewOption("gpt-4.1-mini", "gpt-4.1-mini"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Summary Model").
				Description("Chat model used to summarize transcripts").
				Options(modelOptions...).
				Value(&model),
			huh.NewInput().
				Title("API Key Override").
				Description("Leave empty to reuse the transcription key").
				Placeholder("sk-...").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Summary.Provider = "openai"
	cfg.Summary.APIKey = apiKey
	cfg.Summary.Model = model

	return nil
}
