package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

// formatWatchesLabel formats the watches menu option showing current count
func formatWatchesLabel(cfg *config.Config) string {
	switch len(cfg.Watches) {
	case 0:
		return "Watched Apps (none)"
	case 1:
		return fmt.Sprintf("Watched Apps (%s)", cfg.Watches[0].Name)
	default:
		return fmt.Sprintf("Watched Apps (%d)", len(cfg.Watches))
	}
}

// formatTranscriptionLabel formats the transcription menu option
func formatTranscriptionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Transcription (%s, %s)", cfg.Transcription.Provider, cfg.Transcription.Model)
}

// formatSummaryLabel formats the summary menu option
func formatSummaryLabel(cfg *config.Config) string {
	return fmt.Sprintf("Summaries (%s, %s)", cfg.Summary.Provider, cfg.Summary.Model)
}

// formatNotificationsLabel formats the notifications menu option
func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()

	var watches []string
	for _, w := range cfg.Watches {
		watches = append(watches, w.Name)
	}
	fmt.Printf("  %s %s\n", StyleLabel.Render("Watched apps:"), strings.Join(watches, ", "))

	fmt.Printf("  %s %s (%s)\n", StyleLabel.Render("Transcription:"), cfg.Transcription.Provider, cfg.Transcription.Model)
	if cfg.Transcription.Language != "" {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Language:"), cfg.Transcription.Language)
	}

	fmt.Printf("  %s %s (%s)\n", StyleLabel.Render("Summaries:"), cfg.Summary.Provider, cfg.Summary.Model)

	fmt.Printf("  %s poll=%s, silence=%s, scan=%s\n", StyleLabel.Render("Timing:"),
		cfg.Polling.Interval, cfg.Polling.SilenceGrace, cfg.Polling.ProcessScan)

	if cfg.Notifications.Enabled {
		fmt.Printf("  %s %s\n", StyleLabel.Render("Notifications:"), cfg.Notifications.Type)
	} else {
		fmt.Printf("  %s disabled\n", StyleLabel.Render("Notifications:"))
	}

	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}
