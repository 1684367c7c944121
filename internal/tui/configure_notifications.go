package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

// editNotifications handles the notification settings
func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	kind := cfg.Notifications.Type
	if kind == "" {
		kind = "desktop"
	}

	typeOptions := []huh.Option[string]{
		huh.NewOption("Desktop (notify-send)", "desktop"),
		huh.NewOption("Log only", "log"),
		huh.NewOption("None", "none"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable Notifications").
				Description("Announce recording starts, stops and finished summaries").
				Affirmative("Yes").
				Negative("No").
				Value(&enabled),
			huh.NewSelect[string]().
				Title("Notification Type").
				Options(typeOptions...).
				Value(&kind),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = kind

	return nil
}
