package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

type watchAction string

const (
	watchAdd  watchAction = "add"
	watchBack watchAction = "back"
)

// editWatches handles the watched application list
func editWatches(cfg *config.Config) error {
	for {
		options := make([]huh.Option[watchAction], 0, len(cfg.Watches)+2)
		for i, w := range cfg.Watches {
			options = append(options, huh.NewOption(formatWatchEntry(w), watchAction(strconv.Itoa(i))))
		}
		options = append(options,
			huh.NewOption("+ Add Application", watchAdd),
			huh.NewOption("Done", watchBack),
		)

		var selected watchAction
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[watchAction]().
					Title("Watched Applications").
					Description("Apps that record automatically while they play audio").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch selected {
		case watchBack:
			return nil
		case watchAdd:
			w, ok, err := inputWatch(config.WatchConfig{})
			if err != nil {
				return err
			}
			if ok {
				cfg.Watches = append(cfg.Watches, w)
			}
		default:
			i, err := strconv.Atoi(string(selected))
			if err != nil || i < 0 || i >= len(cfg.Watches) {
				continue
			}
			if err := editWatchEntry(cfg, i); err != nil {
				return err
			}
		}
	}
}

func formatWatchEntry(w config.WatchConfig) string {
	id := w.BundleID
	if id == "" {
		id = w.ProcessName
	}
	return fmt.Sprintf("%s (%s)", w.Name, id)
}

// editWatchEntry offers edit or remove for one entry
func editWatchEntry(cfg *config.Config, i int) error {
	var action string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(cfg.Watches[i].Name).
				Options(
					huh.NewOption("Edit", "edit"),
					huh.NewOption("Remove", "remove"),
					huh.NewOption("Back", "back"),
				).
				Value(&action),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	switch action {
	case "edit":
		w, ok, err := inputWatch(cfg.Watches[i])
		if err != nil {
			return err
		}
		if ok {
			cfg.Watches[i] = w
		}
	case "remove":
		cfg.Watches = append(cfg.Watches[:i], cfg.Watches[i+1:]...)
	}
	return nil
}

// inputWatch collects one watch entry. Returns ok=false when the entry is
// left unusable (no identifier).
func inputWatch(w config.WatchConfig) (config.WatchConfig, bool, error) {
	name := w.Name
	bundleID := w.BundleID
	processName := w.ProcessName

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Display Name").
				Description("Shown in notifications and session folders").
				Placeholder("Zoom").
				Value(&name).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Process Name").
				Description("Executable or display name, matched case-insensitively").
				Placeholder("zoom").
				Value(&processName),
			huh.NewInput().
				Title("Bundle ID").
				Description("Platform application identifier. Optional if process name is set.").
				Placeholder("us.zoom.xos").
				Value(&bundleID),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return w, false, err
	}

	if bundleID == "" && processName == "" {
		fmt.Println(StyleError.Render("At least one of process name or bundle ID is required."))
		return w, false, nil
	}

	return config.WatchConfig{Name: name, BundleID: bundleID, ProcessName: processName}, true, nil
}
