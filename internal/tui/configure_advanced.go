package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/tapdeck/internal/config"
)

// AdvancedSection represents a section in the advanced settings menu
type AdvancedSection string

const (
	AdvancedTiming    AdvancedSection = "timing"
	AdvancedRecording AdvancedSection = "recording"
	AdvancedStorage   AdvancedSection = "storage"
	AdvancedBack      AdvancedSection = "back"
)

// editAdvanced handles the advanced settings submenu
func editAdvanced(cfg *config.Config) error {
	for {
		options := []huh.Option[AdvancedSection]{
			huh.NewOption(formatAdvancedTimingLabel(cfg), AdvancedTiming),
			huh.NewOption(formatAdvancedRecordingLabel(cfg), AdvancedRecording),
			huh.NewOption(formatAdvancedStorageLabel(cfg), AdvancedStorage),
			huh.NewOption("Back to Main Menu", AdvancedBack),
		}

		var selected AdvancedSection
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[AdvancedSection]().
					Title("Advanced Settings").
					Description("Configure low-level options").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch selected {
		case AdvancedBack:
			return nil
		case AdvancedTiming:
			if err := editTiming(cfg); err != nil {
				continue
			}
		case AdvancedRecording:
			if err := editRecording(cfg); err != nil {
				continue
			}
		case AdvancedStorage:
			if err := editStorage(cfg); err != nil {
				continue
			}
		}
	}
}

func formatAdvancedTimingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Detection Timing (poll=%s, silence=%s, scan=%s)",
		cfg.Polling.Interval, cfg.Polling.SilenceGrace, cfg.Polling.ProcessScan)
}

func formatAdvancedRecordingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recording Settings (rate=%d, format=%s)", cfg.Recording.SampleRate, cfg.Recording.Format)
}

func formatAdvancedStorageLabel(cfg *config.Config) string {
	if cfg.Storage.BaseDir == "" {
		return "Storage (default location)"
	}
	return fmt.Sprintf("Storage (%s)", cfg.Storage.BaseDir)
}

func validateDuration(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("invalid duration format (use '500ms', '5s', etc.)")
	}
	return nil
}

// editTiming handles the poll and silence durations
func editTiming(cfg *config.Config) error {
	interval := cfg.Polling.Interval.String()
	silenceGrace := cfg.Polling.SilenceGrace.String()
	processScan := cfg.Polling.ProcessScan.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Poll Interval").
				Description("How often audio activity is checked while tracking an app").
				Placeholder("500ms").
				Value(&interval).
				Validate(validateDuration),
			huh.NewInput().
				Title("Silence Grace").
				Description("Continuous silence tolerated before a recording stops").
				Placeholder("5s").
				Value(&silenceGrace).
				Validate(validateDuration),
			huh.NewInput().
				Title("Process Scan Interval").
				Description("How often the process table is scanned for watched apps").
				Placeholder("2s").
				Value(&processScan).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Polling.Interval, _ = time.ParseDuration(interval)
	cfg.Polling.SilenceGrace, _ = time.ParseDuration(silenceGrace)
	cfg.Polling.ProcessScan, _ = time.ParseDuration(processScan)

	return nil
}

// editRecording handles the recording settings
func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	channels := strconv.Itoa(cfg.Recording.Channels)
	format := cfg.Recording.Format

	channelOptions := []huh.Option[string]{
		huh.NewOption("1 (Mono) - Recommended", "1"),
		huh.NewOption("2 (Stereo)", "2"),
	}

	formatOptions := []huh.Option[string]{
		huh.NewOption("s16 (16-bit signed) - Recommended", "s16"),
		huh.NewOption("f32 (32-bit float)", "f32"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample Rate (Hz)").
				Description("Audio sample rate. 16000 is optimal for speech recognition.").
				Placeholder("16000").
				Value(&sampleRate).
				Validate(func(s string) error {
					if _, err := strconv.Atoi(s); err != nil {
						return fmt.Errorf("must be a number")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Channels").
				Description("Number of audio channels").
				Options(channelOptions...).
				Value(&channels),
			huh.NewSelect[string]().
				Title("Audio Format").
				Description("Sample format").
				Options(formatOptions...).
				Value(&format),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	cfg.Recording.Channels, _ = strconv.Atoi(channels)
	cfg.Recording.Format = format

	return nil
}

// editStorage handles the session storage location
func editStorage(cfg *config.Config) error {
	baseDir := cfg.Storage.BaseDir

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Session Directory").
				Description("Where recordings, transcripts and summaries are stored. Empty = default.").
				Placeholder("~/.local/share/tapdeck/sessions").
				Value(&baseDir),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Storage.BaseDir = baseDir

	return nil
}
