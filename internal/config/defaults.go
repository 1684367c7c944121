package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Default returns the initial configuration.
func Default() *Config {
	return &Config{
		Watches: []WatchConfig{
			{Name: "Zoom", ProcessName: "zoom"},
		},
		Polling: PollingConfig{
			Interval:     500 * time.Millisecond,
			SilenceGrace: 5 * time.Second,
			ProcessScan:  2 * time.Second,
		},
		Recording: RecordingConfig{
			SampleRate: 16000,
			Channels:   1,
			Format:     "s16",
		},
		Transcription: TranscriptionConfig{
			Provider: "openai",
			Language: "",
			Model:    "whisper-1",
		},
		Summary: SummaryConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Storage: StorageConfig{
			BaseDir: "",
		},
	}
}

// Save writes the configuration back to the config file. Comments from the
// generated template are not preserved.
func Save(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	configContent := `# Tapdeck Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied immediately without daemon restart.

# Applications to record automatically. Each entry needs a name plus at least
# one of bundle_id or process_name (matched case-insensitively).
[[watch]]
  name = "Zoom"
  process_name = "zoom"          # executable or display name
  # bundle_id = "us.zoom.xos"    # platform application identifier

# Detection Timing
[polling]
  interval = "500ms"             # How often audio activity is checked
  silence_grace = "5s"           # Silence tolerated before a recording stops
  process_scan = "2s"            # How often the process table is scanned

# Audio Recording Configuration
[recording]
  sample_rate = 16000            # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                   # Number of audio channels (1 = mono, 2 = stereo)
  format = "s16"                 # Audio format (s16 = 16-bit signed integers)

# Speech Transcription Configuration
[transcription]
  provider = "openai"            # Transcription service ("openai" only currently supported)
  api_key = ""                   # OpenAI API key (or set OPENAI_API_KEY environment variable)
  language = ""                  # Language code (empty for auto-detect, "en", "it", "es", etc.)
  model = "whisper-1"            # OpenAI model name ("whisper-1" recommended)

# Meeting Summary Configuration
[summary]
  provider = "openai"            # Summarization service ("openai" only currently supported)
  api_key = ""                   # Falls back to transcription.api_key, then OPENAI_API_KEY
  model = "gpt-4o-mini"          # Chat model used for summaries

# Desktop Notification Configuration
[notifications]
  enabled = true                 # Enable notifications
  type = "desktop"               # Notification type ("desktop", "log", "none")

# Storage
[storage]
  base_dir = ""                  # Session directory (empty = ~/.local/share/tapdeck/sessions)
`

	if _, err := file.WriteString(configContent); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}

	return nil
}
