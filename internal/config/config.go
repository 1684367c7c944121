package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/leonardotrapani/tapdeck/internal/capture"
	"github.com/leonardotrapani/tapdeck/internal/orchestrator"
	"github.com/leonardotrapani/tapdeck/internal/summarizer"
	"github.com/leonardotrapani/tapdeck/internal/transcriber"
	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

type Config struct {
	Watches       []WatchConfig       `toml:"watch"`
	Polling       PollingConfig       `toml:"polling"`
	Recording     RecordingConfig     `toml:"recording"`
	Transcription TranscriptionConfig `toml:"transcription"`
	Summary       SummaryConfig       `toml:"summary"`
	Notifications NotificationsConfig `toml:"notifications"`
	Storage       StorageConfig       `toml:"storage"`
}

// WatchConfig declares one application to record automatically. At least one
// of bundle_id and process_name must be set.
type WatchConfig struct {
	Name        string `toml:"name"`
	BundleID    string `toml:"bundle_id"`
	ProcessName string `toml:"process_name"`
}

type PollingConfig struct {
	Interval     time.Duration `toml:"interval"`
	SilenceGrace time.Duration `toml:"silence_grace"`
	ProcessScan  time.Duration `toml:"process_scan"`
}

type RecordingConfig struct {
	SampleRate int    `toml:"sample_rate"`
	Channels   int    `toml:"channels"`
	Format     string `toml:"format"`
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
	Model    string `toml:"model"`
}

type SummaryConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	Model    string `toml:"model"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled"`
	Type    string `toml:"type"` // "desktop", "log", "none"
}

type StorageConfig struct {
	BaseDir string `toml:"base_dir"`
}

func (c *Config) ToWatchedApps() ([]watchlist.WatchedApp, error) {
	apps := make([]watchlist.WatchedApp, 0, len(c.Watches))
	for _, w := range c.Watches {
		app, err := watchlist.NewWatchedApp(w.Name, w.BundleID, w.ProcessName)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (c *Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		PollInterval: c.Polling.Interval,
		SilenceGrace: c.Polling.SilenceGrace,
	}
}

func (c *Config) ToCaptureConfig() capture.Config {
	return capture.Config{
		SampleRate: c.Recording.SampleRate,
		Channels:   c.Recording.Channels,
		Format:     c.Recording.Format,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	cfg := transcriber.Config{
		Provider: c.Transcription.Provider,
		APIKey:   c.Transcription.APIKey,
		Language: c.Transcription.Language,
		Model:    c.Transcription.Model,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg
}

func (c *Config) ToSummarizerConfig() summarizer.Config {
	cfg := summarizer.Config{
		Provider: c.Summary.Provider,
		APIKey:   c.Summary.APIKey,
		Model:    c.Summary.Model,
	}
	if cfg.APIKey == "" {
		cfg.APIKey = c.Transcription.APIKey
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg
}

func (c *Config) Validate() error {
	if len(c.Watches) == 0 {
		return fmt.Errorf("no watched applications configured: add at least one [[watch]] entry")
	}
	for _, w := range c.Watches {
		if w.BundleID == "" && w.ProcessName == "" {
			return fmt.Errorf("watch %q: bundle_id or process_name required", w.Name)
		}
	}

	if c.Polling.Interval <= 0 {
		return fmt.Errorf("invalid polling.interval: %v", c.Polling.Interval)
	}
	if c.Polling.SilenceGrace <= 0 {
		return fmt.Errorf("invalid polling.silence_grace: %v", c.Polling.SilenceGrace)
	}
	if c.Polling.ProcessScan <= 0 {
		return fmt.Errorf("invalid polling.process_scan: %v", c.Polling.ProcessScan)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.Format == "" {
		return fmt.Errorf("invalid recording.format: empty")
	}

	if c.Transcription.Provider == "" {
		return fmt.Errorf("invalid transcription.provider: empty")
	}
	if c.Transcription.Provider == "openai" {
		apiKey := c.Transcription.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return fmt.Errorf("OpenAI API key required: not found in config (transcription.api_key) or environment variable (OPENAI_API_KEY)")
		}
	}
	if c.Transcription.Model == "" {
		return fmt.Errorf("invalid transcription.model: empty")
	}

	if c.Summary.Provider == "" {
		return fmt.Errorf("invalid summary.provider: empty")
	}
	if c.Summary.Model == "" {
		return fmt.Errorf("invalid summary.model: empty")
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	tapdeckDir := filepath.Join(configDir, "tapdeck")
	if err := os.MkdirAll(tapdeckDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(tapdeckDir, "config.toml"), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return Load()
	}

	log.Printf("config: loading configuration from %s", configPath)
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	config.applyDefaults()

	log.Printf("config: configuration loaded successfully")
	return &config, nil
}

// applyDefaults fills zero values so older config files keep working when new
// keys appear.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Polling.Interval <= 0 {
		c.Polling.Interval = def.Polling.Interval
	}
	if c.Polling.SilenceGrace <= 0 {
		c.Polling.SilenceGrace = def.Polling.SilenceGrace
	}
	if c.Polling.ProcessScan <= 0 {
		c.Polling.ProcessScan = def.Polling.ProcessScan
	}
	if c.Recording.SampleRate <= 0 {
		c.Recording.SampleRate = def.Recording.SampleRate
	}
	if c.Recording.Channels <= 0 {
		c.Recording.Channels = def.Recording.Channels
	}
	if c.Recording.Format == "" {
		c.Recording.Format = def.Recording.Format
	}
	if c.Transcription.Provider == "" {
		c.Transcription.Provider = def.Transcription.Provider
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = def.Transcription.Model
	}
	if c.Summary.Provider == "" {
		c.Summary.Provider = def.Summary.Provider
	}
	if c.Summary.Model == "" {
		c.Summary.Model = def.Summary.Model
	}
	if c.Notifications.Type == "" {
		c.Notifications.Type = def.Notifications.Type
	}
}
