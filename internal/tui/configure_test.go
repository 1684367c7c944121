package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/config"
	"github.com/leonardotrapani/tapdeck/internal/session"
)

func TestHasUserChanges_FreshDefaults(t *testing.T) {
	if hasUserChanges(config.Default()) {
		t.Error("default config should not count as user-modified")
	}
}

func TestHasUserChanges_APIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.APIKey = "sk-test"
	if !hasUserChanges(cfg) {
		t.Error("config with API key should count as user-modified")
	}
}

func TestHasUserChanges_EditedWatchList(t *testing.T) {
	cfg := config.Default()
	cfg.Watches = append(cfg.Watches, config.WatchConfig{Name: "Teams", ProcessName: "teams"})
	if !hasUserChanges(cfg) {
		t.Error("config with extra watch should count as user-modified")
	}
}

func TestFormatWatchesLabel(t *testing.T) {
	cfg := &config.Config{}
	if got := formatWatchesLabel(cfg); got != "Watched Apps (none)" {
		t.Errorf("empty list label = %q", got)
	}

	cfg.Watches = []config.WatchConfig{{Name: "Zoom", ProcessName: "zoom"}}
	if got := formatWatchesLabel(cfg); got != "Watched Apps (Zoom)" {
		t.Errorf("single entry label = %q", got)
	}

	cfg.Watches = append(cfg.Watches, config.WatchConfig{Name: "Teams", ProcessName: "teams"})
	if got := formatWatchesLabel(cfg); got != "Watched Apps (2)" {
		t.Errorf("multi entry label = %q", got)
	}
}

func TestFormatWatchEntry_PrefersBundleID(t *testing.T) {
	w := config.WatchConfig{Name: "Zoom", BundleID: "us.zoom.xos", ProcessName: "zoom"}
	if got := formatWatchEntry(w); !strings.Contains(got, "us.zoom.xos") {
		t.Errorf("entry label should show bundle ID, got %q", got)
	}

	w.BundleID = ""
	if got := formatWatchEntry(w); !strings.Contains(got, "zoom") {
		t.Errorf("entry label should fall back to process name, got %q", got)
	}
}

func TestRenderSessions_Empty(t *testing.T) {
	out := RenderSessions(nil)
	if !strings.Contains(out, "No recorded sessions") {
		t.Errorf("empty render = %q", out)
	}
}

func TestRenderSessions_GroupsByDay(t *testing.T) {
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local)
	entries := []session.Entry{
		{Session: session.Session{AppName: "Zoom", StartedAt: day.Add(2 * time.Hour)}, HasAudio: true, HasTranscript: true, HasSummary: true},
		{Session: session.Session{AppName: "Teams", StartedAt: day}, HasAudio: true},
	}

	out := RenderSessions(entries)
	if strings.Count(out, "2025-03-01") != 1 {
		t.Errorf("expected a single day header, got:\n%s", out)
	}
	if !strings.Contains(out, "Zoom") || !strings.Contains(out, "Teams") {
		t.Errorf("expected both apps listed, got:\n%s", out)
	}
	if !strings.Contains(out, "no summary") {
		t.Errorf("expected missing summary marker, got:\n%s", out)
	}
}
