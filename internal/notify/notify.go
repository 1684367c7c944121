package notify

import (
	"fmt"
	"log"
	"os/exec"
	"time"
)

// Notifier surfaces recording lifecycle and failure events to the user.
type Notifier interface {
	RecordingStarted(appName string)
	RecordingStopped(appName string, duration time.Duration)
	SummaryReady(appName string)
	Error(title, msg string)
}

// Desktop sends notifications via notify-send. Errors use critical urgency so
// they stay on screen until dismissed.
type Desktop struct{}

func (Desktop) RecordingStarted(appName string) {
	send("-a", "tapdeck", fmt.Sprintf("Recording %s", appName))
}

func (Desktop) RecordingStopped(appName string, duration time.Duration) {
	send("-a", "tapdeck", fmt.Sprintf("Stopped recording %s (%s)", appName, duration.Round(time.Second)))
}

func (Desktop) SummaryReady(appName string) {
	send("-a", "tapdeck", fmt.Sprintf("Summary ready for %s", appName))
}

func (Desktop) Error(title, msg string) {
	send("-a", "tapdeck", "-u", "critical", title, msg)
}

func send(args ...string) {
	cmd := exec.Command("notify-send", args...)
	if err := cmd.Run(); err != nil {
		log.Printf("notify: failed to send notification: %v", err)
	}
}

// Log writes notifications to the daemon log instead of the desktop.
type Log struct{}

func (Log) RecordingStarted(appName string) {
	log.Printf("notify: recording started: %s", appName)
}

func (Log) RecordingStopped(appName string, duration time.Duration) {
	log.Printf("notify: recording stopped: %s (%s)", appName, duration.Round(time.Second))
}

func (Log) SummaryReady(appName string) {
	log.Printf("notify: summary ready: %s", appName)
}

func (Log) Error(title, msg string) {
	log.Printf("notify: ERROR %s: %s", title, msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) RecordingStarted(appName string)                        {}
func (Nop) RecordingStopped(appName string, duration time.Duration) {}
func (Nop) SummaryReady(appName string)                            {}
func (Nop) Error(title, msg string)                                {}

// ForType resolves the configured notification type to an implementation.
func ForType(kind string, enabled bool) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{}
	case "log":
		return Log{}
	default:
		return Nop{}
	}
}
