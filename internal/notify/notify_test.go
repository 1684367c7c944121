package notify

import "testing"

func TestForType(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		enabled bool
		want    Notifier
	}{
		{"disabled always nop", "desktop", false, Nop{}},
		{"desktop", "desktop", true, Desktop{}},
		{"log", "log", true, Log{}},
		{"none", "none", true, Nop{}},
		{"unknown falls back to nop", "carrier-pigeon", true, Nop{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ForType(tt.kind, tt.enabled); got != tt.want {
				t.Errorf("ForType(%q, %v) = %T, want %T", tt.kind, tt.enabled, got, tt.want)
			}
		})
	}
}

func TestNopDoesNothing(t *testing.T) {
	// Just exercise the no-op paths.
	n := Nop{}
	n.RecordingStarted("Zoom")
	n.RecordingStopped("Zoom", 0)
	n.SummaryReady("Zoom")
	n.Error("title", "msg")
}
