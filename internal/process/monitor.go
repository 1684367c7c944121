package process

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// AudioState reports whether a process is currently producing audio.
type AudioState struct {
	PID         int32
	AudioActive bool
}

// ActivityMonitor exposes a point-in-time snapshot of the processes known to
// the audio subsystem. No ordering is guaranteed across calls, and a process
// that has never opened an audio stream is simply absent from the snapshot.
type ActivityMonitor interface {
	Snapshot(ctx context.Context) ([]AudioState, error)
}

// PulseMonitor reads sink inputs from the PulseAudio/PipeWire server via
// pactl. A process with at least one uncorked sink input counts as
// audio-active.
type PulseMonitor struct {
	timeout time.Duration
}

func NewPulseMonitor() *PulseMonitor {
	return &PulseMonitor{timeout: 2 * time.Second}
}

func (m *PulseMonitor) Snapshot(ctx context.Context) ([]AudioState, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "pactl", "list", "sink-inputs")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	return parseSinkInputs(string(output)), nil
}

// parseSinkInputs collapses pactl's per-sink-input listing into one AudioState
// per process id. A process owning several sink inputs is active if any of
// them is uncorked.
func parseSinkInputs(output string) []AudioState {
	active := make(map[int32]bool)
	var order []int32

	var pid int32
	var corked, havePID, haveCorked bool

	flush := func() {
		if !havePID {
			return
		}
		if _, seen := active[pid]; !seen {
			order = append(order, pid)
		}
		active[pid] = active[pid] || (haveCorked && !corked)
		havePID, haveCorked = false, false
	}

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Sink Input #"):
			flush()
		case strings.HasPrefix(line, "Corked:"):
			corked = strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(line, "Corked:")), "yes")
			haveCorked = true
		case strings.HasPrefix(line, "application.process.id"):
			if v, ok := propertyValue(line); ok {
				if n, err := strconv.ParseInt(v, 10, 32); err == nil {
					pid = int32(n)
					havePID = true
				}
			}
		}
	}
	flush()

	states := make([]AudioState, 0, len(order))
	for _, p := range order {
		states = append(states, AudioState{PID: p, AudioActive: active[p]})
	}
	return states
}

// propertyValue extracts the quoted value from a pactl property line of the
// form `key = "value"`.
func propertyValue(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", false
	}
	v := strings.TrimSpace(line[idx+1:])
	v = strings.Trim(v, `"`)
	if v == "" {
		return "", false
	}
	return v, true
}

// CheckPulseAvailable verifies pactl can reach a running audio server.
func CheckPulseAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pactl"); err != nil {
		return fmt.Errorf("pactl not found: %w (install pulseaudio-utils or pipewire-pulse)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pactl", "info").Run(); err != nil {
		return fmt.Errorf("audio server not running or accessible: %w", err)
	}
	return nil
}
