package capture

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

// PipewireEngine captures per-process audio with pw-record, targeting the
// sink input that belongs to the process.
type PipewireEngine struct {
	config Config
}

func NewPipewireEngine(config Config) *PipewireEngine {
	return &PipewireEngine{config: config}
}

func (e *PipewireEngine) CreateTap(ctx context.Context, proc watchlist.RunningProcess) (Tap, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lookupCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(lookupCtx, "pactl", "list", "sink-inputs")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("resolve capture target: %w", err)
	}

	target, ok := findSinkInputSerial(string(output), proc.PID)
	if !ok {
		return nil, fmt.Errorf("no sink input for pid %d", proc.PID)
	}
	return &pipewireTap{target: target}, nil
}

func (e *PipewireEngine) NewRecorder(path string, tap Tap) Recorder {
	return &pipewireRecorder{config: e.config, path: path, tap: tap}
}

// findSinkInputSerial scans pactl output for the first sink input whose
// application.process.id matches pid and returns its object serial.
func findSinkInputSerial(output string, pid int32) (string, bool) {
	var serial string
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "Sink Input #"):
			serial = strings.TrimPrefix(line, "Sink Input #")
		case strings.HasPrefix(line, "application.process.id"):
			idx := strings.Index(line, "=")
			if idx < 0 {
				continue
			}
			v := strings.Trim(strings.TrimSpace(line[idx+1:]), `"`)
			if n, err := strconv.ParseInt(v, 10, 32); err == nil && int32(n) == pid && serial != "" {
				return serial, true
			}
		}
	}
	return "", false
}

type pipewireTap struct {
	mu          sync.Mutex
	target      string
	invalidated bool
}

func (t *pipewireTap) Activate() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.invalidated {
		return fmt.Errorf("tap already invalidated")
	}
	return nil
}

func (t *pipewireTap) Invalidate() {
	t.mu.Lock()
	t.invalidated = true
	t.mu.Unlock()
}

func (t *pipewireTap) Target() string {
	return t.target
}

type pipewireRecorder struct {
	config Config
	path   string
	tap    Tap

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (r *pipewireRecorder) FilePath() string {
	return r.path
}

func (r *pipewireRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd != nil {
		return fmt.Errorf("already recording to %s", r.path)
	}

	recCtx, cancel := context.WithCancel(ctx)

	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
		"--target", r.tap.Target(),
		r.path,
	}
	cmd := exec.CommandContext(recCtx, "pw-record", args...)
	// pw-record finalizes the WAV header on SIGINT; a hard kill would leave
	// a corrupt file.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 3 * time.Second

	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start pw-record: %w", err)
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("capture stderr: %s", scanner.Text())
		}
	}()

	r.cmd = cmd
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := cmd.Wait(); err != nil && recCtx.Err() == nil {
			log.Printf("capture: pw-record exited: %v", err)
		}
	}()

	return nil
}

func (r *pipewireRecorder) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.cmd = nil
	r.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	r.wg.Wait()
	return nil
}

// CheckPipewireAvailable verifies the capture tooling is installed.
func CheckPipewireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := exec.CommandContext(checkCtx, "pw-cli", "info").Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}
