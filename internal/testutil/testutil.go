package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/capture"
	"github.com/leonardotrapani/tapdeck/internal/process"
	"github.com/leonardotrapani/tapdeck/internal/summarizer"
	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// MustWatchedApp builds a watched app or fails the test
func MustWatchedApp(t *testing.T, name, bundleID, processName string) watchlist.WatchedApp {
	t.Helper()
	app, err := watchlist.NewWatchedApp(name, bundleID, processName)
	if err != nil {
		t.Fatalf("NewWatchedApp: %v", err)
	}
	return app
}

// MockActivityMonitor implements process.ActivityMonitor with a scripted
// process table that tests mutate between polls.
type MockActivityMonitor struct {
	mu     sync.Mutex
	states map[int32]bool
	Err    error
}

func NewMockActivityMonitor() *MockActivityMonitor {
	return &MockActivityMonitor{states: make(map[int32]bool)}
}

// SetState registers pid in the snapshot with the given audio activity.
func (m *MockActivityMonitor) SetState(pid int32, audioActive bool) {
	m.mu.Lock()
	m.states[pid] = audioActive
	m.mu.Unlock()
}

// Remove drops pid from the snapshot entirely (process gone).
func (m *MockActivityMonitor) Remove(pid int32) {
	m.mu.Lock()
	delete(m.states, pid)
	m.mu.Unlock()
}

func (m *MockActivityMonitor) Snapshot(ctx context.Context) ([]process.AudioState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	states := make([]process.AudioState, 0, len(m.states))
	for pid, active := range m.states {
		states = append(states, process.AudioState{PID: pid, AudioActive: active})
	}
	return states, nil
}

// MockTap implements capture.Tap
type MockTap struct {
	ActivateErr error

	mu          sync.Mutex
	Activated   bool
	Invalidated bool
}

func (m *MockTap) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ActivateErr != nil {
		return m.ActivateErr
	}
	m.Activated = true
	return nil
}

func (m *MockTap) Invalidate() {
	m.mu.Lock()
	m.Invalidated = true
	m.mu.Unlock()
}

func (m *MockTap) Target() string { return "mock-tap" }

func (m *MockTap) WasInvalidated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Invalidated
}

// MockRecorder implements capture.Recorder
type MockRecorder struct {
	StartErr error
	Path     string

	mu      sync.Mutex
	Started bool
	Stopped bool
}

func (m *MockRecorder) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StartErr != nil {
		return m.StartErr
	}
	m.Started = true
	return nil
}

func (m *MockRecorder) Stop() error {
	m.mu.Lock()
	m.Stopped = true
	m.mu.Unlock()
	return nil
}

func (m *MockRecorder) FilePath() string { return m.Path }

func (m *MockRecorder) WasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Stopped
}

// MockEngine implements capture.Engine with failure injection for tap
// creation, tap activation, and recorder start.
type MockEngine struct {
	CreateTapErr error
	ActivateErr  error
	StartErr     error

	mu        sync.Mutex
	Taps      []*MockTap
	Recorders []*MockRecorder
}

func NewMockEngine() *MockEngine {
	return &MockEngine{}
}

func (m *MockEngine) CreateTap(ctx context.Context, proc watchlist.RunningProcess) (capture.Tap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateTapErr != nil {
		return nil, m.CreateTapErr
	}
	tap := &MockTap{ActivateErr: m.ActivateErr}
	m.Taps = append(m.Taps, tap)
	return tap, nil
}

func (m *MockEngine) NewRecorder(path string, tap capture.Tap) capture.Recorder {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := &MockRecorder{StartErr: m.StartErr, Path: path}
	m.Recorders = append(m.Recorders, rec)
	return rec
}

func (m *MockEngine) LastTap() *MockTap {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Taps) == 0 {
		return nil
	}
	return m.Taps[len(m.Taps)-1]
}

func (m *MockEngine) LastRecorder() *MockRecorder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Recorders) == 0 {
		return nil
	}
	return m.Recorders[len(m.Recorders)-1]
}

// MockTranscriber implements transcriber.Transcriber
type MockTranscriber struct {
	Text string
	Err  error

	mu    sync.Mutex
	Calls []string
}

func NewMockTranscriber(text string) *MockTranscriber {
	return &MockTranscriber{Text: text}
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, audioPath)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockTranscriber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSummarizer implements summarizer.Summarizer
type MockSummarizer struct {
	Summary string
	Err     error

	mu       sync.Mutex
	Called   bool
	LastText string
	LastMeta summarizer.Metadata
}

func NewMockSummarizer(summary string) *MockSummarizer {
	return &MockSummarizer{Summary: summary}
}

func (m *MockSummarizer) Summarize(ctx context.Context, transcript string, meta summarizer.Metadata) (string, error) {
	m.mu.Lock()
	m.Called = true
	m.LastText = transcript
	m.LastMeta = meta
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Summary, nil
}

func (m *MockSummarizer) WasCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Called
}

// MockNotifier records notifications for assertions
type MockNotifier struct {
	mu       sync.Mutex
	Started  []string
	Stopped  []string
	Ready    []string
	Errors   []string
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) RecordingStarted(appName string) {
	m.mu.Lock()
	m.Started = append(m.Started, appName)
	m.mu.Unlock()
}

func (m *MockNotifier) RecordingStopped(appName string, duration time.Duration) {
	m.mu.Lock()
	m.Stopped = append(m.Stopped, appName)
	m.mu.Unlock()
}

func (m *MockNotifier) SummaryReady(appName string) {
	m.mu.Lock()
	m.Ready = append(m.Ready, appName)
	m.mu.Unlock()
}

func (m *MockNotifier) Error(title, msg string) {
	m.mu.Lock()
	m.Errors = append(m.Errors, title+": "+msg)
	m.mu.Unlock()
}

func (m *MockNotifier) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Errors)
}
