package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/pipeline"
	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/testutil"
	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

type fixture struct {
	orch     *Orchestrator
	monitor  *testutil.MockActivityMonitor
	engine   *testutil.MockEngine
	store    *session.Store
	post     *pipeline.Pipeline
	trans    *testutil.MockTranscriber
	summ     *testutil.MockSummarizer
	notifier *testutil.MockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		monitor:  testutil.NewMockActivityMonitor(),
		engine:   testutil.NewMockEngine(),
		store:    session.NewStore(t.TempDir()),
		trans:    testutil.NewMockTranscriber("transcript"),
		summ:     testutil.NewMockSummarizer("summary"),
		notifier: testutil.NewMockNotifier(),
	}
	f.post = pipeline.New(f.store, f.trans, f.summ, f.notifier)

	cfg := Config{
		PollInterval: 10 * time.Millisecond,
		SilenceGrace: 50 * time.Millisecond,
	}
	f.orch = New(cfg, f.monitor, f.engine, f.store, f.post, f.notifier)
	f.orch.Run(context.Background())
	t.Cleanup(f.orch.Close)
	return f
}

func zoomMatch(t *testing.T, pid int32) watchlist.Match {
	t.Helper()
	return watchlist.Match{
		App:     testutil.MustWatchedApp(t, "Zoom", "us.zoom.xos", "zoom"),
		Process: watchlist.RunningProcess{PID: pid, Executable: "zoom"},
	}
}

func (f *fixture) waitPending(t *testing.T, pid int32) {
	t.Helper()
	testutil.WaitForCondition(t, func() bool {
		for _, p := range f.orch.State().Pending {
			if p.PID == pid {
				return true
			}
		}
		return false
	}, 2*time.Second)
}

func (f *fixture) waitActive(t *testing.T, pid int32) {
	t.Helper()
	testutil.WaitForCondition(t, func() bool {
		for _, a := range f.orch.State().Active {
			if a.PID == pid {
				return true
			}
		}
		return false
	}, 2*time.Second)
}

func (f *fixture) waitEmpty(t *testing.T) {
	t.Helper()
	testutil.WaitForCondition(t, func() bool {
		snap := f.orch.State()
		return len(snap.Pending) == 0 && len(snap.Active) == 0
	}, 2*time.Second)
}

func assertExclusive(t *testing.T, snap Snapshot) {
	t.Helper()
	seen := make(map[int32]string)
	for _, p := range snap.Pending {
		seen[p.PID] = "pending"
	}
	for _, a := range snap.Active {
		if where, ok := seen[a.PID]; ok {
			t.Fatalf("pid %d present in both %s and active", a.PID, where)
		}
	}
}

func TestAppearThenAudioStartsRecording(t *testing.T) {
	f := newFixture(t)
	m := zoomMatch(t, 100)

	f.orch.Appeared(m)
	f.waitPending(t, 100)

	// Audio not active yet: the watch stays pending.
	f.monitor.SetState(100, false)
	time.Sleep(50 * time.Millisecond)
	snap := f.orch.State()
	if len(snap.Pending) != 1 || len(snap.Active) != 0 {
		t.Fatalf("expected still pending, got %+v", snap)
	}

	f.monitor.SetState(100, true)
	f.waitActive(t, 100)

	snap = f.orch.State()
	assertExclusive(t, snap)
	if len(snap.Pending) != 0 {
		t.Errorf("pending entry should be gone after activation")
	}

	rec := f.engine.LastRecorder()
	if rec == nil || !rec.Started {
		t.Fatalf("recorder was not started")
	}
	if len(f.notifier.Started) != 1 || f.notifier.Started[0] != "Zoom" {
		t.Errorf("expected start notification for Zoom, got %v", f.notifier.Started)
	}
}

func TestUnknownProcessStaysPending(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 101))
	f.waitPending(t, 101)

	// The pid never shows up in the audio snapshot: recheck, not an error.
	time.Sleep(60 * time.Millisecond)
	snap := f.orch.State()
	if len(snap.Pending) != 1 {
		t.Errorf("watch should remain pending, got %+v", snap)
	}
	if f.notifier.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", f.notifier.Errors)
	}
}

func TestSilenceTimeoutStopsAndRearms(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 102))
	f.monitor.SetState(102, true)
	f.waitActive(t, 102)

	// Audio goes quiet; after the grace window the recording stops and the
	// watch re-arms.
	f.monitor.SetState(102, false)
	f.waitPending(t, 102)

	snap := f.orch.State()
	assertExclusive(t, snap)
	if len(snap.Active) != 0 {
		t.Errorf("recording should have stopped, got %+v", snap.Active)
	}

	if !f.engine.LastRecorder().WasStopped() {
		t.Errorf("recorder not stopped")
	}
	if !f.engine.LastTap().WasInvalidated() {
		t.Errorf("tap not invalidated")
	}

	// The finished session went through post-processing.
	f.post.Wait()
	if f.trans.CallCount() != 1 {
		t.Errorf("expected one transcription, got %d", f.trans.CallCount())
	}
	if !f.summ.WasCalled() {
		t.Errorf("summarizer never called")
	}
}

func TestRearmedWatchRecordsAgain(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 103))
	f.monitor.SetState(103, true)
	f.waitActive(t, 103)

	f.monitor.SetState(103, false)
	f.waitPending(t, 103)

	// Audio resumes: a second recording starts for the same process.
	f.monitor.SetState(103, true)
	f.waitActive(t, 103)

	f.orch.Close()
	f.post.Wait()
	if f.trans.CallCount() != 2 {
		t.Errorf("expected two sessions transcribed, got %d", f.trans.CallCount())
	}
}

func TestProcessVanishedStopsRecording(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 104))
	f.monitor.SetState(104, true)
	f.waitActive(t, 104)

	// The process disappears from the audio snapshot entirely.
	f.monitor.Remove(104)
	f.waitPending(t, 104)

	if !f.engine.LastRecorder().WasStopped() {
		t.Errorf("recorder not stopped after process vanished")
	}
}

func TestDisappearRemovesPendingWatch(t *testing.T) {
	f := newFixture(t)
	m := zoomMatch(t, 105)
	f.orch.Appeared(m)
	f.waitPending(t, 105)

	f.orch.Disappeared(m)
	f.waitEmpty(t)
}

func TestDisappearDuringRecordingDoesNotRearm(t *testing.T) {
	f := newFixture(t)
	m := zoomMatch(t, 106)
	f.orch.Appeared(m)
	f.monitor.SetState(106, true)
	f.waitActive(t, 106)

	f.orch.Disappeared(m)
	f.waitEmpty(t)

	if !f.engine.LastRecorder().WasStopped() {
		t.Errorf("recorder not stopped on disappear")
	}

	f.post.Wait()
	if f.trans.CallCount() != 1 {
		t.Errorf("finished session should still be post-processed, got %d calls", f.trans.CallCount())
	}
}

func TestTapCreationFailureDropsWatch(t *testing.T) {
	f := newFixture(t)
	f.engine.CreateTapErr = errors.New("no sink input")

	f.orch.Appeared(zoomMatch(t, 107))
	f.monitor.SetState(107, true)

	testutil.WaitForCondition(t, func() bool {
		return f.notifier.ErrorCount() > 0
	}, 2*time.Second)

	// Known divergence from an obvious retry design: the failed watch is
	// dropped and not re-armed until the app disappears and reappears.
	f.waitEmpty(t)
	time.Sleep(40 * time.Millisecond)
	snap := f.orch.State()
	if len(snap.Pending) != 0 || len(snap.Active) != 0 {
		t.Errorf("watch should stay dropped after start failure, got %+v", snap)
	}
}

func TestRecorderStartFailureReleasesTap(t *testing.T) {
	f := newFixture(t)
	f.engine.StartErr = errors.New("device busy")

	f.orch.Appeared(zoomMatch(t, 108))
	f.monitor.SetState(108, true)

	testutil.WaitForCondition(t, func() bool {
		return f.notifier.ErrorCount() > 0
	}, 2*time.Second)

	if tap := f.engine.LastTap(); tap == nil || !tap.WasInvalidated() {
		t.Errorf("partially created tap must be invalidated")
	}
}

func TestAppearIsIdempotentPerPID(t *testing.T) {
	f := newFixture(t)
	m := zoomMatch(t, 109)
	f.orch.Appeared(m)
	f.orch.Appeared(m)
	f.waitPending(t, 109)

	snap := f.orch.State()
	if len(snap.Pending) != 1 {
		t.Errorf("duplicate appear must not create a second watch: %+v", snap.Pending)
	}
}

func TestPollingStopsWhenNothingTracked(t *testing.T) {
	f := newFixture(t)
	m := zoomMatch(t, 110)
	f.orch.Appeared(m)
	f.waitPending(t, 110)
	f.orch.Disappeared(m)
	f.waitEmpty(t)

	// With the loop torn down, new audio activity alone must not start
	// anything.
	f.monitor.SetState(110, true)
	time.Sleep(60 * time.Millisecond)
	snap := f.orch.State()
	if len(snap.Active) != 0 || len(snap.Pending) != 0 {
		t.Errorf("nothing should be tracked, got %+v", snap)
	}
	if f.engine.LastRecorder() != nil {
		t.Errorf("no recorder should have been created")
	}
}

func TestCloseFlushesActiveRecordings(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 111))
	f.monitor.SetState(111, true)
	f.waitActive(t, 111)

	f.orch.Close()
	f.orch.Close() // idempotent

	if !f.engine.LastRecorder().WasStopped() {
		t.Errorf("active recorder not stopped on close")
	}
	f.post.Wait()
	if f.trans.CallCount() != 1 {
		t.Errorf("flushed recording should be post-processed")
	}
}

func TestCloseWithoutRun(t *testing.T) {
	o := New(DefaultConfig(), testutil.NewMockActivityMonitor(), testutil.NewMockEngine(), nil, nil, nil)
	o.Close()
	o.Close()
}

func TestStateElapsed(t *testing.T) {
	f := newFixture(t)
	f.orch.Appeared(zoomMatch(t, 112))
	f.monitor.SetState(112, true)
	f.waitActive(t, 112)

	time.Sleep(30 * time.Millisecond)
	snap := f.orch.State()
	if len(snap.Active) != 1 {
		t.Fatalf("expected one active recording")
	}
	if snap.Active[0].Elapsed <= 0 {
		t.Errorf("elapsed should be positive, got %v", snap.Active[0].Elapsed)
	}
	if snap.Active[0].AppName != "Zoom" {
		t.Errorf("AppName = %q", snap.Active[0].AppName)
	}
}
