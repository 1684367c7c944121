package process

import (
	"context"
	"testing"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

type fakeLister struct {
	procsCh chan []watchlist.RunningProcess
	current []watchlist.RunningProcess
}

func (f *fakeLister) Processes(ctx context.Context) ([]watchlist.RunningProcess, error) {
	select {
	case procs := <-f.procsCh:
		f.current = procs
	default:
	}
	return f.current, nil
}

func mustApp(t *testing.T, name, bundleID, procName string) watchlist.WatchedApp {
	t.Helper()
	app, err := watchlist.NewWatchedApp(name, bundleID, procName)
	if err != nil {
		t.Fatalf("NewWatchedApp: %v", err)
	}
	return app
}

func collectEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for observer event")
		return Event{}
	}
}

func TestObserver_AppearDisappear(t *testing.T) {
	lister := &fakeLister{procsCh: make(chan []watchlist.RunningProcess, 1)}
	apps := []watchlist.WatchedApp{mustApp(t, "Zoom", "", "zoom")}

	obs := NewObserver(lister, apps, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister.procsCh <- []watchlist.RunningProcess{{PID: 77, Executable: "zoom", DisplayName: "zoom"}}
	go obs.Run(ctx)

	ev := collectEvent(t, obs.Events())
	if ev.Type != Appeared {
		t.Fatalf("expected appeared, got %s", ev.Type)
	}
	if ev.Match.Process.PID != 77 || ev.Match.App.Name != "Zoom" {
		t.Errorf("unexpected match: %+v", ev.Match)
	}

	lister.procsCh <- nil

	ev = collectEvent(t, obs.Events())
	if ev.Type != Disappeared {
		t.Fatalf("expected disappeared, got %s", ev.Type)
	}
	if ev.Match.Process.PID != 77 {
		t.Errorf("unexpected pid: %d", ev.Match.Process.PID)
	}
}

func TestObserver_NoDuplicateAppear(t *testing.T) {
	lister := &fakeLister{
		current: []watchlist.RunningProcess{{PID: 5, Executable: "slack"}},
	}
	obs := NewObserver(lister, []watchlist.WatchedApp{mustApp(t, "Slack", "", "slack")}, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go obs.Run(ctx)

	ev := collectEvent(t, obs.Events())
	if ev.Type != Appeared {
		t.Fatalf("expected appeared, got %s", ev.Type)
	}

	// The process stays in the table; no further events should arrive.
	select {
	case extra := <-obs.Events():
		t.Fatalf("unexpected extra event: %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	// Channel closes on shutdown.
	for range obs.Events() {
	}
}

func TestObserver_SetWatchList(t *testing.T) {
	lister := &fakeLister{
		current: []watchlist.RunningProcess{{PID: 8, Executable: "teams"}},
	}
	obs := NewObserver(lister, nil, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	select {
	case ev := <-obs.Events():
		t.Fatalf("no watch list configured, got event %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}

	obs.SetWatchList([]watchlist.WatchedApp{mustApp(t, "Teams", "", "teams")})

	ev := collectEvent(t, obs.Events())
	if ev.Type != Appeared || ev.Match.App.Name != "Teams" {
		t.Fatalf("expected Teams appearance, got %+v", ev)
	}
}
