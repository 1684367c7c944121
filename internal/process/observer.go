package process

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

// EventType distinguishes application lifecycle events.
type EventType string

const (
	Appeared    EventType = "appeared"
	Disappeared EventType = "disappeared"
)

// Event notifies the orchestrator that a watched application instance came or
// went.
type Event struct {
	Type  EventType
	Match watchlist.Match
}

// Lister returns the processes currently running. Split out so the observer
// can be driven from canned process tables in tests.
type Lister interface {
	Processes(ctx context.Context) ([]watchlist.RunningProcess, error)
}

// PSLister shells out to ps for the process table.
type PSLister struct{}

func (PSLister) Processes(ctx context.Context) ([]watchlist.RunningProcess, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ps", "-eo", "pid=,comm=,args=")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	return parsePS(string(output)), nil
}

func parsePS(output string) []watchlist.RunningProcess {
	var procs []watchlist.RunningProcess
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.ParseInt(fields[0], 10, 32)
		if err != nil {
			continue
		}
		comm := fields[1]
		display := comm
		if len(fields) > 2 {
			display = filepath.Base(fields[2])
		}
		procs = append(procs, watchlist.RunningProcess{
			PID:         int32(pid),
			DisplayName: display,
			Executable:  comm,
		})
	}
	return procs
}

// Observer polls the process table and emits Appeared/Disappeared events for
// processes matching the watch list. The watch list can be swapped at runtime
// when the configuration reloads.
type Observer struct {
	lister   Lister
	interval time.Duration

	mu      sync.RWMutex
	apps    []watchlist.WatchedApp
	tracked map[int32]watchlist.Match

	events chan Event
	wg     sync.WaitGroup
}

func NewObserver(lister Lister, apps []watchlist.WatchedApp, interval time.Duration) *Observer {
	if lister == nil {
		lister = PSLister{}
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Observer{
		lister:   lister,
		interval: interval,
		apps:     apps,
		tracked:  make(map[int32]watchlist.Match),
		events:   make(chan Event, 16),
	}
}

// Events delivers lifecycle events until the observer's context ends, after
// which the channel is closed.
func (o *Observer) Events() <-chan Event {
	return o.events
}

// SetWatchList replaces the watched apps on the next scan.
func (o *Observer) SetWatchList(apps []watchlist.WatchedApp) {
	o.mu.Lock()
	o.apps = apps
	o.mu.Unlock()
	log.Printf("observer: watch list updated (%d apps)", len(apps))
}

// Run blocks scanning until ctx is cancelled.
func (o *Observer) Run(ctx context.Context) {
	o.wg.Add(1)
	defer o.wg.Done()
	defer close(o.events)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	o.scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.scan(ctx)
		}
	}
}

func (o *Observer) scan(ctx context.Context) {
	procs, err := o.lister.Processes(ctx)
	if err != nil {
		log.Printf("observer: process scan failed: %v", err)
		return
	}

	o.mu.RLock()
	apps := o.apps
	o.mu.RUnlock()

	seen := make(map[int32]bool, len(o.tracked))
	for _, proc := range procs {
		app, ok := watchlist.Find(proc, apps)
		if !ok {
			continue
		}
		seen[proc.PID] = true
		if _, known := o.tracked[proc.PID]; known {
			continue
		}
		m := watchlist.Match{App: app, Process: proc}
		o.tracked[proc.PID] = m
		log.Printf("observer: %s appeared (pid %d)", app.Name, proc.PID)
		o.emit(ctx, Event{Type: Appeared, Match: m})
	}

	for pid, m := range o.tracked {
		if seen[pid] {
			continue
		}
		delete(o.tracked, pid)
		log.Printf("observer: %s disappeared (pid %d)", m.App.Name, pid)
		o.emit(ctx, Event{Type: Disappeared, Match: m})
	}
}

func (o *Observer) emit(ctx context.Context, ev Event) {
	select {
	case o.events <- ev:
	case <-ctx.Done():
	}
}
