package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/capture"
	"github.com/leonardotrapani/tapdeck/internal/notify"
	"github.com/leonardotrapani/tapdeck/internal/pipeline"
	"github.com/leonardotrapani/tapdeck/internal/process"
	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

// Config tunes the polling loop.
type Config struct {
	PollInterval time.Duration
	SilenceGrace time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 500 * time.Millisecond,
		SilenceGrace: 5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = 500 * time.Millisecond
	}
	if c.SilenceGrace <= 0 {
		c.SilenceGrace = 5 * time.Second
	}
	return c
}

// pendingWatch is a matched application instance not yet known to be
// producing audio.
type pendingWatch struct {
	match watchlist.Match
	since time.Time
}

// activeRecording owns one tap and one recorder for the lifetime of the
// entry; both are released before the entry is removed.
type activeRecording struct {
	match           watchlist.Match
	session         session.Session
	tap             capture.Tap
	recorder        capture.Recorder
	startedAt       time.Time
	lastAudioActive time.Time
}

// PendingView and ActiveView are the read-only state exposed to presentation
// layers.
type PendingView struct {
	PID     int32
	AppName string
	Since   time.Time
}

type ActiveView struct {
	PID       int32
	AppName   string
	StartedAt time.Time
	Elapsed   time.Duration
}

type Snapshot struct {
	Pending []PendingView
	Active  []ActiveView
}

type commandKind int

const (
	cmdAppeared commandKind = iota
	cmdDisappeared
	cmdSnapshot
)

type command struct {
	kind  commandKind
	match watchlist.Match
	reply chan Snapshot
}

// Orchestrator tracks watched application instances and drives recordings
// through pending -> active -> pending transitions. All state lives on a
// single coordination goroutine; the public methods only pass messages to it.
type Orchestrator struct {
	cfg      Config
	monitor  process.ActivityMonitor
	engine   capture.Engine
	store    *session.Store
	post     *pipeline.Pipeline
	notifier notify.Notifier

	cmds   chan command
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	// coordination-goroutine state, never touched elsewhere
	pending map[int32]*pendingWatch
	active  map[int32]*activeRecording
}

func New(cfg Config, monitor process.ActivityMonitor, engine capture.Engine, store *session.Store, post *pipeline.Pipeline, notifier notify.Notifier) *Orchestrator {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Orchestrator{
		cfg:      cfg.withDefaults(),
		monitor:  monitor,
		engine:   engine,
		store:    store,
		post:     post,
		notifier: notifier,
		cmds:     make(chan command, 16),
		done:     make(chan struct{}),
		pending:  make(map[int32]*pendingWatch),
		active:   make(map[int32]*activeRecording),
	}
}

// Run starts the coordination goroutine. It returns immediately.
func (o *Orchestrator) Run(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	go o.run(runCtx)
}

// Close tears the orchestrator down: still-active recordings are stopped and
// handed to post-processing, but their watches are not re-armed. Idempotent.
func (o *Orchestrator) Close() {
	o.once.Do(func() {
		if o.cancel == nil {
			// Run was never called; nothing to wait for.
			close(o.done)
			return
		}
		o.cancel()
	})
	<-o.done
}

// Appeared notifies the orchestrator that a watched application instance is
// running.
func (o *Orchestrator) Appeared(m watchlist.Match) {
	o.send(command{kind: cmdAppeared, match: m})
}

// Disappeared notifies the orchestrator that a watched application instance
// exited.
func (o *Orchestrator) Disappeared(m watchlist.Match) {
	o.send(command{kind: cmdDisappeared, match: m})
}

// State returns a point-in-time view of pending watches and active
// recordings. After Close it returns an empty snapshot.
func (o *Orchestrator) State() Snapshot {
	reply := make(chan Snapshot, 1)
	select {
	case o.cmds <- command{kind: cmdSnapshot, reply: reply}:
	case <-o.done:
		return Snapshot{}
	}
	select {
	case snap := <-reply:
		return snap
	case <-o.done:
		return Snapshot{}
	}
}

func (o *Orchestrator) send(cmd command) {
	select {
	case o.cmds <- cmd:
	case <-o.done:
	}
}

func (o *Orchestrator) run(ctx context.Context) {
	defer close(o.done)
	defer o.shutdown()

	timer := time.NewTimer(o.cfg.PollInterval)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	polling := false

	for {
		var tick <-chan time.Time
		if polling {
			tick = timer.C
		}

		select {
		case cmd := <-o.cmds:
			o.handle(cmd)
		case <-tick:
			polling = false
			o.pollTick(ctx)
		case <-ctx.Done():
			return
		}

		polling = o.syncPolling(timer, polling)
	}
}

// syncPolling keeps the poll timer armed exactly while something is tracked.
func (o *Orchestrator) syncPolling(timer *time.Timer, armed bool) bool {
	want := len(o.pending) > 0 || len(o.active) > 0
	switch {
	case want && !armed:
		timer.Reset(o.cfg.PollInterval)
		return true
	case !want && armed:
		if !timer.Stop() {
			<-timer.C
		}
		log.Printf("orchestrator: nothing tracked, polling stopped")
		return false
	default:
		return armed
	}
}

func (o *Orchestrator) handle(cmd command) {
	switch cmd.kind {
	case cmdAppeared:
		o.onAppeared(cmd.match)
	case cmdDisappeared:
		o.onDisappeared(cmd.match)
	case cmdSnapshot:
		cmd.reply <- o.snapshot()
	}
}

func (o *Orchestrator) onAppeared(m watchlist.Match) {
	pid := m.Process.PID
	if _, ok := o.pending[pid]; ok {
		return
	}
	if _, ok := o.active[pid]; ok {
		return
	}
	o.pending[pid] = &pendingWatch{match: m, since: time.Now()}
	log.Printf("orchestrator: watching %s (pid %d)", m.App.Name, pid)
}

func (o *Orchestrator) onDisappeared(m watchlist.Match) {
	pid := m.Process.PID
	if _, ok := o.pending[pid]; ok {
		delete(o.pending, pid)
		log.Printf("orchestrator: %s (pid %d) gone before producing audio", m.App.Name, pid)
	}
	// The app is gone, so the stop must not re-arm the watch.
	o.stopRecording(pid, false)
}

func (o *Orchestrator) pollTick(ctx context.Context) {
	states, err := o.monitor.Snapshot(ctx)
	if err != nil {
		log.Printf("orchestrator: audio snapshot failed: %v", err)
		return
	}

	audioActive := make(map[int32]bool, len(states))
	for _, s := range states {
		audioActive[s.PID] = s.AudioActive
	}

	now := time.Now()

	// Pending watches first, then active recordings.
	for pid, watch := range o.pending {
		active, found := audioActive[pid]
		if !found {
			// Process not registered with the audio subsystem yet; recheck
			// on the next tick.
			continue
		}
		if !active {
			continue
		}
		o.startRecording(ctx, pid, watch.match, now)
	}

	for pid, rec := range o.active {
		active, found := audioActive[pid]
		switch {
		case !found:
			log.Printf("orchestrator: %s (pid %d) vanished from audio subsystem", rec.match.App.Name, pid)
			o.stopRecording(pid, true)
		case active:
			rec.lastAudioActive = now
		case now.Sub(rec.lastAudioActive) > o.cfg.SilenceGrace:
			log.Printf("orchestrator: %s (pid %d) silent for %s, stopping", rec.match.App.Name, pid, o.cfg.SilenceGrace)
			o.stopRecording(pid, true)
		}
	}
}

// startRecording moves one watch from pending to active. On failure the watch
// is dropped from pending without re-arming; detection resumes only when the
// application disappears and reappears.
func (o *Orchestrator) startRecording(ctx context.Context, pid int32, m watchlist.Match, now time.Time) {
	delete(o.pending, pid)

	sess, err := o.store.Prepare(m.App.Name, now)
	if err != nil {
		o.reportStartFailure(m, err)
		return
	}

	tap, err := o.engine.CreateTap(ctx, m.Process)
	if err != nil {
		o.reportStartFailure(m, fmt.Errorf("create tap: %w", err))
		return
	}
	if err := tap.Activate(); err != nil {
		tap.Invalidate()
		o.reportStartFailure(m, fmt.Errorf("activate tap: %w", err))
		return
	}

	recorder := o.engine.NewRecorder(sess.AudioPath, tap)
	if err := recorder.Start(ctx); err != nil {
		tap.Invalidate()
		o.reportStartFailure(m, fmt.Errorf("start recorder: %w", err))
		return
	}

	o.active[pid] = &activeRecording{
		match:           m,
		session:         sess,
		tap:             tap,
		recorder:        recorder,
		startedAt:       now,
		lastAudioActive: now,
	}
	log.Printf("orchestrator: recording %s (pid %d) -> %s", m.App.Name, pid, sess.AudioPath)
	o.notifier.RecordingStarted(m.App.Name)
}

func (o *Orchestrator) reportStartFailure(m watchlist.Match, err error) {
	log.Printf("orchestrator: failed to start recording %s: %v", m.App.Name, err)
	o.notifier.Error(fmt.Sprintf("Could not record %s", m.App.Name), err.Error())
}

// stopRecording releases the tap and recorder, re-arms the watch when rearm
// is set, and hands the finished session to post-processing. Calling it for a
// pid with no active recording is a no-op, so the disappear event and the
// poll tick may both fire for the same process.
func (o *Orchestrator) stopRecording(pid int32, rearm bool) {
	rec, ok := o.active[pid]
	if !ok {
		return
	}

	if err := rec.recorder.Stop(); err != nil {
		log.Printf("orchestrator: stopping recorder for pid %d: %v", pid, err)
	}
	rec.tap.Invalidate()
	delete(o.active, pid)

	endedAt := time.Now()
	if rearm {
		o.pending[pid] = &pendingWatch{match: rec.match, since: endedAt}
	}

	log.Printf("orchestrator: stopped recording %s (pid %d) after %s",
		rec.match.App.Name, pid, endedAt.Sub(rec.startedAt).Round(time.Second))
	o.notifier.RecordingStopped(rec.match.App.Name, endedAt.Sub(rec.startedAt))

	o.post.Launch(rec.session, endedAt)
}

// shutdown flushes still-active recordings on teardown. Watches are not
// re-armed; the finished sessions still go through post-processing.
func (o *Orchestrator) shutdown() {
	for pid := range o.active {
		o.stopRecording(pid, false)
	}
	o.pending = make(map[int32]*pendingWatch)
}

func (o *Orchestrator) snapshot() Snapshot {
	now := time.Now()
	snap := Snapshot{
		Pending: make([]PendingView, 0, len(o.pending)),
		Active:  make([]ActiveView, 0, len(o.active)),
	}
	for pid, w := range o.pending {
		snap.Pending = append(snap.Pending, PendingView{
			PID:     pid,
			AppName: w.match.App.Name,
			Since:   w.since,
		})
	}
	for pid, r := range o.active {
		snap.Active = append(snap.Active, ActiveView{
			PID:       pid,
			AppName:   r.match.App.Name,
			StartedAt: r.startedAt,
			Elapsed:   now.Sub(r.startedAt),
		})
	}
	sort.Slice(snap.Pending, func(i, j int) bool { return snap.Pending[i].PID < snap.Pending[j].PID })
	sort.Slice(snap.Active, func(i, j int) bool { return snap.Active[i].PID < snap.Active[j].PID })
	return snap
}
