package daemon

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/bus"
	"github.com/leonardotrapani/tapdeck/internal/capture"
	"github.com/leonardotrapani/tapdeck/internal/config"
	"github.com/leonardotrapani/tapdeck/internal/notify"
	"github.com/leonardotrapani/tapdeck/internal/orchestrator"
	"github.com/leonardotrapani/tapdeck/internal/pipeline"
	"github.com/leonardotrapani/tapdeck/internal/process"
	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/summarizer"
	"github.com/leonardotrapani/tapdeck/internal/transcriber"
)

// Daemon wires the collaborators together: config manager, process observer,
// activity monitor, capture engine, orchestrator and post-processing
// pipeline, plus the control socket.
type Daemon struct {
	manager  *config.Manager
	notifier notify.Notifier

	ctx    context.Context
	cancel context.CancelFunc

	orch     *orchestrator.Orchestrator
	observer *process.Observer
	post     *pipeline.Pipeline
}

func New() (*Daemon, error) {
	manager, err := config.NewManager()
	if err != nil {
		return nil, err
	}
	cfg := manager.GetConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	notifier := notify.ForType(cfg.Notifications.Type, cfg.Notifications.Enabled)

	baseDir := cfg.Storage.BaseDir
	if baseDir == "" {
		baseDir, err = session.DefaultBaseDir()
		if err != nil {
			return nil, err
		}
	}
	store := session.NewStore(baseDir)

	trans, err := transcriber.New(cfg.ToTranscriberConfig())
	if err != nil {
		return nil, err
	}
	summ, err := summarizer.New(cfg.ToSummarizerConfig())
	if err != nil {
		return nil, err
	}
	post := pipeline.New(store, trans, summ, notifier)

	engine := capture.NewPipewireEngine(cfg.ToCaptureConfig())
	monitor := process.NewPulseMonitor()

	apps, err := cfg.ToWatchedApps()
	if err != nil {
		return nil, err
	}
	observer := process.NewObserver(process.PSLister{}, apps, cfg.Polling.ProcessScan)

	orch := orchestrator.New(cfg.ToOrchestratorConfig(), monitor, engine, store, post, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		manager:  manager,
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
		orch:     orch,
		observer: observer,
		post:     post,
	}, nil
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	if err := capture.CheckPipewireAvailable(d.ctx); err != nil {
		log.Printf("daemon: %v", err)
	}
	if err := process.CheckPulseAvailable(d.ctx); err != nil {
		log.Printf("daemon: %v", err)
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		sig := <-sigCh
		log.Printf("daemon: received signal %v, shutting down gracefully", sig)
		d.cancel()
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	// Hot reload swaps the watch list without a restart.
	d.manager.OnChange(func(cfg *config.Config) {
		apps, err := cfg.ToWatchedApps()
		if err != nil {
			log.Printf("daemon: reloaded watch list invalid: %v", err)
			return
		}
		d.observer.SetWatchList(apps)
	})
	if err := d.manager.StartWatching(d.ctx); err != nil {
		log.Printf("daemon: config watching disabled: %v", err)
	}
	defer d.manager.Stop()

	d.orch.Run(d.ctx)
	go d.observer.Run(d.ctx)
	go d.pumpEvents()

	log.Printf("daemon: started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("daemon: shutdown requested")
				d.shutdown()
				return nil
			}
			log.Printf("daemon: accept error: %v", err)
			d.shutdown()
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

// pumpEvents forwards lifecycle events from the observer into the
// orchestrator.
func (d *Daemon) pumpEvents() {
	for ev := range d.observer.Events() {
		switch ev.Type {
		case process.Appeared:
			d.orch.Appeared(ev.Match)
		case process.Disappeared:
			d.orch.Disappeared(ev.Match)
		}
	}
}

// shutdown stops the orchestrator (flushing still-active recordings) and
// waits for in-flight post-processing so finished recordings still get
// transcribed.
func (d *Daemon) shutdown() {
	d.orch.Close()
	d.post.Wait()
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("daemon: client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}
	cmd := line[0]

	switch cmd {
	case bus.CmdStatus:
		snap := d.orch.State()
		fmt.Fprintf(c, "STATUS pending=%d active=%d\n", len(snap.Pending), len(snap.Active))
	case bus.CmdWatches:
		fmt.Fprint(c, FormatWatches(d.orch.State(), time.Now()))
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("daemon: unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// FormatWatches renders the orchestrator snapshot for the control socket,
// one line per entry.
func FormatWatches(snap orchestrator.Snapshot, now time.Time) string {
	if len(snap.Pending) == 0 && len(snap.Active) == 0 {
		return "OK nothing tracked\n"
	}

	var b strings.Builder
	for _, p := range snap.Pending {
		fmt.Fprintf(&b, "PENDING pid=%d app=%q since=%s\n",
			p.PID, p.AppName, now.Sub(p.Since).Round(time.Second))
	}
	for _, a := range snap.Active {
		fmt.Fprintf(&b, "ACTIVE pid=%d app=%q elapsed=%s\n",
			a.PID, a.AppName, a.Elapsed.Round(time.Second))
	}
	return b.String()
}
