package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/notify"
	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/summarizer"
	"github.com/leonardotrapani/tapdeck/internal/transcriber"
)

// Pipeline runs the transcribe-then-summarize post-processing for finished
// recordings. Runs are independent of each other and of the orchestrator's
// state machine: launching one never feeds back into pending/active tracking.
type Pipeline struct {
	store       *session.Store
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	notifier    notify.Notifier

	wg sync.WaitGroup
}

func New(store *session.Store, t transcriber.Transcriber, s summarizer.Summarizer, n notify.Notifier) *Pipeline {
	if n == nil {
		n = notify.Nop{}
	}
	return &Pipeline{
		store:       store,
		transcriber: t,
		summarizer:  s,
		notifier:    n,
	}
}

// Launch starts a detached run for one completed session. The run uses its
// own background context so orchestrator teardown does not cancel work on
// recordings that already stopped.
func (p *Pipeline) Launch(sess session.Session, endedAt time.Time) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run(context.Background(), sess, endedAt)
	}()
}

// Wait blocks until all in-flight runs finish. Shutdown helper; the daemon
// calls it so transcriptions of already-stopped recordings can complete.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, sess session.Session, endedAt time.Time) {
	log.Printf("pipeline: transcribing %s", sess.AudioPath)

	text, err := p.transcriber.Transcribe(ctx, sess.AudioPath)
	if err != nil {
		log.Printf("pipeline: transcription failed for %s: %v", sess.Dir, err)
		p.notifier.Error("Transcription failed", err.Error())
		return
	}

	if err := p.store.SaveTranscript(text, sess); err != nil {
		log.Printf("pipeline: %v", err)
		p.notifier.Error("Transcription failed", err.Error())
		return
	}

	meta := summarizer.Metadata{
		AppName:   sess.AppName,
		StartedAt: sess.StartedAt,
		EndedAt:   endedAt,
	}

	log.Printf("pipeline: summarizing %s session (%s)", sess.AppName, meta.Duration().Round(time.Second))

	summary, err := p.summarizer.Summarize(ctx, text, meta)
	if err != nil {
		log.Printf("pipeline: summarization failed for %s: %v", sess.Dir, err)
		p.notifier.Error("Summarization failed", err.Error())
		return
	}

	if err := p.store.SaveSummary(summary, sess); err != nil {
		log.Printf("pipeline: %v", err)
		p.notifier.Error("Summarization failed", err.Error())
		return
	}

	log.Printf("pipeline: session complete: %s", sess.Dir)
	p.notifier.SummaryReady(sess.AppName)
}
