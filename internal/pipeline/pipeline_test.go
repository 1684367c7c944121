package pipeline

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/leonardotrapani/tapdeck/internal/session"
	"github.com/leonardotrapani/tapdeck/internal/testutil"
	"github.com/leonardotrapani/tapdeck/internal/transcriber"
)

func prepareSession(t *testing.T) (*session.Store, session.Session) {
	t.Helper()
	store := session.NewStore(t.TempDir())
	sess, err := store.Prepare("Zoom", time.Date(2026, 8, 28, 10, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return store, sess
}

func TestRun_Success(t *testing.T) {
	store, sess := prepareSession(t)
	trans := testutil.NewMockTranscriber("we shipped the release")
	summ := testutil.NewMockSummarizer("## Overview\nrelease shipped")
	notifier := testutil.NewMockNotifier()

	p := New(store, trans, summ, notifier)
	endedAt := sess.StartedAt.Add(10 * time.Minute)
	p.Launch(sess, endedAt)
	p.Wait()

	text, err := os.ReadFile(sess.TranscriptPath)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	if string(text) != "we shipped the release" {
		t.Errorf("transcript = %q", text)
	}

	summary, err := os.ReadFile(sess.SummaryPath)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	if string(summary) != "## Overview\nrelease shipped" {
		t.Errorf("summary = %q", summary)
	}

	if !summ.WasCalled() {
		t.Errorf("summarizer never called")
	}
	if summ.LastMeta.AppName != "Zoom" || !summ.LastMeta.EndedAt.Equal(endedAt) {
		t.Errorf("unexpected metadata: %+v", summ.LastMeta)
	}
	if notifier.ErrorCount() != 0 {
		t.Errorf("unexpected errors: %v", notifier.Errors)
	}
	if len(notifier.Ready) != 1 {
		t.Errorf("expected one summary-ready notification, got %v", notifier.Ready)
	}
}

func TestRun_TranscriptionFailure(t *testing.T) {
	store, sess := prepareSession(t)
	trans := testutil.NewMockTranscriber("")
	trans.Err = transcriber.ErrNetwork
	summ := testutil.NewMockSummarizer("unused")
	notifier := testutil.NewMockNotifier()

	p := New(store, trans, summ, notifier)
	p.Launch(sess, sess.StartedAt.Add(time.Minute))
	p.Wait()

	if _, err := os.Stat(sess.TranscriptPath); !os.IsNotExist(err) {
		t.Errorf("transcript file should be absent")
	}
	if summ.WasCalled() {
		t.Errorf("summarization must not run without a transcript")
	}
	if notifier.ErrorCount() != 1 {
		t.Errorf("expected one error notification, got %v", notifier.Errors)
	}
}

func TestRun_SummarizationFailure(t *testing.T) {
	store, sess := prepareSession(t)
	trans := testutil.NewMockTranscriber("long discussion")
	summ := testutil.NewMockSummarizer("")
	summ.Err = errors.New("rate limited")
	notifier := testutil.NewMockNotifier()

	p := New(store, trans, summ, notifier)
	p.Launch(sess, sess.StartedAt.Add(time.Minute))
	p.Wait()

	// The transcript survives even though the summary failed.
	text, err := os.ReadFile(sess.TranscriptPath)
	if err != nil {
		t.Fatalf("transcript missing: %v", err)
	}
	if string(text) != "long discussion" {
		t.Errorf("transcript = %q", text)
	}
	if _, err := os.Stat(sess.SummaryPath); !os.IsNotExist(err) {
		t.Errorf("summary file should be absent")
	}
	if notifier.ErrorCount() != 1 {
		t.Errorf("expected one error notification, got %v", notifier.Errors)
	}
}

func TestLaunch_ConcurrentRuns(t *testing.T) {
	store := session.NewStore(t.TempDir())
	trans := testutil.NewMockTranscriber("text")
	summ := testutil.NewMockSummarizer("summary")
	p := New(store, trans, summ, testutil.NewMockNotifier())

	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		sess, err := store.Prepare("Zoom", base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		p.Launch(sess, base.Add(time.Duration(i+1)*time.Minute))
	}
	p.Wait()

	if trans.CallCount() != 5 {
		t.Errorf("expected 5 transcriptions, got %d", trans.CallCount())
	}
}
