package capture

import (
	"context"

	"github.com/leonardotrapani/tapdeck/internal/watchlist"
)

// Tap is an OS-level handle onto one process's audio stream. A tap must be
// activated before a recorder can read from it and invalidated exactly once
// when the recording ends.
type Tap interface {
	Activate() error
	Invalidate()
	Target() string
}

// Recorder captures a tap's audio to a file. Start and Stop are not
// reentrant; the owning recording entry is the only caller.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() error
	FilePath() string
}

// Engine creates taps and recorders. The orchestrator only ever talks to this
// interface so tests can substitute scripted implementations.
type Engine interface {
	CreateTap(ctx context.Context, proc watchlist.RunningProcess) (Tap, error)
	NewRecorder(path string, tap Tap) Recorder
}

// Config holds the audio format the recorder asks the capture backend for.
type Config struct {
	SampleRate int
	Channels   int
	Format     string
}

func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		Format:     "s16",
	}
}
