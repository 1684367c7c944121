package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	dayLayout  = "2006-01-02"
	timeLayout = "15-04-05"

	audioFileName      = "audio.wav"
	transcriptFileName = "transcript.txt"
	summaryFileName    = "summary.md"
)

// Session is the on-disk unit for one recording: a directory with fixed
// artifact paths. Immutable once prepared.
type Session struct {
	AppName        string
	StartedAt      time.Time
	Dir            string
	AudioPath      string
	TranscriptPath string
	SummaryPath    string
}

// Store allocates session directories under a base directory, laid out as
// <base>/<day>/<time>-<sanitized-app>/.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultBaseDir is ~/.local/share/tapdeck/sessions (or the platform
// equivalent of the user data dir).
func DefaultBaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tapdeck", "sessions"), nil
}

// Prepare creates the directory for a new recording session and fixes its
// artifact paths. The directory exists on return; the files do not.
func (s *Store) Prepare(appName string, startedAt time.Time) (Session, error) {
	name := fmt.Sprintf("%s-%s", startedAt.Format(timeLayout), sanitizeAppName(appName))
	dir := filepath.Join(s.baseDir, startedAt.Format(dayLayout), name)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Session{}, fmt.Errorf("create session directory: %w", err)
	}

	return Session{
		AppName:        appName,
		StartedAt:      startedAt.Truncate(time.Second),
		Dir:            dir,
		AudioPath:      filepath.Join(dir, audioFileName),
		TranscriptPath: filepath.Join(dir, transcriptFileName),
		SummaryPath:    filepath.Join(dir, summaryFileName),
	}, nil
}

func (s *Store) SaveTranscript(text string, sess Session) error {
	if err := os.WriteFile(sess.TranscriptPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

func (s *Store) SaveSummary(text string, sess Session) error {
	if err := os.WriteFile(sess.SummaryPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func (s *Store) LoadTranscript(sess Session) (string, error) {
	data, err := os.ReadFile(sess.TranscriptPath)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	return string(data), nil
}

// Load reconstructs a session from its directory. The app name comes back
// sanitized and the start time is precise to the second.
func (s *Store) Load(dir string) (Session, error) {
	base := filepath.Base(dir)
	day := filepath.Base(filepath.Dir(dir))

	if len(base) < len(timeLayout)+1 || base[len(timeLayout)] != '-' {
		return Session{}, fmt.Errorf("malformed session directory name: %s", base)
	}
	startedAt, err := time.ParseInLocation(dayLayout+" "+timeLayout, day+" "+base[:len(timeLayout)], time.Local)
	if err != nil {
		return Session{}, fmt.Errorf("parse session timestamp from %s/%s: %w", day, base, err)
	}

	return Session{
		AppName:        base[len(timeLayout)+1:],
		StartedAt:      startedAt,
		Dir:            dir,
		AudioPath:      filepath.Join(dir, audioFileName),
		TranscriptPath: filepath.Join(dir, transcriptFileName),
		SummaryPath:    filepath.Join(dir, summaryFileName),
	}, nil
}

// Entry describes a stored session for listing purposes.
type Entry struct {
	Session       Session
	HasAudio      bool
	HasTranscript bool
	HasSummary    bool
}

// List returns all stored sessions, newest first. A missing base directory
// yields an empty list, not an error.
func (s *Store) List() ([]Entry, error) {
	days, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions directory: %w", err)
	}

	var entries []Entry
	for _, day := range days {
		if !day.IsDir() {
			continue
		}
		dayDir := filepath.Join(s.baseDir, day.Name())
		dirs, err := os.ReadDir(dayDir)
		if err != nil {
			continue
		}
		for _, d := range dirs {
			if !d.IsDir() {
				continue
			}
			sess, err := s.Load(filepath.Join(dayDir, d.Name()))
			if err != nil {
				continue
			}
			entries = append(entries, Entry{
				Session:       sess,
				HasAudio:      fileExists(sess.AudioPath),
				HasTranscript: fileExists(sess.TranscriptPath),
				HasSummary:    fileExists(sess.SummaryPath),
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Session.StartedAt.After(entries[j].Session.StartedAt)
	})
	return entries, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// sanitizeAppName lowercases the name and keeps only [a-z0-9], collapsing
// everything else into single dashes.
func sanitizeAppName(name string) string {
	var b strings.Builder
	lastDash := true // trims leading dashes
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if out == "" {
		return "session"
	}
	return out
}
