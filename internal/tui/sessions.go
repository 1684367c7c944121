package tui

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/tapdeck/internal/session"
)

// RenderSessions formats stored sessions for terminal output, newest first.
func RenderSessions(entries []session.Entry) string {
	if len(entries) == 0 {
		return StyleMuted.Render("No recorded sessions yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleHeader.Render(fmt.Sprintf("Recorded Sessions (%d)", len(entries))))
	b.WriteString("\n\n")

	lastDay := ""
	for _, e := range entries {
		day := e.Session.StartedAt.Format("2006-01-02")
		if day != lastDay {
			b.WriteString(StyleLabel.Render(day))
			b.WriteString("\n")
			lastDay = day
		}

		fmt.Fprintf(&b, "  %s  %s  %s\n",
			StyleMuted.Render(e.Session.StartedAt.Format("15:04:05")),
			e.Session.AppName,
			renderArtifacts(e))
	}

	return b.String()
}

func renderArtifacts(e session.Entry) string {
	var parts []string
	if e.HasAudio {
		parts = append(parts, StyleSuccess.Render("audio"))
	}
	if e.HasTranscript {
		parts = append(parts, StyleSuccess.Render("transcript"))
	}
	if e.HasSummary {
		parts = append(parts, StyleSuccess.Render("summary"))
	} else {
		parts = append(parts, StyleSubtle.Render("no summary"))
	}
	return strings.Join(parts, StyleSubtle.Render(" · "))
}
