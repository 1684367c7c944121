package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// BuildSystemPrompt instructs the model to produce a structured markdown
// meeting summary.
func BuildSystemPrompt() string {
	prompt := "You are a meeting summarization assistant. You receive the transcript of a recorded meeting or call.\n\n"
	prompt += "Produce a markdown summary with these sections:\n"
	prompt += "- ## Overview: two or three sentences on what the meeting was about\n"
	prompt += "- ## Key Points: bullet list of the main topics and decisions\n"
	prompt += "- ## Action Items: bullet list of follow-ups with owners when named\n"

	prompt += "\nRules:\n"
	prompt += "- Use only information present in the transcript\n"
	prompt += "- Keep the same language as the transcript\n"
	prompt += "- Omit the Action Items section if there are none\n"
	prompt += "- Output ONLY the markdown summary, nothing else\n"

	return prompt
}

// BuildUserPrompt combines session metadata with the transcript text.
func BuildUserPrompt(transcript string, meta Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Application: %s\n", meta.AppName)
	fmt.Fprintf(&b, "Started: %s\n", meta.StartedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Ended: %s\n", meta.EndedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Duration: %s\n", meta.Duration().Round(time.Second))
	b.WriteString("\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
