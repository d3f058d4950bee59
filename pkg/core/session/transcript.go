package session

import (
	"strings"
	"time"
)

// ExportTranscript renders msgs as "ROLE: content" blocks separated by a
// blank line.
func ExportTranscript(msgs []ChatMessage) string {
	parts := make([]string, len(msgs))
	for i, m := range msgs {
		parts[i] = strings.ToUpper(m.Role) + ": " + m.Content
	}
	return strings.Join(parts, "\n\n")
}

// ParseTranscript reverses ExportTranscript. A line opens a new message only
// when it starts with a known role prefix, so content may contain blank
// lines.
func ParseTranscript(s string) []ChatMessage {
	var (
		out   []ChatMessage
		role  string
		lines []string
		open  bool
	)
	flush := func(separated bool) {
		if !open {
			return
		}
		if separated && len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		out = append(out, ChatMessage{Role: role, Content: strings.Join(lines, "\n")})
	}

	for _, line := range strings.Split(s, "\n") {
		if r, rest, ok := cutRole(line); ok {
			flush(true)
			role, lines, open = r, []string{rest}, true
			continue
		}
		if open {
			lines = append(lines, line)
		}
	}
	flush(false)
	return out
}

func cutRole(line string) (role, rest string, ok bool) {
	for _, r := range []string{RoleUser, RoleAssistant} {
		if rest, found := strings.CutPrefix(line, strings.ToUpper(r)+": "); found {
			return r, rest, true
		}
	}
	return "", "", false
}

// TranscriptFilename is the download name for a transcript exported at t.
func TranscriptFilename(t time.Time) string {
	return "chat_history_" + t.Format("20060102_150405") + ".txt"
}
