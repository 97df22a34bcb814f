package chat

import (
	"strings"

	"ragify-be/pkg/conversation"
)

const (
	noHistory             = "No history yet."
	assistantContextWords = 25
	// ResponseWordLimit caps the words of a generated answer
	ResponseWordLimit = 1000
)

// BuildContext renders history as USER:/SYSTEM: lines. Assistant turns are cut to
// their first 25 words so long answers do not crowd the prompt.
func BuildContext(history []conversation.Message) string {
	if len(history) == 0 {
		return noHistory
	}

	lines := make([]string, 0, len(history))
	for _, m := range history {
		role := "USER"
		text := m.Text
		if m.Role != conversation.RoleUser {
			role = "SYSTEM"
		}
		if m.Role == conversation.RoleAssistant {
			words := strings.Fields(text)
			if len(words) > assistantContextWords {
				words = words[:assistantContextWords]
			}
			text = strings.Join(words, " ") + " ..."
		}
		lines = append(lines, role+": "+text)
	}
	return strings.Join(lines, "\n")
}

func formatPTKBList(facts []string, empty string) string {
	if len(facts) == 0 {
		return empty
	}
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = "- " + f
	}
	return strings.Join(lines, "\n")
}

// afterLabel returns the text after the first ':' when label occurs anywhere in s
func afterLabel(s, label string) (string, bool) {
	if !strings.Contains(strings.ToLower(s), label) {
		return "", false
	}
	_, rest, found := strings.Cut(s, ":")
	if !found {
		return "", true
	}
	return strings.TrimSpace(rest), true
}

// ParseNewPTKB reads "ptkb: <fact>" and returns "" for "nope" or malformed answers
func ParseNewPTKB(raw string) string {
	fact, ok := afterLabel(raw, "ptkb:")
	if !ok || strings.EqualFold(fact, "nope") {
		return ""
	}
	return fact
}

// ParseRelevantPTKB reads a "ptkb:" header followed by one fact per line
func ParseRelevantPTKB(raw string) []string {
	body, ok := afterLabel(raw, "ptkb:")
	if !ok || body == "" || strings.EqualFold(body, "nope") {
		return nil
	}

	var facts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "- "))
		if line == "" || strings.EqualFold(line, "nope") {
			continue
		}
		facts = append(facts, line)
	}
	return facts
}

// ParseResponse strips the "response:" label the response prompt asks for
func ParseResponse(raw string) string {
	if text, ok := afterLabel(raw, "response:"); ok {
		return text
	}
	return strings.TrimSpace(raw)
}

// TruncateWords keeps the first limit words and marks the cut with "..."
func TruncateWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return text
	}
	return strings.Join(words[:limit], " ") + "..."
}
