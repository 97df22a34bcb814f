package intent

import (
	"regexp"
	"strings"
)

// StripRule removes one framing phrase from an utterance.
// Each rule is applied at most once, to the first match only, so the
// politeness rules drop a single leading prefix ("請幫我…" keeps "幫我").
type StripRule struct {
	Name    string
	Pattern *regexp.Regexp
}

var defaultStripRules = []StripRule{
	{Name: "zh-politeness", Pattern: regexp.MustCompile(`^\s*(?:請|幫我|麻煩你?|可以)\s*`)},
	{Name: "en-politeness", Pattern: regexp.MustCompile(`(?i)^\s*(?:please|help me(?: to)?|can you|could you)[\s,]+`)},
	{Name: "zh-ba-reference", Pattern: regexp.MustCompile(`把(?:筆記|選取的|選中的|這段|那段)(?:文字|內容)?`)},
	{Name: "zh-jiang-reference", Pattern: regexp.MustCompile(`將(?:筆記|選取的|選中的|這段|那段)(?:文字|內容)?`)},
	{Name: "en-selection-reference", Pattern: regexp.MustCompile(`(?i)\bthe\s+selected\s+(?:text|part)\b\s*`)},
}

// DefaultStripRules returns the stock ordered rule list
func DefaultStripRules() []StripRule {
	return append([]StripRule(nil), defaultStripRules...)
}

// Extractor turns a conversational edit request into the literal instruction
// forwarded to the notebook editor.
type Extractor struct {
	rules []StripRule
}

// NewExtractor creates an extractor; with no rules the default list is used
func NewExtractor(rules ...StripRule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultStripRules()
	}
	return &Extractor{rules: rules}
}

// Extract strips the framing phrases in order and returns what is left.
// An empty remainder is never forwarded: the original utterance is returned instead.
func (e *Extractor) Extract(utterance string) string {
	instruction := utterance
	for _, rule := range e.rules {
		instruction = replaceFirst(rule.Pattern, instruction)
	}

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return utterance
	}
	return instruction
}

func replaceFirst(re *regexp.Regexp, s string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + s[loc[1]:]
}
