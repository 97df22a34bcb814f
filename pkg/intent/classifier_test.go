package intent

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name           string
		utterance      string
		hasContent     bool
		hasSelection   bool
		wantIntent     Intent
		wantConfidence float64
	}{
		{
			name:           "strong chinese pattern",
			utterance:      "幫我把筆記改短一點",
			hasContent:     true,
			wantIntent:     IntentNoteEdit,
			wantConfidence: 0.95,
		},
		{
			name:           "strong english pattern",
			utterance:      "Please rewrite my notebook in a formal tone",
			hasContent:     true,
			wantIntent:     IntentNoteEdit,
			wantConfidence: 0.95,
		},
		{
			name:           "two edit keywords",
			utterance:      "幫我把筆記縮短一點",
			hasContent:     true,
			wantIntent:     IntentNoteEdit,
			wantConfidence: 0.9,
		},
		{
			name:           "edit confidence is capped",
			utterance:      "summarize the notes",
			hasContent:     true,
			wantIntent:     IntentNoteEdit,
			wantConfidence: 0.95,
		},
		{
			name:           "note query",
			utterance:      "筆記內容是什麼",
			hasContent:     true,
			wantIntent:     IntentNoteQuery,
			wantConfidence: 0.7,
		},
		{
			name:           "english note query",
			utterance:      "what is in the note",
			hasContent:     true,
			wantIntent:     IntentNoteQuery,
			wantConfidence: 0.7,
		},
		{
			name:           "single edit keyword is ambiguous",
			utterance:      "我想討論這個摘要",
			hasContent:     true,
			wantIntent:     IntentClarify,
			wantConfidence: 0.5,
		},
		{
			name:           "selection keyword boosted by active selection",
			utterance:      "這段很重要",
			hasContent:     true,
			hasSelection:   true,
			wantIntent:     IntentNoteEdit,
			wantConfidence: 0.95,
		},
		{
			name:           "selection keyword without selection stays ambiguous",
			utterance:      "這段很重要",
			hasContent:     true,
			wantIntent:     IntentClarify,
			wantConfidence: 0.5,
		},
		{
			name:           "plain question with notebook",
			utterance:      "台北今天天氣如何？",
			hasContent:     true,
			wantIntent:     IntentChatQA,
			wantConfidence: 0.8,
		},
		{
			name:           "plain question without notebook",
			utterance:      "台北今天天氣如何？",
			wantIntent:     IntentChatQA,
			wantConfidence: 0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.utterance, tt.hasContent, tt.hasSelection)
			assert.Equal(t, tt.wantIntent, got.Intent)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
		})
	}
}

func TestClassifyPatternBeatsKeywordScore(t *testing.T) {
	c := NewClassifier()

	// "translate" is a single edit keyword, which on its own would ask for clarification
	got := c.Classify("translate this paragraph into French", true, false)
	assert.Equal(t, IntentNoteEdit, got.Intent)
	assert.InDelta(t, 0.95, got.Confidence, 1e-9)
	assert.Empty(t, got.ClarificationQuestion)

	// Same keyword, no structural match
	got = c.Classify("translate", true, false)
	assert.Equal(t, IntentClarify, got.Intent)
}

func TestClassifyWithoutNotebookIsAlwaysChat(t *testing.T) {
	c := NewClassifier()

	utterances := []string{
		"幫我把筆記改短一點",
		"rewrite the note",
		"筆記內容是什麼",
		"我想討論這個摘要",
		"這段很重要",
		"turn this into a bullet list",
		"",
	}

	for _, u := range utterances {
		for _, sel := range []bool{false, true} {
			got := c.Classify(u, false, sel)
			assert.Equal(t, IntentChatQA, got.Intent, "utterance %q selection=%v", u, sel)
			assert.False(t, got.Intent.IsNoteSpecific())
		}
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier()

	for _, u := range []string{"幫我把筆記縮短一點", "我想討論這個摘要", "hello", "這段很重要"} {
		first := c.Classify(u, true, true)
		second := c.Classify(u, true, true)
		assert.Equal(t, first, second)
	}
}

func TestClassifyClarificationQuestion(t *testing.T) {
	got := NewClassifier().Classify("我想討論這個摘要", true, false)
	assert.True(t, got.NeedsClarification())
	assert.Equal(t, DefaultClarificationQuestion, got.ClarificationQuestion)
	assert.Equal(t, 1, got.EditScore)

	custom := DefaultVocabulary()
	custom.ClarificationQuestion = "Edit the note, or just talk about it?"
	got = NewClassifier(WithVocabulary(custom)).Classify("我想討論這個摘要", true, false)
	assert.Equal(t, "Edit the note, or just talk about it?", got.ClarificationQuestion)
}

func TestClassifySelectionWeightIsTunable(t *testing.T) {
	c := NewClassifier(WithSelectionWeight(0))
	got := c.Classify("這段很重要", true, true)
	assert.Equal(t, IntentClarify, got.Intent)
	assert.Equal(t, 0, c.Thresholds().SelectionWeight)
}

func TestClassifyCustomVocabulary(t *testing.T) {
	vocab := Vocabulary{
		StrongEditPatterns: []*regexp.Regexp{regexp.MustCompile(`(?i)^fix\b`)},
		EditKeywords:       []string{"Tidy", "polish"},
		QueryKeywords:      []string{"recap"},
	}
	c := NewClassifier(WithVocabulary(vocab))

	assert.Equal(t, IntentNoteEdit, c.Classify("fix the typos", true, false).Intent)
	assert.Equal(t, IntentNoteEdit, c.Classify("tidy and POLISH it", true, false).Intent)
	assert.Equal(t, IntentNoteQuery, c.Classify("give me a recap", true, false).Intent)
	assert.Equal(t, IntentChatQA, c.Classify("rewrite the note", true, false).Intent)
}
