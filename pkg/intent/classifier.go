package intent

import (
	"fmt"
	"math"
	"strings"
)

// Classifier is a deterministic, rule-based intent classifier.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	vocab      Vocabulary
	thresholds Thresholds

	// Lower-cased copies of the keyword tables
	editKeywords      []string
	queryKeywords     []string
	selectionKeywords []string
}

// ClassifierOption customizes a Classifier
type ClassifierOption func(*Classifier)

// WithVocabulary swaps the keyword and pattern tables
func WithVocabulary(v Vocabulary) ClassifierOption {
	return func(c *Classifier) {
		c.vocab = v
	}
}

// WithThresholds swaps the score cut-offs
func WithThresholds(t Thresholds) ClassifierOption {
	return func(c *Classifier) {
		c.thresholds = t
	}
}

// WithSelectionWeight overrides only the selection keyword weight
func WithSelectionWeight(weight int) ClassifierOption {
	return func(c *Classifier) {
		c.thresholds.SelectionWeight = weight
	}
}

// NewClassifier creates a classifier with the default bilingual tables
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		vocab:      DefaultVocabulary(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.vocab.ClarificationQuestion == "" {
		c.vocab.ClarificationQuestion = DefaultClarificationQuestion
	}

	c.editKeywords = lowerAll(c.vocab.EditKeywords)
	c.queryKeywords = lowerAll(c.vocab.QueryKeywords)
	c.selectionKeywords = lowerAll(c.vocab.SelectionKeywords)
	return c
}

// Thresholds returns the cut-offs in use
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// Classify decides what the utterance asks for.
// Order is significant: strong patterns, then keyword scores, then the default.
// Without notebook content no note-specific intent is ever returned.
func (c *Classifier) Classify(utterance string, hasNotebookContent, hasSelection bool) Decision {
	t := c.thresholds

	// 1. Strong structural patterns win outright
	if hasNotebookContent {
		for _, pattern := range c.vocab.StrongEditPatterns {
			if pattern.MatchString(utterance) {
				return Decision{
					Intent:     IntentNoteEdit,
					Confidence: t.PatternConfidence,
					Reason:     fmt.Sprintf("strong pattern %q", pattern.String()),
				}
			}
		}
	}

	// 2. Keyword scoring
	lower := strings.ToLower(utterance)
	editScore := countHits(lower, c.editKeywords)
	queryScore := countHits(lower, c.queryKeywords)

	// Selection context raises the prior toward editing
	if hasSelection {
		editScore += countHits(lower, c.selectionKeywords) * t.SelectionWeight
	}

	// 3. Thresholds, all of which need a notebook to act on
	if hasNotebookContent {
		if editScore >= t.EditMinScore {
			return Decision{
				Intent:     IntentNoteEdit,
				Confidence: math.Min(t.EditBase+t.EditStep*float64(editScore), t.EditCap),
				EditScore:  editScore,
				QueryScore: queryScore,
				Reason:     "edit keywords",
			}
		}

		if queryScore >= t.QueryMinScore {
			return Decision{
				Intent:     IntentNoteQuery,
				Confidence: math.Min(t.QueryBase+t.QueryStep*float64(queryScore), t.QueryCap),
				EditScore:  editScore,
				QueryScore: queryScore,
				Reason:     "query keywords",
			}
		}

		if editScore == t.ClarifyScore {
			return Decision{
				Intent:                IntentClarify,
				Confidence:            t.ClarifyConfidence,
				ClarificationQuestion: c.vocab.ClarificationQuestion,
				EditScore:             editScore,
				QueryScore:            queryScore,
				Reason:                "single edit keyword",
			}
		}
	}

	// 4. Default
	reason := "no note signal"
	if !hasNotebookContent {
		reason = "notebook empty"
	}
	return Decision{
		Intent:     IntentChatQA,
		Confidence: t.ChatConfidence,
		EditScore:  editScore,
		QueryScore: queryScore,
		Reason:     reason,
	}
}

func countHits(lower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, strings.ToLower(w))
	}
	return out
}
