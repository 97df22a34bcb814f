package intent

import "strings"

// Resolver interprets a short reply to a pending clarification question
type Resolver struct {
	affirmatives []string
	negatives    []string
}

// NewResolver creates a resolver over the given reply tables
func NewResolver(v ReplyVocabulary) *Resolver {
	return &Resolver{
		affirmatives: lowerAll(v.EditAffirmatives),
		negatives:    lowerAll(v.DiscussNegatives),
	}
}

// NewDefaultResolver creates a resolver over the bilingual reply tables
func NewDefaultResolver() *Resolver {
	return NewResolver(DefaultReplyVocabulary())
}

// Resolve returns NOTE_EDIT or CHAT_QA when the reply answers the question.
// ok is false when the reply is not recognisable as an answer; the caller then
// treats it as a fresh utterance.
//
// Tokens match as plain substrings ("nope" answers no, "editing" answers yes).
// Affirmatives are checked first. An affirmative that only occurs inside a
// longer negative phrase ("不是", "不修改", "don't edit") does not count.
func (r *Resolver) Resolve(utterance string) (resolved Intent, ok bool) {
	lower := strings.ToLower(utterance)

	var negSpans [][2]int
	for _, word := range r.negatives {
		negSpans = append(negSpans, findToken(lower, word)...)
	}

	for _, word := range r.affirmatives {
		for _, span := range findToken(lower, word) {
			if !covered(span, negSpans) {
				return IntentNoteEdit, true
			}
		}
	}

	if len(negSpans) > 0 {
		return IntentChatQA, true
	}

	return "", false
}

// findToken returns every [start,end) occurrence of token in s
func findToken(s, token string) [][2]int {
	var spans [][2]int
	if token == "" {
		return spans
	}
	for offset := 0; offset < len(s); {
		idx := strings.Index(s[offset:], token)
		if idx < 0 {
			break
		}
		start := offset + idx
		spans = append(spans, [2]int{start, start + len(token)})
		offset = start + 1
	}
	return spans
}

func covered(span [2]int, others [][2]int) bool {
	for _, o := range others {
		if o[0] <= span[0] && span[1] <= o[1] && (o[1]-o[0]) > (span[1]-span[0]) {
			return true
		}
	}
	return false
}
