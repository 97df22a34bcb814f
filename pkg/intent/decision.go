package intent

// Intent is the classified purpose of a user utterance
type Intent string

const (
	IntentNoteEdit  Intent = "NOTE_EDIT"  // Rewrite the notebook (or the selected part of it)
	IntentNoteQuery Intent = "NOTE_QUERY" // Ask about the notebook without changing it
	IntentChatQA    Intent = "CHAT_QA"    // General chat question
	IntentClarify   Intent = "CLARIFY"    // Ambiguous, ask the user before acting
)

// String returns the string form of the intent
func (i Intent) String() string {
	return string(i)
}

// IsNoteSpecific reports whether the intent only makes sense when a notebook exists
func (i Intent) IsNoteSpecific() bool {
	return i == IntentNoteEdit || i == IntentNoteQuery || i == IntentClarify
}

// Decision is the result of classifying one utterance.
// It is produced fresh each turn and never mutated afterwards.
type Decision struct {
	Intent                Intent  `json:"intent"`
	Confidence            float64 `json:"confidence"`
	ClarificationQuestion string  `json:"clarification_question,omitempty"` // Only set for CLARIFY

	// Diagnostics, used for logging only
	EditScore  int    `json:"edit_score"`
	QueryScore int    `json:"query_score"`
	Reason     string `json:"reason,omitempty"`
}

// NeedsClarification is true when the router must ask before dispatching
func (d Decision) NeedsClarification() bool {
	return d.Intent == IntentClarify
}
