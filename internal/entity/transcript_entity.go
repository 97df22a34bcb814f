package entity

import (
	"time"

	"github.com/google/uuid"
)

type TranscriptCitation struct {
	DocId   string `json:"doc_id"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// TranscriptMessage is an archived conversation log entry
type TranscriptMessage struct {
	Id             uuid.UUID
	ConversationId string
	Seq            int64
	Role           string
	Text           string
	Citations      []TranscriptCitation
	CreatedAt      time.Time
	ArchivedAt     *time.Time
}
