package mapper

import (
	"encoding/json"
	"time"

	"ragify-be/internal/entity"
	"ragify-be/internal/model"
	"ragify-be/pkg/conversation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TranscriptMapper struct{}

func NewTranscriptMapper() *TranscriptMapper {
	return &TranscriptMapper{}
}

func (m *TranscriptMapper) FromConversation(conversationId string, msg conversation.Message) *entity.TranscriptMessage {
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		id = uuid.New()
	}

	var citations []entity.TranscriptCitation
	for _, c := range msg.Citations {
		citations = append(citations, entity.TranscriptCitation{DocId: c.DocID, Title: c.Title, Snippet: c.Snippet})
	}

	return &entity.TranscriptMessage{
		Id:             id,
		ConversationId: conversationId,
		Seq:            msg.Seq,
		Role:           string(msg.Role),
		Text:           msg.Text,
		Citations:      citations,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *TranscriptMapper) ToConversation(e *entity.TranscriptMessage) conversation.Message {
	msg := conversation.Message{
		ID:        e.Id.String(),
		Seq:       e.Seq,
		Role:      conversation.Role(e.Role),
		Text:      e.Text,
		CreatedAt: e.CreatedAt,
	}
	for _, c := range e.Citations {
		msg.Citations = append(msg.Citations, conversation.Citation{DocID: c.DocId, Title: c.Title, Snippet: c.Snippet})
	}
	return msg
}

func (m *TranscriptMapper) ToModel(e *entity.TranscriptMessage) (*model.TranscriptMessage, error) {
	if e == nil {
		return nil, nil
	}

	var citations datatypes.JSON
	if len(e.Citations) > 0 {
		raw, err := json.Marshal(e.Citations)
		if err != nil {
			return nil, err
		}
		citations = datatypes.JSON(raw)
	}

	return &model.TranscriptMessage{
		Id:             e.Id,
		ConversationId: e.ConversationId,
		Seq:            e.Seq,
		Role:           e.Role,
		Text:           e.Text,
		Citations:      citations,
		CreatedAt:      e.CreatedAt,
	}, nil
}

func (m *TranscriptMapper) ToEntity(t *model.TranscriptMessage) (*entity.TranscriptMessage, error) {
	if t == nil {
		return nil, nil
	}

	var citations []entity.TranscriptCitation
	if len(t.Citations) > 0 {
		if err := json.Unmarshal(t.Citations, &citations); err != nil {
			return nil, err
		}
	}

	var archivedAt *time.Time
	if !t.ArchivedAt.IsZero() {
		at := t.ArchivedAt
		archivedAt = &at
	}

	return &entity.TranscriptMessage{
		Id:             t.Id,
		ConversationId: t.ConversationId,
		Seq:            t.Seq,
		Role:           t.Role,
		Text:           t.Text,
		Citations:      citations,
		CreatedAt:      t.CreatedAt,
		ArchivedAt:     archivedAt,
	}, nil
}
