package dto

import (
	"time"

	"ragify-be/pkg/conversation"
	"ragify-be/pkg/intent"
)

type CreateConversationRequest struct {
	SelectedDocIds []string `json:"selected_doc_ids" validate:"omitempty,dive,required"`
	// Content seeds the conversation's notebook
	NotebookContent string `json:"notebook_content"`
}

type CreateConversationResponse struct {
	Id        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	Id        string `json:"-"`
	Utterance string `json:"utterance" validate:"required,max=4000"`
}

type SendMessageResponse struct {
	Decision *intent.Decision     `json:"decision,omitempty"`
	Resolved intent.Intent        `json:"resolved,omitempty"`
	Route    conversation.Route   `json:"route"`
	Failed   bool                 `json:"failed"`
	Scoped   bool                 `json:"scoped,omitempty"`
	State    conversation.State   `json:"state"`
	Sent     conversation.Message `json:"sent"`
	Reply    conversation.Message `json:"reply"`
}

type MessagesResponse struct {
	Id       string                 `json:"id"`
	Messages []conversation.Message `json:"messages"`
}

type ConversationStateResponse struct {
	Id              string             `json:"id"`
	State           conversation.State `json:"state"`
	PendingQuestion string             `json:"pending_question,omitempty"`
	PendingMessage  string             `json:"pending_message,omitempty"`
	InFlight        bool               `json:"in_flight"`
	SelectedDocIds  []string           `json:"selected_doc_ids"`
	PTKB            []string           `json:"ptkb"`
	ChatSessionId   string             `json:"chat_session_id,omitempty"`
}

type SetDocumentsRequest struct {
	Id             string   `json:"-"`
	SelectedDocIds []string `json:"selected_doc_ids" validate:"omitempty,max=50,dive,required"`
}

type SetDocumentsResponse struct {
	SelectedDocIds []string `json:"selected_doc_ids"`
}

type TranscriptResponse struct {
	Id       string                 `json:"id"`
	Messages []conversation.Message `json:"messages"`
	Total    int64                  `json:"total"`
}
