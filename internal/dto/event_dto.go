package dto

import "ragify-be/pkg/conversation"

// TurnMessage is the payload of the in-process conversation.turns topic
type TurnMessage struct {
	ConversationId string                 `json:"conversation_id"`
	Route          conversation.Route     `json:"route"`
	Failed         bool                   `json:"failed"`
	Messages       []conversation.Message `json:"messages"`
}

// FeedFrame is pushed to websocket subscribers of a conversation
type FeedFrame struct {
	Type           string                `json:"type"`
	ConversationId string                `json:"conversation_id"`
	Message        *conversation.Message `json:"message,omitempty"`
	Data           map[string]any        `json:"data,omitempty"`
}

const (
	FrameMessage         = "message"
	FrameNotebookUpdated = "notebook_updated"
)
