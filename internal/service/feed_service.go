package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"ragify-be/internal/dto"
	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/events"
	pktNats "ragify-be/pkg/nats"
)

const (
	notebookRelayPattern = "notebook.>"
	notebookRelayDurable = "ws-notebook-relay"
)

// Broadcaster delivers a frame to every websocket watching a conversation
type Broadcaster interface {
	SendToConversation(conversationID string, payload []byte)
}

// EventSubscriber is the part of the NATS subscriber the relay needs
type EventSubscriber interface {
	Subscribe(ctx context.Context, pattern, durableName string, handler pktNats.EventHandler) error
}

type IFeedService interface {
	MessageAppended(conversationID string, msg conversation.Message)
	// NotebookChanged pushes a notebook frame unless the NATS relay will deliver it
	NotebookChanged(evt events.Event)
	// Relay starts delivering notebook events from the bus to websocket clients
	Relay(ctx context.Context, sub EventSubscriber) error
}

type feedService struct {
	broadcaster Broadcaster
	logger      logger.ILogger
	relaying    atomic.Bool
}

func NewFeedService(broadcaster Broadcaster, log logger.ILogger) IFeedService {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &feedService{broadcaster: broadcaster, logger: log}
}

func (f *feedService) MessageAppended(conversationID string, msg conversation.Message) {
	f.send(dto.FeedFrame{
		Type:           dto.FrameMessage,
		ConversationId: conversationID,
		Message:        &msg,
	})
}

func (f *feedService) NotebookChanged(evt events.Event) {
	if f.relaying.Load() {
		return
	}
	f.pushNotebookFrame(evt)
}

func (f *feedService) Relay(ctx context.Context, sub EventSubscriber) error {
	err := sub.Subscribe(ctx, notebookRelayPattern, notebookRelayDurable, func(_ context.Context, evt events.Event) error {
		f.pushNotebookFrame(evt)
		return nil
	})
	if err != nil {
		return err
	}
	f.relaying.Store(true)
	return nil
}

func (f *feedService) pushNotebookFrame(evt events.Event) {
	payload := evt.Payload()
	id, _ := payload["notebook_id"].(string)
	if id == "" {
		f.logger.Warn("Feed", "Notebook event without notebook id", map[string]interface{}{"type": evt.EventType()})
		return
	}

	data := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		data[k] = v
	}
	data["event"] = evt.EventType()

	// Notebook ids are conversation ids
	f.send(dto.FeedFrame{
		Type:           dto.FrameNotebookUpdated,
		ConversationId: id,
		Data:           data,
	})
}

func (f *feedService) send(frame dto.FeedFrame) {
	if f.broadcaster == nil {
		return
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		f.logger.Error("Feed", "Failed to encode frame", map[string]interface{}{"error": err.Error()})
		return
	}
	f.broadcaster.SendToConversation(frame.ConversationId, raw)
}
