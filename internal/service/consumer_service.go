package service

import (
	"context"
	"encoding/json"

	"ragify-be/internal/dto"
	"ragify-be/internal/entity"
	"ragify-be/internal/mapper"
	"ragify-be/internal/pkg/logger"
	"ragify-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService archives finished turns from the in-process topic
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.TranscriptMapper
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		mapper:     mapper.NewTranscriptMapper(),
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to unmarshal turn", map[string]interface{}{
			"message_uuid": msg.UUID,
			"error":        err.Error(),
		})
		msg.Ack() // a malformed payload will never succeed
		return
	}

	rows := make([]*entity.TranscriptMessage, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		if m.ID == "" {
			continue
		}
		rows = append(rows, cs.mapper.FromConversation(payload.ConversationId, m))
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to begin transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.TranscriptRepository().CreateBulk(ctx, rows); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to archive turn", map[string]interface{}{
			"conversation_id": payload.ConversationId,
			"error":           err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		cs.logger.Error("ARCHIVE", "Failed to commit transaction", map[string]interface{}{"error": err.Error()})
		msg.Nack()
		return
	}

	cs.logger.Debug("ARCHIVE", "Turn archived", map[string]interface{}{
		"conversation_id": payload.ConversationId,
		"route":           payload.Route,
		"messages":        len(rows),
	})
	msg.Ack()
}
