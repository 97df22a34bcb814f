package contract

import (
	"context"

	"ragify-be/internal/entity"
	"ragify-be/internal/repository/specification"
)

type TranscriptRepository interface {
	// CreateBulk inserts messages, skipping ones already archived (same conversation and seq)
	CreateBulk(ctx context.Context, messages []*entity.TranscriptMessage) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TranscriptMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByConversationId(ctx context.Context, conversationId string) error
}
