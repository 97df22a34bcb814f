package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TranscriptMessage struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ConversationId string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_transcript_conv_seq"`
	Seq            int64          `gorm:"not null;uniqueIndex:idx_transcript_conv_seq"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Text           string         `gorm:"type:text;not null"`
	Citations      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null"`
	ArchivedAt     time.Time      `gorm:"autoCreateTime"`
}

func (TranscriptMessage) TableName() string {
	return "transcript_messages"
}
