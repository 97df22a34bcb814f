package implementation

import (
	"context"

	"ragify-be/internal/entity"
	"ragify-be/internal/mapper"
	"ragify-be/internal/model"
	"ragify-be/internal/repository/contract"
	"ragify-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TranscriptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TranscriptMapper
}

func NewTranscriptRepository(db *gorm.DB) contract.TranscriptRepository {
	return &TranscriptRepositoryImpl{
		db:     db,
		mapper: mapper.NewTranscriptMapper(),
	}
}

func (r *TranscriptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *TranscriptRepositoryImpl) CreateBulk(ctx context.Context, messages []*entity.TranscriptMessage) error {
	if len(messages) == 0 {
		return nil
	}

	models := make([]*model.TranscriptMessage, 0, len(messages))
	for _, msg := range messages {
		m, err := r.mapper.ToModel(msg)
		if err != nil {
			return err
		}
		models = append(models, m)
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "conversation_id"}, {Name: "seq"}},
			DoNothing: true,
		}).
		Create(models).Error
}

func (r *TranscriptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TranscriptMessage, error) {
	var models []*model.TranscriptMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	entities := make([]*entity.TranscriptMessage, 0, len(models))
	for _, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func (r *TranscriptRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TranscriptMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *TranscriptRepositoryImpl) DeleteByConversationId(ctx context.Context, conversationId string) error {
	return r.db.WithContext(ctx).Where("conversation_id = ?", conversationId).Delete(&model.TranscriptMessage{}).Error
}
