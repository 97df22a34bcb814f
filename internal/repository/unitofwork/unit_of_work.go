package unitofwork

import (
	"context"

	"ragify-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TranscriptRepository() contract.TranscriptRepository
}
