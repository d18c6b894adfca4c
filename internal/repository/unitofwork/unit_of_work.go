package unitofwork

import (
	"context"

	"resume-optimizer/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	EvaluationRepository() contract.EvaluationRepository
}
