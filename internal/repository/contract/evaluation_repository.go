package contract

import (
	"context"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/repository/specification"
)

type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *entity.Evaluation) error
	Update(ctx context.Context, evaluation *entity.Evaluation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Evaluation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Evaluation, error)
}
