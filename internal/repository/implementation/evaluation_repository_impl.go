package implementation

import (
	"context"
	"errors"

	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/mapper"
	"resume-optimizer/internal/model"
	"resume-optimizer/internal/repository/contract"
	"resume-optimizer/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EvaluationMapper
}

func NewEvaluationRepository(db *gorm.DB) contract.EvaluationRepository {
	return &EvaluationRepositoryImpl{
		db:     db,
		mapper: mapper.NewEvaluationMapper(),
	}
}

func (r *EvaluationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EvaluationRepositoryImpl) Create(ctx context.Context, evaluation *entity.Evaluation) error {
	if evaluation.Id == uuid.Nil {
		evaluation.Id = uuid.New()
	}
	m := r.mapper.ToModel(evaluation)
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *EvaluationRepositoryImpl) Update(ctx context.Context, evaluation *entity.Evaluation) error {
	m := r.mapper.ToModel(evaluation)
	return r.db.WithContext(ctx).
		Model(&model.Evaluation{}).
		Where("task_id = ?", m.TaskId).
		Updates(map[string]interface{}{
			"file_name":    m.FileName,
			"job_name":     m.JobName,
			"submitted_at": m.SubmittedAt,
			"status":       m.Status,
			"error":        m.Error,
			"started_at":   m.StartedAt,
			"completed_at": m.CompletedAt,
			"elapsed_ms":   m.ElapsedMs,
		}).Error
}

func (r *EvaluationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Evaluation, error) {
	var m model.Evaluation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EvaluationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Evaluation, error) {
	var models []model.Evaluation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
