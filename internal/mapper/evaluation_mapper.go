package mapper

import (
	"resume-optimizer/internal/entity"
	"resume-optimizer/internal/model"
)

type EvaluationMapper struct{}

func NewEvaluationMapper() *EvaluationMapper {
	return &EvaluationMapper{}
}

func (m *EvaluationMapper) ToEntity(e *model.Evaluation) *entity.Evaluation {
	if e == nil {
		return nil
	}
	return &entity.Evaluation{
		Id:          e.Id,
		TaskId:      e.TaskId,
		FileName:    e.FileName,
		JobName:     e.JobName,
		Status:      entity.TaskStatus(e.Status),
		Error:       e.Error,
		SubmittedAt: e.SubmittedAt,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		ElapsedMs:   e.ElapsedMs,
	}
}

func (m *EvaluationMapper) ToModel(e *entity.Evaluation) *model.Evaluation {
	if e == nil {
		return nil
	}
	return &model.Evaluation{
		Id:          e.Id,
		TaskId:      e.TaskId,
		FileName:    e.FileName,
		JobName:     e.JobName,
		Status:      string(e.Status),
		Error:       e.Error,
		SubmittedAt: e.SubmittedAt,
		StartedAt:   e.StartedAt,
		CompletedAt: e.CompletedAt,
		ElapsedMs:   e.ElapsedMs,
	}
}

func (m *EvaluationMapper) ToEntities(models []model.Evaluation) []*entity.Evaluation {
	out := make([]*entity.Evaluation, 0, len(models))
	for i := range models {
		out = append(out, m.ToEntity(&models[i]))
	}
	return out
}
