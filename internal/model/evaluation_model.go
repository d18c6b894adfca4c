package model

import (
	"time"

	"github.com/google/uuid"
)

type Evaluation struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TaskId      string    `gorm:"type:varchar(32);uniqueIndex;not null"`
	FileName    string    `gorm:"type:varchar(255)"`
	JobName     string    `gorm:"type:varchar(200)"`
	Status      string    `gorm:"type:varchar(20);index;not null"`
	Error       string    `gorm:"type:text"`
	SubmittedAt time.Time `gorm:"index;not null"`
	StartedAt   *time.Time
	CompletedAt *time.Time
	ElapsedMs   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Evaluation) TableName() string {
	return "evaluations"
}
