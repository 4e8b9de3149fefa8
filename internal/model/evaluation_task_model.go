package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskQueued     TaskStatus = "queued"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether the status is final. Terminal tasks are never
// mutated again; re-evaluation requires a new task.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// EvaluationTask is the lifecycle record of one evaluation request.
// Result is set iff the task completed, ErrorMessage iff it failed.
type EvaluationTask struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Status            TaskStatus        `gorm:"type:varchar(20);index" json:"status"`
	CVFilePath        string            `gorm:"type:text" json:"cv_file_path"`
	ProjectReportPath string            `gorm:"type:text" json:"project_report_path"`
	JobDescription    string            `gorm:"type:text" json:"job_description"`
	Result            *EvaluationResult `gorm:"type:jsonb;serializer:json" json:"result,omitempty"`
	ErrorMessage      *string           `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (t *EvaluationTask) TableName() string {
	return "evaluation_tasks"
}
