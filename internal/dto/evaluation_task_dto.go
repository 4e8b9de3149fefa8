package dto

import (
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/google/uuid"
)

type UploadResponse struct {
	CVFilePath        string `json:"cv_file_path"`
	ProjectReportPath string `json:"project_report_path"`
}

type TaskResponse struct {
	ID     uuid.UUID        `json:"id"`
	Status model.TaskStatus `json:"status"`
}

type TaskResultResponse struct {
	ID        uuid.UUID               `json:"id"`
	Status    model.TaskStatus        `json:"status"`
	Result    *model.EvaluationResult `json:"result,omitempty"`
	Error     *string                 `json:"error,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type TaskListItem struct {
	ID             uuid.UUID        `json:"id"`
	Status         model.TaskStatus `json:"status"`
	CVFile         string           `json:"cv_file"`
	ProjectFile    string           `json:"project_file"`
	JobDescription string           `json:"job_description"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
