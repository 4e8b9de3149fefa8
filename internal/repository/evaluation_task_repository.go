package repository

import (
	"errors"
	"fmt"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned when a status update does not match the
// queued -> processing -> {completed, failed} state machine, including any
// attempt to mutate a terminal task.
var ErrInvalidTransition = errors.New("invalid task status transition")

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

func (r *EvaluationRepository) CreateTask(task *model.EvaluationTask) error {
	return r.db.Create(task).Error
}

func (r *EvaluationRepository) FindTaskByID(id string) (*model.EvaluationTask, error) {
	var task model.EvaluationTask
	err := r.db.First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// MarkProcessing moves a queued task to processing. The status guard in the
// WHERE clause makes the transition a single conditional write, so a task
// can never be picked up twice or resurrected from a terminal state.
func (r *EvaluationRepository) MarkProcessing(id string) error {
	res := r.db.Model(&model.EvaluationTask{}).
		Where("id = ? AND status = ?", id, model.TaskQueued).
		Update("status", model.TaskProcessing)
	return r.transitionError(res, id)
}

// CompleteTask atomically records the result together with the completed
// status.
func (r *EvaluationRepository) CompleteTask(id string, result *model.EvaluationResult) error {
	res := r.db.Model(&model.EvaluationTask{}).
		Where("id = ? AND status = ?", id, model.TaskProcessing).
		Updates(&model.EvaluationTask{
			Status: model.TaskCompleted,
			Result: result,
		})
	return r.transitionError(res, id)
}

// FailTask atomically records the error message together with the failed
// status. Failed is terminal; retrying requires a new task.
func (r *EvaluationRepository) FailTask(id string, message string) error {
	res := r.db.Model(&model.EvaluationTask{}).
		Where("id = ? AND status = ?", id, model.TaskProcessing).
		Updates(&model.EvaluationTask{
			Status:       model.TaskFailed,
			ErrorMessage: &message,
		})
	return r.transitionError(res, id)
}

func (r *EvaluationRepository) transitionError(res *gorm.DB, id string) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: task %s", ErrInvalidTransition, id)
	}
	return nil
}

func (r *EvaluationRepository) ListTasks(offset, limit int) ([]model.EvaluationTask, int64, error) {
	var tasks []model.EvaluationTask
	var total int64

	if err := r.db.Model(&model.EvaluationTask{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tasks).Error
	return tasks, total, err
}

func (r *EvaluationRepository) DeleteTask(id string) error {
	res := r.db.Delete(&model.EvaluationTask{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
