package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/config"
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultJobDescription = "Backend Developer position"

// TaskRepository is the persistence contract for evaluation tasks. The
// usecase is the only writer of status/result/error.
type TaskRepository interface {
	CreateTask(task *model.EvaluationTask) error
	FindTaskByID(id string) (*model.EvaluationTask, error)
	MarkProcessing(id string) error
	CompleteTask(id string, result *model.EvaluationResult) error
	FailTask(id string, message string) error
	ListTasks(offset, limit int) ([]model.EvaluationTask, int64, error)
	DeleteTask(id string) error
}

// Evaluator runs the evaluation steps over the extracted texts.
type Evaluator interface {
	Evaluate(ctx context.Context, cvText, projectText, jobDescription string) (*model.EvaluationResult, error)
}

// TextExtractor reads a stored document into plain text.
type TextExtractor func(path string) (string, error)

// EvaluationUsecase owns the task state machine:
// queued -> processing -> {completed, failed}. Terminal states are never
// left again.
type EvaluationUsecase struct {
	tasks    TaskRepository
	pipeline Evaluator
	extract  TextExtractor
	cfg      *config.PipelineConfig
	log      *zap.Logger

	// chance and sleep exist so tests can make fault injection
	// deterministic.
	chance func() float64
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewEvaluationUsecase(tasks TaskRepository, pipeline Evaluator, extract TextExtractor, cfg *config.PipelineConfig, log *zap.Logger) *EvaluationUsecase {
	return &EvaluationUsecase{
		tasks:    tasks,
		pipeline: pipeline,
		extract:  extract,
		cfg:      cfg,
		log:      log,
		chance:   rand.Float64,
		sleep:    sleepCtx,
	}
}

// Submit creates a queued task and returns its id. Execution is triggered
// separately by the dispatch queue; the caller never blocks on evaluation.
func (uc *EvaluationUsecase) Submit(cvPath, reportPath, jobDescription string) (string, error) {
	if jobDescription == "" {
		jobDescription = defaultJobDescription
	}

	task := &model.EvaluationTask{
		ID:                uuid.New(),
		Status:            model.TaskQueued,
		CVFilePath:        cvPath,
		ProjectReportPath: reportPath,
		JobDescription:    jobDescription,
	}
	if err := uc.tasks.CreateTask(task); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}

	uc.log.Info("evaluation task created", zap.String("task_id", task.ID.String()))
	return task.ID.String(), nil
}

// Run executes the full pipeline for one task. The processing transition is
// persisted before any AI work so pollers see the intermediate state. Any
// error escaping the pipeline lands the task in failed with its message
// recorded; the error is also returned so the queue worker can log it, but
// a failed task is terminal and never retried.
func (uc *EvaluationUsecase) Run(ctx context.Context, taskID string) error {
	if err := uc.tasks.MarkProcessing(taskID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	result, err := uc.execute(ctx, taskID)
	if err != nil {
		uc.log.Error("evaluation failed", zap.String("task_id", taskID), zap.Error(err))
		if failErr := uc.tasks.FailTask(taskID, err.Error()); failErr != nil {
			uc.log.Error("could not record task failure", zap.String("task_id", taskID), zap.Error(failErr))
		}
		return err
	}

	if err := uc.tasks.CompleteTask(taskID, result); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	uc.log.Info("evaluation completed", zap.String("task_id", taskID))
	return nil
}

func (uc *EvaluationUsecase) execute(ctx context.Context, taskID string) (*model.EvaluationResult, error) {
	task, err := uc.tasks.FindTaskByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("load task: %w", err)
	}

	if err := uc.injectChaos(ctx); err != nil {
		return nil, err
	}

	cvText, err := uc.extract(task.CVFilePath)
	if err != nil {
		return nil, fmt.Errorf("extract cv text: %w", err)
	}
	projectText, err := uc.extract(task.ProjectReportPath)
	if err != nil {
		return nil, fmt.Errorf("extract project report text: %w", err)
	}

	return uc.pipeline.Evaluate(ctx, cvText, projectText, task.JobDescription)
}

func (uc *EvaluationUsecase) GetResult(id string) (*model.EvaluationTask, error) {
	return uc.tasks.FindTaskByID(id)
}

func (uc *EvaluationUsecase) ListTasks(offset, limit int) ([]model.EvaluationTask, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.tasks.ListTasks(offset, limit)
}

// DeleteTask removes the task record and, best-effort, its input files. A
// missing file never prevents the record deletion.
func (uc *EvaluationUsecase) DeleteTask(id string) error {
	task, err := uc.tasks.FindTaskByID(id)
	if err != nil {
		return err
	}

	for _, path := range []string{task.CVFilePath, task.ProjectReportPath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			uc.log.Warn("could not remove task file", zap.String("task_id", id), zap.String("path", path), zap.Error(err))
		}
	}

	return uc.tasks.DeleteTask(id)
}

// injectChaos reproduces the original system's simulated processing delay
// and random transient failures. Disabled unless PIPELINE_CHAOS_ENABLED is
// set; intended for demos and failure-path testing.
func (uc *EvaluationUsecase) injectChaos(ctx context.Context) error {
	if !uc.cfg.ChaosEnabled {
		return nil
	}

	delay := time.Duration(2+uc.chance()*6) * time.Second
	if err := uc.sleep(ctx, delay); err != nil {
		return err
	}

	if uc.chance() < uc.cfg.ChaosFailureRate {
		failures := []string{
			"Gemini API rate limit exceeded",
			"Network timeout during AI processing",
			"Temporary service unavailable",
		}
		return errors.New(failures[int(uc.chance()*float64(len(failures)))%len(failures)])
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
