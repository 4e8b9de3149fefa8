package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/config"
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/aryasetiadi/cv-evaluator/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memoryTaskRepository mimics the status-guarded transitions of the real
// repository so the state machine can be exercised without a database.
type memoryTaskRepository struct {
	mu    sync.Mutex
	tasks map[string]*model.EvaluationTask
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: map[string]*model.EvaluationTask{}}
}

func (r *memoryTaskRepository) CreateTask(task *model.EvaluationTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID.String()] = &copied
	return nil
}

func (r *memoryTaskRepository) FindTaskByID(id string) (*model.EvaluationTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memoryTaskRepository) MarkProcessing(id string) error {
	return r.transition(id, model.TaskQueued, func(t *model.EvaluationTask) {
		t.Status = model.TaskProcessing
	})
}

func (r *memoryTaskRepository) CompleteTask(id string, result *model.EvaluationResult) error {
	return r.transition(id, model.TaskProcessing, func(t *model.EvaluationTask) {
		t.Status = model.TaskCompleted
		t.Result = result
	})
}

func (r *memoryTaskRepository) FailTask(id string, message string) error {
	return r.transition(id, model.TaskProcessing, func(t *model.EvaluationTask) {
		t.Status = model.TaskFailed
		t.ErrorMessage = &message
	})
}

func (r *memoryTaskRepository) transition(id string, from model.TaskStatus, apply func(*model.EvaluationTask)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.Status != from {
		return repository.ErrInvalidTransition
	}
	apply(task)
	return nil
}

func (r *memoryTaskRepository) ListTasks(offset, limit int) ([]model.EvaluationTask, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.EvaluationTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out, int64(len(r.tasks)), nil
}

func (r *memoryTaskRepository) DeleteTask(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.tasks, id)
	return nil
}

type stubEvaluator struct {
	result *model.EvaluationResult
	err    error
	calls  int
}

func (s *stubEvaluator) Evaluate(_ context.Context, _, _, _ string) (*model.EvaluationResult, error) {
	s.calls++
	return s.result, s.err
}

func passthroughExtract(path string) (string, error) {
	return "text of " + path, nil
}

func testUsecase(repo TaskRepository, eval Evaluator, extract TextExtractor) *EvaluationUsecase {
	return NewEvaluationUsecase(repo, eval, extract, &config.PipelineConfig{}, zap.NewNop())
}

func submitTask(t *testing.T, uc *EvaluationUsecase) string {
	t.Helper()
	id, err := uc.Submit("uploads/cv.pdf", "uploads/report.pdf", "")
	require.NoError(t, err)
	return id
}

func TestSubmitCreatesQueuedTaskWithDefaultJobDescription(t *testing.T) {
	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)

	id := submitTask(t, uc)

	task, err := repo.FindTaskByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskQueued, task.Status)
	assert.Equal(t, "Backend Developer position", task.JobDescription)
	assert.Nil(t, task.Result)
	assert.Nil(t, task.ErrorMessage)
}

func TestRunCompletesTask(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{result: &model.EvaluationResult{
		CVMatchRate:     0.8,
		CVFeedback:      "good",
		ProjectScore:    7.5,
		ProjectFeedback: "solid",
		OverallSummary:  "recommended",
	}}
	uc := testUsecase(repo, eval, passthroughExtract)

	id := submitTask(t, uc)
	require.NoError(t, uc.Run(context.Background(), id))

	task, err := repo.FindTaskByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskCompleted, task.Status)
	require.NotNil(t, task.Result)
	assert.Equal(t, 0.8, task.Result.CVMatchRate)
	assert.Nil(t, task.ErrorMessage, "completed tasks must not carry an error")
}

func TestRunFailureRecordsMessage(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{err: errors.New("generation failed after 3 attempts: service unavailable")}
	uc := testUsecase(repo, eval, passthroughExtract)

	id := submitTask(t, uc)
	err := uc.Run(context.Background(), id)
	require.Error(t, err)

	task, findErr := repo.FindTaskByID(id)
	require.NoError(t, findErr)
	assert.Equal(t, model.TaskFailed, task.Status)
	require.NotNil(t, task.ErrorMessage)
	assert.Contains(t, *task.ErrorMessage, "service unavailable")
	assert.Nil(t, task.Result, "failed tasks must not carry a result")
}

func TestRunFailedTaskIsTerminal(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{err: errors.New("boom")}
	uc := testUsecase(repo, eval, passthroughExtract)

	id := submitTask(t, uc)
	require.Error(t, uc.Run(context.Background(), id))

	// A second run must not move the task out of failed.
	err := uc.Run(context.Background(), id)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)

	task, findErr := repo.FindTaskByID(id)
	require.NoError(t, findErr)
	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Equal(t, 1, eval.calls)
}

func TestRunExtractionFailureFailsTask(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{result: &model.EvaluationResult{}}
	failingExtract := func(path string) (string, error) {
		return "", errors.New("no text content")
	}
	uc := testUsecase(repo, eval, failingExtract)

	id := submitTask(t, uc)
	require.Error(t, uc.Run(context.Background(), id))

	task, err := repo.FindTaskByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Equal(t, 0, eval.calls, "the pipeline must not run when extraction fails")
}

func TestRunUnknownTask(t *testing.T) {
	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)

	err := uc.Run(context.Background(), "c2d1f9f0-0000-0000-0000-000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestChaosFailureFailsTask(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{result: &model.EvaluationResult{}}
	uc := NewEvaluationUsecase(repo, eval, passthroughExtract, &config.PipelineConfig{
		ChaosEnabled:     true,
		ChaosFailureRate: 0.05,
	}, zap.NewNop())
	uc.chance = func() float64 { return 0.0 } // always below the failure rate
	uc.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	id := submitTask(t, uc)
	err := uc.Run(context.Background(), id)
	require.Error(t, err)

	task, findErr := repo.FindTaskByID(id)
	require.NoError(t, findErr)
	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Equal(t, 0, eval.calls)
}

func TestChaosDelayRange(t *testing.T) {
	repo := newMemoryTaskRepository()
	eval := &stubEvaluator{result: &model.EvaluationResult{}}
	uc := NewEvaluationUsecase(repo, eval, passthroughExtract, &config.PipelineConfig{
		ChaosEnabled:     true,
		ChaosFailureRate: 0.05,
	}, zap.NewNop())

	var slept time.Duration
	uc.chance = func() float64 { return 0.5 }
	uc.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		return nil
	}

	id := submitTask(t, uc)
	require.NoError(t, uc.Run(context.Background(), id))

	assert.GreaterOrEqual(t, slept, 2*time.Second)
	assert.LessOrEqual(t, slept, 8*time.Second)
}

func TestListTasksClampsLimit(t *testing.T) {
	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)
	submitTask(t, uc)

	tasks, total, err := uc.ListTasks(-3, 500)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.Equal(t, int64(1), total)
}

func TestDeleteTaskRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	cvPath := filepath.Join(dir, "cv.txt")
	reportPath := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(cvPath, []byte("cv"), 0o644))
	require.NoError(t, os.WriteFile(reportPath, []byte("report"), 0o644))

	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)

	id, err := uc.Submit(cvPath, reportPath, "Backend Developer position")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(id))

	assert.NoFileExists(t, cvPath)
	assert.NoFileExists(t, reportPath)
	_, err = repo.FindTaskByID(id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTaskToleratesMissingFiles(t *testing.T) {
	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)

	id, err := uc.Submit("uploads/already-gone.txt", "uploads/also-gone.txt", "x")
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(id), "missing files must not block record deletion")
	_, err = repo.FindTaskByID(id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteUnknownTask(t *testing.T) {
	repo := newMemoryTaskRepository()
	uc := testUsecase(repo, &stubEvaluator{}, passthroughExtract)

	err := uc.DeleteTask("c2d1f9f0-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
