package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/dto"
	"github.com/aryasetiadi/cv-evaluator/internal/middleware"
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/aryasetiadi/cv-evaluator/internal/queue"
	"github.com/aryasetiadi/cv-evaluator/internal/response"
	"github.com/aryasetiadi/cv-evaluator/internal/usecase"
	"github.com/aryasetiadi/cv-evaluator/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

type EvaluateHandler struct {
	uc        *usecase.EvaluationUsecase
	queue     *queue.TaskQueue
	uploadDir string
}

func NewEvaluateHandler(uc *usecase.EvaluationUsecase, q *queue.TaskQueue, uploadDir string) *EvaluateHandler {
	return &EvaluateHandler{uc: uc, queue: q, uploadDir: uploadDir}
}

func (h *EvaluateHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/upload", h.Upload)
	app.Post("/evaluate", middleware.RateLimiter(1, 4*time.Second), h.Evaluate)
	app.Get("/result/:id", h.Result)
	app.Get("/tasks", h.Tasks)
	app.Delete("/task/:id", h.Delete)
}

// Upload stores both documents without starting an evaluation, returning
// the saved paths.
func (h *EvaluateHandler) Upload(c *fiber.Ctx) error {
	cvPath, err := h.saveUpload(c, "cv")
	if err != nil {
		return err
	}
	reportPath, err := h.saveUpload(c, "project_report")
	if err != nil {
		return err
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Files uploaded successfully",
		Data: dto.UploadResponse{
			CVFilePath:        cvPath,
			ProjectReportPath: reportPath,
		},
	})
}

// Evaluate validates and stores both documents, creates a queued task and
// schedules its execution. Input problems are rejected here, before any
// task exists.
func (h *EvaluateHandler) Evaluate(c *fiber.Ctx) error {
	cvPath, err := h.saveUpload(c, "cv")
	if err != nil {
		return err
	}
	reportPath, err := h.saveUpload(c, "project_report")
	if err != nil {
		return err
	}

	jobDescription := c.FormValue("job_description")

	id, err := h.uc.Submit(cvPath, reportPath, jobDescription)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit evaluation",
		}, err)
	}

	h.queue.Enqueue(id)

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Evaluation task created",
		Data:    fiber.Map{"id": id, "status": model.TaskQueued},
	})
}

func (h *EvaluateHandler) saveUpload(c *fiber.Ctx, fieldName string) (string, error) {
	file, err := c.FormFile(fieldName)
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file is required", fieldName),
		}, err)
	}

	if !util.ValidFormat(file.Filename) {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("unsupported %s file type (supported: pdf, docx, txt, md)", fieldName),
		})
	}

	if file.Size > maxUploadSize {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("%s file size is too large (max 10MB)", fieldName),
		})
	}

	savePath := filepath.Join(h.uploadDir, fmt.Sprintf("%s_%s_%s", uuid.New().String(), fieldName, filepath.Base(file.Filename)))
	if err := c.SaveFile(file, savePath); err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: fmt.Sprintf("cannot save %s file", fieldName),
		}, err)
	}
	return savePath, nil
}

func (h *EvaluateHandler) Result(c *fiber.Ctx) error {
	id := c.Params("id")
	task, err := h.uc.GetResult(id)
	if err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			code = fiber.StatusNotFound
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "task not found",
		}, err)
	}

	data := dto.TaskResultResponse{
		ID:        task.ID,
		Status:    task.Status,
		Result:    task.Result,
		Error:     task.ErrorMessage,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluation result",
		Data:    data,
	})
}

func (h *EvaluateHandler) Tasks(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)

	tasks, total, err := h.uc.ListTasks(offset, limit)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list tasks",
		}, err)
	}

	items := make([]dto.TaskListItem, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, dto.TaskListItem{
			ID:             task.ID,
			Status:         task.Status,
			CVFile:         filepath.Base(task.CVFilePath),
			ProjectFile:    filepath.Base(task.ProjectReportPath),
			JobDescription: task.JobDescription,
			CreatedAt:      task.CreatedAt,
			UpdatedAt:      task.UpdatedAt,
		})
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success list evaluation tasks",
		Data:       items,
		Pagination: response.NewPagination(offset, limit, total),
	})
}

func (h *EvaluateHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.uc.DeleteTask(id); err != nil {
		code := fiber.StatusInternalServerError
		if errors.Is(err, gorm.ErrRecordNotFound) {
			code = fiber.StatusNotFound
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    code,
			Message: "failed to delete task",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: fmt.Sprintf("Task %s deleted successfully", id),
	})
}
