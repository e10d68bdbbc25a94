package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "progress-tracker.com/progress-tracker/internal/data_models"
	apperrors "progress-tracker.com/progress-tracker/internal/errors"
	"progress-tracker.com/progress-tracker/internal/http/validators"
	"progress-tracker.com/progress-tracker/internal/logging"
	repository "progress-tracker.com/progress-tracker/internal/repositories"
	"progress-tracker.com/progress-tracker/internal/services"
)

type Handler struct {
	locator *services.Locator
	logger  *slog.Logger
}

func NewHandler(locator *services.Locator, logger *slog.Logger) *Handler {
	return &Handler{
		locator: locator,
		logger:  logger,
	}
}

// taskService resolves the service, reporting failure with the operation's
// fixed message.
func (h *Handler) taskService(c echo.Context, failure *apperrors.Exception) (*services.TaskService, error) {
	svc, err := h.locator.TaskService()
	if err != nil {
		logging.Error(c.Request().Context(), h.logger, err, "Handler.taskService")
		return nil, failure
	}
	return svc, nil
}

func (h *Handler) CreateTask(c echo.Context) error {
	var req dto.CreateTaskRequest
	if err := validators.ValidateCreateTaskRequest(c, &req); err != nil {
		return err
	}

	svc, err := h.taskService(c, apperrors.ErrCreateFailed)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	task, err := svc.CreateTask(ctx, req.ToInput())
	if err != nil {
		logging.Error(ctx, h.logger, err, "Handler.CreateTask")
		return apperrors.ErrCreateFailed
	}

	return c.JSON(http.StatusCreated, task)
}

func (h *Handler) ListTasks(c echo.Context) error {
	var q dto.ListTasksQuery
	if err := validators.ValidateListTasksQuery(c, &q); err != nil {
		return err
	}

	svc, err := h.taskService(c, apperrors.ErrFetchTasksFailed)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	filters := q.Filters()

	tasks, err := svc.ListTasks(ctx, filters, q.Page())
	if err != nil {
		logging.Error(ctx, h.logger, err, "Handler.ListTasks")
		return apperrors.ErrFetchTasksFailed
	}

	total, err := svc.CountTasks(ctx, filters)
	if err != nil {
		logging.Error(ctx, h.logger, err, "Handler.ListTasks")
		return apperrors.ErrFetchTasksFailed
	}

	return c.JSON(http.StatusOK, dto.ListTasksResponse{
		Tasks: tasks,
		Total: total,
	})
}

func (h *Handler) GetTask(c echo.Context) error {
	svc, err := h.taskService(c, apperrors.ErrFetchTaskFailed)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	task, err := svc.GetTask(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return apperrors.ErrTaskNotFound
		}
		logging.Error(ctx, h.logger, err, "Handler.GetTask", slog.String("id", c.Param("id")))
		return apperrors.ErrFetchTaskFailed
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) UpdateTask(c echo.Context) error {
	var req dto.UpdateTaskRequest
	if err := validators.ValidateUpdateTaskRequest(c, &req); err != nil {
		return err
	}

	svc, err := h.taskService(c, apperrors.ErrUpdateFailed)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	task, err := svc.UpdateTask(ctx, c.Param("id"), req.ToInput())
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return apperrors.ErrTaskNotFound
		}
		logging.Error(ctx, h.logger, err, "Handler.UpdateTask", slog.String("id", c.Param("id")))
		return apperrors.ErrUpdateFailed
	}

	return c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c echo.Context) error {
	svc, err := h.taskService(c, apperrors.ErrDeleteFailed)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	deleted, err := svc.DeleteTask(ctx, c.Param("id"))
	if err != nil {
		logging.Error(ctx, h.logger, err, "Handler.DeleteTask", slog.String("id", c.Param("id")))
		return apperrors.ErrDeleteFailed
	}
	if !deleted {
		return apperrors.ErrTaskNotFound
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func (h *Handler) Health(c echo.Context) error {
	svc, err := h.locator.TaskService()
	if err == nil {
		err = svc.Ping(c.Request().Context())
	}
	if err != nil {
		logging.Error(c.Request().Context(), h.logger, err, "Handler.Health")
		return c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable"})
	}

	return c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}
