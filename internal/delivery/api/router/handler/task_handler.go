package handler

import (
	"log/slog"
	"net/http"
	"time"

	"taskboard/internal/delivery/api/middleware"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"
	"taskboard/internal/util"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// TaskHandlerParams holds dependencies for TaskHandler, injected by Fx.
type TaskHandlerParams struct {
	fx.In

	TaskUC usecase.TaskUsecase
	Logger *slog.Logger
}

// TaskHandler serves /tasks. The owner always comes from the bearer token.
type TaskHandler struct {
	taskUC usecase.TaskUsecase
	logger *slog.Logger
}

// NewTaskHandler is the constructor for TaskHandler.
func NewTaskHandler(params TaskHandlerParams) *TaskHandler {
	return &TaskHandler{
		taskUC: params.TaskUC,
		logger: params.Logger,
	}
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description"`
	Status      string          `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	DueDate     *util.Timestamp `json:"due_date"`
}

// UpdateTaskRequest represents the request body for PUT and PATCH /tasks/:id.
// Keys that are absent leave the field unchanged.
type UpdateTaskRequest struct {
	Title       util.Optional[string]         `json:"title" validate:"omitempty,min=1,max=200"`
	Description util.Optional[string]         `json:"description"`
	Status      util.Optional[string]         `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	DueDate     util.Optional[util.Timestamp] `json:"due_date"`
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	input := usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.TaskStatus(req.Status),
	}
	if req.DueDate != nil {
		due := req.DueDate.Time
		input.DueDate = &due
	}

	task, err := h.taskUC.CreateTask(c.Request().Context(), user.ID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /tasks with an optional ?status= filter.
func (h *TaskHandler) List(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	tasks, err := h.taskUC.ListTasks(c.Request().Context(), user.ID, c.QueryParam("status"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	task, err := h.taskUC.GetTask(c.Request().Context(), user.ID, taskID)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT and PATCH /tasks/:id. Both apply only the keys present in the body.
func (h *TaskHandler) Update(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	var req UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskUC.UpdateTask(c.Request().Context(), user.ID, taskID, req.toInput())
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	taskID, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if err := h.taskUC.DeleteTask(c.Request().Context(), user.ID, taskID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// parseTaskID treats an id that cannot name any task the same as a missing task.
func parseTaskID(c echo.Context) (uuid.UUID, error) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrTaskNotFound.WrapMessage("malformed task id")
	}

	return taskID, nil
}

func (req UpdateTaskRequest) toInput() usecase.UpdateTaskInput {
	input := usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}

	switch {
	case req.Status.IsNull():
		input.Status = util.Null[entity.TaskStatus]()
	case req.Status.IsSet():
		status, _ := req.Status.Value()
		input.Status = util.Some(entity.TaskStatus(status))
	}

	switch {
	case req.DueDate.IsNull():
		input.DueDate = util.Null[time.Time]()
	case req.DueDate.IsSet():
		due, _ := req.DueDate.Value()
		input.DueDate = util.Some(due.Time)
	}

	return input
}
