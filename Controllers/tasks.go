package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"CoHub/Models"
	"CoHub/Projects"
	"CoHub/Tasks"
	"CoHub/logger"
	"CoHub/middleware"
)

type TaskController struct {
	Board    *Tasks.Board
	Projects *Projects.Service
	Log      *zap.Logger
}

func NewTaskController(board *Tasks.Board, projects *Projects.Service, log *zap.Logger) *TaskController {
	return &TaskController{Board: board, Projects: projects, Log: logger.OrNop(log)}
}

type statusRequest struct {
	Status Models.TaskStatus `json:"status" validate:"required"`
}

func (h *TaskController) CreateTask(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var input Tasks.CreateTaskInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, h.Log, err)
	}
	if _, _, err := h.Projects.Membership(c.UserContext(), input.ProjectID, user.ID); err != nil {
		return respondError(c, h.Log, err)
	}

	task, err := h.Board.Create(c.UserContext(), user.ID, input)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"task": task})
}

func (h *TaskController) GetProjectTasks(c *fiber.Ctx) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	tasks, err := h.Board.List(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"tasks": tasks})
}

func (h *TaskController) UpdateStatus(c *fiber.Ctx) error {
	user, taskID, err := h.authorize(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req statusRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}

	task, err := h.Board.ChangeStatus(c.UserContext(), taskID, req.Status, user.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"task": task})
}

func (h *TaskController) UpdateTask(c *fiber.Ctx) error {
	user, taskID, err := h.authorize(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var input Tasks.UpdateTaskInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, h.Log, err)
	}

	task, err := h.Board.Update(c.UserContext(), taskID, user.ID, input)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"task": task})
}

func (h *TaskController) DeleteTask(c *fiber.Ctx) error {
	user, taskID, err := h.authorize(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	if err := h.Board.Delete(c.UserContext(), taskID, user.ID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

// authorize resolves :taskId and checks the caller belongs to the task's project.
func (h *TaskController) authorize(c *fiber.Ctx) (Models.User, uint, error) {
	user, _ := middleware.CurrentUser(c)
	taskID, err := idParam(c, "taskId")
	if err != nil {
		return user, 0, err
	}
	task, err := h.Board.Get(c.UserContext(), taskID)
	if err != nil {
		return user, 0, err
	}
	if _, _, err := h.Projects.Membership(c.UserContext(), task.ProjectID, user.ID); err != nil {
		return user, 0, err
	}
	return user, task.ID, nil
}
