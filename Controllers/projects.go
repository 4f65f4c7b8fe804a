package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"CoHub/Models"
	"CoHub/Projects"
	"CoHub/logger"
	"CoHub/middleware"
)

type ProjectController struct {
	Projects *Projects.Service
	Log      *zap.Logger
}

func NewProjectController(projects *Projects.Service, log *zap.Logger) *ProjectController {
	return &ProjectController{Projects: projects, Log: logger.OrNop(log)}
}

func (h *ProjectController) CreateProject(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var input Projects.CreateProjectInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, h.Log, err)
	}

	project, err := h.Projects.Create(c.UserContext(), user.ID, input)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": project})
}

func (h *ProjectController) GetProjects(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	projects, err := h.Projects.ListForUser(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"projects": projects})
}

// GetProject serves the project loaded by RequireProjectMember.
func (h *ProjectController) GetProject(c *fiber.Ctx) error {
	project, _ := c.Locals("project").(*Models.Project)
	return c.JSON(fiber.Map{"project": project})
}

func (h *ProjectController) InviteMember(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var input Projects.InviteInput
	if err := parseBody(c, &input); err != nil {
		return respondError(c, h.Log, err)
	}

	project, err := h.Projects.Invite(c.UserContext(), projectID, user.ID, input.UserID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"project": project})
}

func (h *ProjectController) RemoveMember(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	memberID, err := idParam(c, "memberId")
	if err != nil {
		return respondError(c, h.Log, err)
	}

	if err := h.Projects.RemoveMember(c.UserContext(), projectID, user.ID, memberID); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Member removed"})
}
