package Controllers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"CoHub/Activity"
	"CoHub/Models"
	"CoHub/Projects"
	"CoHub/logger"
	"CoHub/middleware"
)

type ActivityController struct {
	Activity *Activity.Aggregator
	Projects *Projects.Service
	Log      *zap.Logger
}

func NewActivityController(activity *Activity.Aggregator, projects *Projects.Service, log *zap.Logger) *ActivityController {
	return &ActivityController{Activity: activity, Projects: projects, Log: logger.OrNop(log)}
}

type trackRequest struct {
	ProjectID uint                   `json:"projectId" validate:"required"`
	Action    Models.Action          `json:"action" validate:"required"`
	Metadata  map[string]interface{} `json:"metadata"`
}

func (h *ActivityController) Track(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var req trackRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	// Clients only report typing and sessions; the other events come from
	// the features that perform them.
	if !req.Action.IsSpecial() {
		return respondError(c, h.Log, Models.Invalid("action", fmt.Sprintf("action %q cannot be tracked", req.Action)))
	}
	if _, _, err := h.Projects.Membership(c.UserContext(), req.ProjectID, user.ID); err != nil {
		return respondError(c, h.Log, err)
	}

	err := h.Activity.RecordEvent(c.UserContext(), Activity.Event{
		UserID:    user.ID,
		ProjectID: req.ProjectID,
		Action:    req.Action,
		Metadata:  req.Metadata,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"message": "Activity recorded"})
}

func (h *ActivityController) GetProjectActivities(c *fiber.Ctx) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	limit := Activity.DefaultEventLimit
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			return respondError(c, h.Log, Models.Invalid("limit", "limit must be a number"))
		}
	}

	logs, err := h.Activity.ListEvents(c.UserContext(), projectID, limit)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(fiber.Map{"logs": logs})
}
