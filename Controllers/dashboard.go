package Controllers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"CoHub/Dashboard"
	"CoHub/Models"
	"CoHub/logger"
	"CoHub/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	Reporter *Dashboard.Reporter
	Log      *zap.Logger
}

func NewDashboardController(reporter *Dashboard.Reporter, log *zap.Logger) *DashboardController {
	return &DashboardController{Reporter: reporter, Log: logger.OrNop(log)}
}

func (h *DashboardController) ProjectDashboard(c *fiber.Ctx) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	dashboard, err := h.Reporter.BuildProjectDashboard(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(dashboard)
}

// ExportProjectDashboard sends the project dashboard as an xlsx download.
func (h *DashboardController) ExportProjectDashboard(c *fiber.Ctx) error {
	projectID, err := idParam(c, "projectId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	dashboard, err := h.Reporter.BuildProjectDashboard(c.UserContext(), projectID)
	if err != nil {
		return respondError(c, h.Log, err)
	}

	var buf bytes.Buffer
	if err := Dashboard.WriteWorkbook(dashboard, &buf); err != nil {
		return respondError(c, h.Log, Models.StoreFailure("export dashboard", err))
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="project-%d-dashboard.xlsx"`, projectID))
	return c.Send(buf.Bytes())
}

func (h *DashboardController) UserStats(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	stats, err := h.Reporter.BuildUserStats(c.UserContext(), user.ID)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(stats)
}
