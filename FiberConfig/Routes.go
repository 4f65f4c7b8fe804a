package FiberConfig

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"CoHub/Activity"
	"CoHub/Controllers"
	"CoHub/Dashboard"
	"CoHub/Projects"
	"CoHub/Tasks"
	"CoHub/logger"
	"CoHub/middleware"
)

// Services is everything the HTTP layer serves.
type Services struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Auth     *middleware.Authenticator
	Activity *Activity.Aggregator
	Projects *Projects.Service
	Board    *Tasks.Board
	Reporter *Dashboard.Reporter
}

func SetupRoutes(app *fiber.App, s *Services) {
	// Initialize handlers
	authController := Controllers.NewAuthController(s.DB, s.Auth, s.Log)
	projectController := Controllers.NewProjectController(s.Projects, s.Log)
	taskController := Controllers.NewTaskController(s.Board, s.Projects, s.Log)
	activityController := Controllers.NewActivityController(s.Activity, s.Projects, s.Log)
	dashboardController := Controllers.NewDashboardController(s.Reporter, s.Log)

	verify := s.Auth.Verify()
	member := middleware.RequireProjectMember(s.Projects)
	admin := middleware.RequireProjectAdmin()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", authController.Signup)
	auth.Post("/login", authController.Login)
	auth.Post("/logout", authController.Logout)
	auth.Get("/me", verify, authController.Me)
	auth.Get("/search", verify, authController.Search)

	projects := api.Group("/projects", verify)
	projects.Post("/", projectController.CreateProject)
	projects.Get("/", projectController.GetProjects)
	projects.Get("/:projectId", member, projectController.GetProject)
	projects.Post("/:projectId/invite", member, admin, projectController.InviteMember)
	projects.Delete("/:projectId/members/:memberId", member, admin, projectController.RemoveMember)

	tasks := api.Group("/tasks", verify)
	tasks.Post("/", taskController.CreateTask)
	tasks.Get("/project/:projectId", member, taskController.GetProjectTasks)
	tasks.Patch("/:taskId/status", taskController.UpdateStatus)
	tasks.Patch("/:taskId", taskController.UpdateTask)
	tasks.Delete("/:taskId", taskController.DeleteTask)

	activities := api.Group("/activities", verify)
	activities.Post("/track", activityController.Track)
	activities.Get("/project/:projectId", member, activityController.GetProjectActivities)

	dashboard := api.Group("/dashboard", verify)
	dashboard.Get("/project/:projectId", member, dashboardController.ProjectDashboard)
	dashboard.Get("/project/:projectId/export", member, dashboardController.ExportProjectDashboard)
	dashboard.Get("/user/stats", dashboardController.UserStats)
}

// NewApp builds the Fiber app with the shared middleware stack and all routes.
func NewApp(s *Services, corsOrigins string) *fiber.App {
	log := logger.OrNop(s.Log)
	app := fiber.New(fiber.Config{
		AppName: "Co-Hub",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(middleware.DefaultLogConfig(log)))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	SetupRoutes(app, s)
	return app
}

// FiberConfig serves app on port until it is shut down.
func FiberConfig(app *fiber.App, port string) error {
	return app.Listen(":" + port)
}
