package schedule

import (
	"go-league/internal/common/api"
	"go-league/internal/config"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ScheduleApi struct {
	scheduleController *ScheduleController
	config             *config.Config
}

func NewScheduleApi(scheduleController *ScheduleController, config *config.Config) api.Route {
	return &ScheduleApi{
		scheduleController: scheduleController,
		config:             config,
	}
}

func (h *ScheduleApi) Setup(app *fiber.App) {
	schedules := app.Group("/api/schedules",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequireRole("admin", "platform_admin"))

	schedules.Get("/", h.scheduleController.ListJobs)
	schedules.Post("/:name/run", h.scheduleController.ExecuteJob)
}
