package report

import (
	"go-league/internal/common/api"
	"go-league/internal/config"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReportApi struct {
	ReportController *ReportController
	Config           *config.Config
}

func NewReportApi(reportController *ReportController, config *config.Config) api.Route {
	return &ReportApi{
		ReportController: reportController,
		Config:           config,
	}
}

func (api *ReportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/types", api.ReportController.Types)
	group.Get("/types/:type", api.ReportController.Type)
	group.Post("/run", api.ReportController.Run)
}
