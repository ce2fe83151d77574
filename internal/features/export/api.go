package export

import (
	"go-league/internal/common/api"
	"go-league/internal/config"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ExportApi struct {
	ExportController *ExportController
	Config           *config.Config
}

func NewExportApi(exportController *ExportController, config *config.Config) api.Route {
	return &ExportApi{
		ExportController: exportController,
		Config:           config,
	}
}

func (api *ExportApi) Setup(app *fiber.App) {
	group := app.Group("/api/reports", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/export", api.ExportController.Export)
	group.Post("/email", api.ExportController.Email)
}
