package preset

import (
	"go-league/internal/common/api"
	"go-league/internal/config"
	"go-league/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PresetApi struct {
	PresetController *PresetController
	Config           *config.Config
}

func NewPresetApi(presetController *PresetController, config *config.Config) api.Route {
	return &PresetApi{
		PresetController: presetController,
		Config:           config,
	}
}

func (api *PresetApi) Setup(app *fiber.App) {
	group := app.Group("/api/report-presets", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/", api.PresetController.Create)
	group.Get("/", api.PresetController.List)
	group.Get("/:id", api.PresetController.Get)
	group.Delete("/:id", api.PresetController.Delete)
}
