package system

import (
	"context"
	"time"

	"go-league/internal/common/api"
	"go-league/internal/connectors"
	"go-league/internal/database"

	"github.com/gofiber/fiber/v2"
)

// Pinger is anything the readiness probe can check.
type Pinger interface {
	TestConnection(ctx context.Context) error
}

type HealthApi struct {
	dataStore Pinger
	mongo     *database.MongodbDB
}

func NewHealthApi(dataStore *connectors.SQLConnector, mongo *database.MongodbDB) api.Route {
	return &HealthApi{dataStore: dataStore, mongo: mongo}
}

// Setup registers health check routes
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/health", h.HealthCheck)
	app.Get("/health/ready", h.Ready)
}

func (h *HealthApi) HealthCheck(c *fiber.Ctx) error {
	return c.SendString("OK")
}

// Ready reports each backing store. The league data store is required; the
// preset store only degrades presets.
func (h *HealthApi) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	checks := fiber.Map{}
	status := fiber.StatusOK

	if err := h.dataStore.TestConnection(ctx); err != nil {
		checks["data_store"] = err.Error()
		status = fiber.StatusServiceUnavailable
	} else {
		checks["data_store"] = "ok"
	}

	if h.mongo == nil {
		checks["mongo"] = "not connected"
	} else {
		if err := h.mongo.DB.Client().Ping(ctx, nil); err != nil {
			checks["mongo"] = err.Error()
		} else {
			checks["mongo"] = "ok"
		}
	}

	return c.Status(status).JSON(checks)
}
