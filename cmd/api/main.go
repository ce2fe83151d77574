package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-league/internal/common/api"
	"go-league/internal/config"
	"go-league/internal/connectors"
	"go-league/internal/database"
	"go-league/internal/features/export"
	"go-league/internal/features/preset"
	"go-league/internal/features/report"
	"go-league/internal/features/schedule"
	"go-league/internal/features/system"
	"go-league/internal/logger"
	"go-league/internal/middleware"
	"go-league/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the "routes" group.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for i, route := range routes {
		log.Printf("Setting up route %d: %T\n", i+1, route)
		route.Setup(app)
	}
	log.Println("All routes registered successfully")
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// StartScheduler runs scheduled exports for the lifetime of the app.
func StartScheduler(lc fx.Lifecycle, scheduleService schedule.ScheduleService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduleService.InitializeScheduler(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return scheduleService.StopScheduler()
		},
	})
}

func provideDataStore(c *connectors.SQLConnector) report.DataStore {
	return c
}

func provideMailSink(cfg *config.Config, logger *zap.Logger) *export.MailSink {
	return export.NewMailSink(cfg.SMTP, logger)
}

func provideScheduleService(
	cfg *config.Config,
	reportService report.ReportService,
	presetService preset.PresetService,
	mail *export.MailSink,
	logger *zap.Logger,
) (schedule.ScheduleService, error) {
	jobs, err := schedule.LoadFile(cfg.ScheduleFile)
	if err != nil {
		return nil, err
	}
	var mailSink export.Sink
	if mail.Configured() {
		mailSink = mail
	}
	return schedule.NewScheduleService(jobs, reportService, presetService, export.NewDirSink(cfg.ExportDir), mailSink, logger), nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			NewFiberServer,
			database.NewDatabase,
			database.NewRedisClient,
			logger.NewLogger,
			connectors.NewDataStore,
			provideDataStore,
			provideMailSink,

			// Services
			report.NewReportService,
			export.NewExportService,
			preset.NewPresetRepository,
			preset.NewPresetService,
			provideScheduleService,

			// Controllers
			report.NewReportController,
			export.NewExportController,
			preset.NewPresetController,
			schedule.NewScheduleController,

			// Routes
			AsRoute(system.NewHealthApi),
			AsRoute(report.NewReportApi),
			AsRoute(export.NewExportApi),
			AsRoute(preset.NewPresetApi),
			AsRoute(schedule.NewScheduleApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(RegisterAllRoutesWithAnnotation),
		fx.Invoke(StartScheduler),
		fx.Invoke(StartServer),
	)

	app.Run()
}
