// Package main provides the flowprobe API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/persistence"
	"github.com/flowprobe/flowprobe/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	reportCache persistence.ReportCache
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	reportCache persistence.ReportCache,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		reportCache: reportCache,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	converter := convert.NewConverter(a.logger)
	handlers := web.NewAPIHandlers(a.persistence, a.reportCache, converter, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("flowprobe API")
	})

	p := app.Group("/process-structures")
	p.Post("/convert", handlers.ConvertProcessStructure)
	p.Post("/discover", handlers.DiscoverPaths)

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	r := app.Group("/runs")
	r.Get("/", handlers.GetRuns)
	r.Get("/:id", handlers.GetRun)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
