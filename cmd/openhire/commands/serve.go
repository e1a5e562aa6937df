package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/openhire/openhire/migrations"
	"github.com/openhire/openhire/pkg/config"
	"github.com/openhire/openhire/pkg/errx"
	"github.com/openhire/openhire/pkg/httpx"
	"github.com/openhire/openhire/pkg/logx"
	"github.com/openhire/openhire/pkg/metrics"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the notification worker",
		Long: `Run the HTTP API and the background notification worker in one
process. The server stops on SIGINT or SIGTERM after draining in-flight
requests and queued tasks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(cfg.Database.URL()); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	container, err := NewContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Cleanup()

	if err := container.AuthService.PurgeExpiredTokens(ctx); err != nil {
		logx.WithError(err).Warn("sweeping expired refresh tokens")
	}

	app := newApp(cfg, container)

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- container.Worker.Start(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logx.Infof("%s listening on :%s", cfg.App.Name, cfg.Server.Port)
		serverErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-serverErr:
		stop()
		<-workerDone
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logx.Info("shutting down")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownWait); err != nil {
		logx.WithError(err).Error("server shutdown")
	}
	if err := <-workerDone; err != nil {
		logx.WithError(err).Error("worker shutdown")
	}
	return nil
}

func newApp(cfg *config.Config, container *Container) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${locals:requestid}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(requestCounter(container.Metrics))

	app.Get("/health", healthHandler(container))
	app.Get("/metrics", adaptor.HTTPHandler(container.Metrics.Handler()))
	app.Get("/", infoHandler(cfg))
	app.Get("/api/v1/docs", docsHandler)

	container.AuthHandlers.RegisterRoutes(app, container.Middleware)
	container.UserHandlers.RegisterRoutes(app, container.Middleware)
	container.CategoryHandlers.RegisterRoutes(app, container.Middleware)
	container.JobHandlers.RegisterRoutes(app, container.Middleware)
	container.ApplicationHandlers.RegisterRoutes(app, container.Middleware)

	app.Use(func(c *fiber.Ctx) error {
		return httpx.ErrNotFound().WithDetail("path", c.Path())
	})
	return app
}

// errorHandler converts any error escaping a handler into the standard
// JSON error body.
func errorHandler(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"code":    "HTTP_ERROR",
			"message": fiberErr.Message,
		})
	}

	e := errx.FromError(err)
	if e.HTTPStatus >= 500 {
		logx.WithFields(logx.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}).WithError(err).Error("request failed")
	}
	return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
}

func requestCounter(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = errx.FromError(err).HTTPStatus
		}
		route := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), route, fmt.Sprintf("%dxx", status/100)).Inc()
		return err
	}
}

func healthHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report := container.Health.Run(c.Context(), c.QueryBool("storage", false))
		status := fiber.StatusOK
		if !report.Healthy() {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(report)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"endpoints": fiber.Map{
				"docs":    "/api/v1/docs",
				"health":  "/health",
				"metrics": "/metrics",
			},
		})
	}
}

func docsHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"api_version": "v1",
		"endpoints": fiber.Map{
			"auth": fiber.Map{
				"login":   "POST /auth/login",
				"refresh": "POST /auth/refresh",
				"logout":  "POST /auth/logout",
				"me":      "GET /auth/me",
			},
			"users": fiber.Map{
				"register":        "POST /api/v1/users",
				"me":              "GET /api/v1/users/me",
				"update_profile":  "PATCH /api/v1/users/me",
				"change_password": "PUT /api/v1/users/me/password",
			},
			"categories": fiber.Map{
				"list":    "GET /api/v1/categories",
				"by_slug": "GET /api/v1/categories/slug/:slug",
			},
			"jobs": fiber.Map{
				"list":    "GET /api/v1/jobs",
				"get":     "GET /api/v1/jobs/:id",
				"mine":    "GET /api/v1/jobs/mine",
				"create":  "POST /api/v1/jobs",
				"publish": "POST /api/v1/jobs/:id/publish",
				"close":   "POST /api/v1/jobs/:id/close",
			},
			"applications": fiber.Map{
				"apply":      "POST /api/v1/applications",
				"mine":       "GET /api/v1/applications/mine",
				"events":     "GET /api/v1/applications/:id/events",
				"resume":     "GET /api/v1/applications/:id/resume",
				"transition": "POST /api/v1/applications/:id/transition",
				"for_job":    "GET /api/v1/jobs/:job_id/applications",
				"bulk":       "POST /api/v1/jobs/:job_id/applications/bulk",
			},
		},
		"authentication": fiber.Map{
			"type":   "JWT",
			"header": "Authorization: Bearer <token>",
		},
	})
}
