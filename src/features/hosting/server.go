package hosting

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/contre95/musevault/src/features/catalog"
	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/features/history"
	"github.com/contre95/musevault/src/features/metrics"
	"github.com/contre95/musevault/src/features/ratings"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, catalogService *catalog.Service, covers catalog.CoverRenderer, ratingsService *ratings.Service, historyService *history.Service, collector *metrics.Collector, limiter *RateLimiter) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		AppName:               "MuseVault",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	// Add middleware
	app.Use(RequestIDMiddleware())
	app.Use(LogAllRequestsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Get().Server.AllowedOrigin,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "MuseVault API proxy is running.",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	if limiter != nil {
		app.Use("/api", limiter.Handler())
	}

	catalog.RegisterRoutes(app, catalogService, covers, cfg)
	ratings.RegisterRoutes(app, ratingsService)
	history.RegisterRoutes(app, historyService)
	config.RegisterRoutes(app, cfg)
	if collector != nil {
		metrics.RegisterRoutes(app, collector)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found."})
	})

	return &Server{app: app, port: cfg.Get().Server.Port}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	slog.Error("Internal Server Error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error."})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
