package metrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the metrics routes with the Fiber app.
func RegisterRoutes(app *fiber.App, collector *Collector) {
	handler := NewHandler(collector)
	app.Get("/metrics", handler.Expose())
}
