package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler handles HTTP requests for the metrics feature.
type Handler struct {
	collector *Collector
}

// NewHandler creates a new metrics handler.
func NewHandler(collector *Collector) *Handler {
	return &Handler{collector: collector}
}

// Expose serves the Prometheus text exposition.
func (h *Handler) Expose() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(h.collector.Registry(), promhttp.HandlerOpts{}))
}
