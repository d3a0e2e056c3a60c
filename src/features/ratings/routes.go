package ratings

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the ratings feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api")
	api.Get("/ratings", handler.ListRatings)
	api.Get("/ratings/:id", handler.GetRating)
	api.Put("/ratings/:id", handler.PutRating)
	api.Delete("/ratings/:id", handler.DeleteRating)
	api.Get("/releases/:id/community", handler.GetCommunity)
}
