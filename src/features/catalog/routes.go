package catalog

import (
	"github.com/contre95/musevault/src/features/config"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the catalog feature.
func RegisterRoutes(app *fiber.App, service *Service, covers CoverRenderer, cfgManager *config.Manager) {
	handler := NewHandler(service, covers, cfgManager)

	api := app.Group("/api")
	api.Get("/featured", handler.GetFeatured)
	api.Get("/search", handler.Search)
	api.Get("/releases/:id?", handler.GetRelease)
	api.Get("/releases/:id/cover", handler.GetCover)
}
