package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/contre95/musevault/src/features/config"
	"github.com/contre95/musevault/src/music"
	"github.com/gofiber/fiber/v2"
)

const publicCacheControl = "public, max-age=60"

// Messages shown to API clients.
const (
	msgMissingQuery     = "Missing search query."
	msgMissingID        = "Missing release id."
	msgFeaturedFailed   = "Unable to load featured releases right now."
	msgSearchFailed     = "Search unavailable right now. Please try again shortly."
	msgDetailsFailed    = "Unable to load release details."
	msgReleaseNotFound  = "Release not found."
	msgCoverUnavailable = "Cover art unavailable."
	msgCoverFailed      = "Unable to render cover art."
)

// CoverRenderer produces a thumbnail for a cover URL.
type CoverRenderer interface {
	Thumbnail(ctx context.Context, url string, size int) ([]byte, error)
}

// Handler is the handler for the catalog feature.
type Handler struct {
	service       *Service
	covers        CoverRenderer
	configManager *config.Manager
}

// NewHandler creates a new handler for the catalog feature.
func NewHandler(service *Service, covers CoverRenderer, cfgManager *config.Manager) *Handler {
	return &Handler{
		service:       service,
		covers:        covers,
		configManager: cfgManager,
	}
}

// GetFeatured serves GET /api/featured.
func (h *Handler) GetFeatured(c *fiber.Ctx) error {
	opts := h.configManager.Get().Catalog
	limit := min(max(c.QueryInt("limit", opts.DefaultLimit), 1), opts.MaxLimit)
	refresh := strings.ToLower(c.Query("refresh"))
	force := refresh == "1" || refresh == "true"
	mode := ParseFeedMode(c.Query("mode"))
	slog.Debug("GetFeatured handler called", "limit", limit, "force", force, "mode", mode)

	releases, err := h.service.GetFeed(c.UserContext(), mode, limit, force)
	if err != nil {
		slog.Error("Error loading featured releases", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": msgFeaturedFailed})
	}
	c.Set(fiber.HeaderCacheControl, publicCacheControl)
	return c.JSON(fiber.Map{"data": releases})
}

// Search serves GET /api/search.
func (h *Handler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	slog.Debug("Search handler called", "query", query)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msgMissingQuery})
	}

	releases, err := h.service.Search(c.UserContext(), query)
	if err != nil {
		slog.Error("Error searching releases", "query", query, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": msgSearchFailed})
	}
	c.Set(fiber.HeaderCacheControl, publicCacheControl)
	return c.JSON(fiber.Map{"data": releases})
}

// GetRelease serves GET /api/releases/:id.
func (h *Handler) GetRelease(c *fiber.Ctx) error {
	id := c.Params("id")
	slog.Debug("GetRelease handler called", "id", id)

	release, err := h.service.GetDetails(c.UserContext(), id)
	if err != nil {
		status, msg := detailError(err)
		slog.Error("Error loading release details", "id", id, "status", status, "error", err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	c.Set(fiber.HeaderCacheControl, publicCacheControl)
	return c.JSON(fiber.Map{"data": release})
}

// GetCover serves GET /api/releases/:id/cover as a JPEG thumbnail.
func (h *Handler) GetCover(c *fiber.Ctx) error {
	id := c.Params("id")
	size := c.QueryInt("size", 0)
	slog.Debug("GetCover handler called", "id", id, "size", size)

	release, err := h.service.GetDetails(c.UserContext(), id)
	if err != nil {
		status, msg := detailError(err)
		slog.Error("Error loading release for cover", "id", id, "error", err)
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}
	if release.Cover == "" || h.covers == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msgCoverUnavailable})
	}

	data, err := h.covers.Thumbnail(c.UserContext(), release.Cover, size)
	if err != nil {
		slog.Error("Error rendering cover", "id", id, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": msgCoverFailed})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}

// detailError maps a detail lookup failure to a status and a client message.
func detailError(err error) (int, string) {
	switch {
	case errors.Is(err, music.ErrMissingID):
		return fiber.StatusBadRequest, msgMissingID
	case music.UpstreamStatus(err) == fiber.StatusNotFound:
		return fiber.StatusNotFound, msgReleaseNotFound
	default:
		return fiber.StatusBadGateway, msgDetailsFailed
	}
}
