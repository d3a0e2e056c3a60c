package ratings

import (
	"errors"
	"log/slog"

	"github.com/contre95/musevault/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the ratings feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the ratings feature.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

// ListRatings serves GET /api/ratings.
func (h *Handler) ListRatings(c *fiber.Ctx) error {
	ratings, err := h.service.ListRatings(c.UserContext())
	if err != nil {
		slog.Error("Error listing ratings", "error", err)
		return err
	}
	return c.JSON(fiber.Map{"data": ratings})
}

// GetRating serves GET /api/ratings/:id.
func (h *Handler) GetRating(c *fiber.Ctx) error {
	rating, err := h.service.GetRating(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": rating})
}

// PutRating serves PUT /api/ratings/:id with a {"rating": n} body.
func (h *Handler) PutRating(c *fiber.Ctx) error {
	var input RatingInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid rating body."})
	}
	rating, err := h.service.SetRating(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": rating})
}

// DeleteRating serves DELETE /api/ratings/:id.
func (h *Handler) DeleteRating(c *fiber.Ctx) error {
	if err := h.service.DeleteRating(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCommunity serves GET /api/releases/:id/community.
func (h *Handler) GetCommunity(c *fiber.Ctx) error {
	snapshot, err := h.service.Community(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rating must be between 0.5 and 5."})
	case errors.Is(err, music.ErrMissingID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing release id."})
	case errors.Is(err, music.ErrRatingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rating not found."})
	case music.UpstreamStatus(err) == fiber.StatusNotFound:
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Release not found."})
	case errors.Is(err, music.ErrUpstreamUnavailable), errors.Is(err, music.ErrNormalizationFailed):
		slog.Error("Error loading release for ratings", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Unable to load release details."})
	default:
		slog.Error("Ratings request failed", "error", err)
		return err
	}
}
