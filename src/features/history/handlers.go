package history

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the history feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the history feature.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service: service,
	}
}

type addRequest struct {
	Query string `json:"query"`
}

// List serves GET /api/history.
func (h *Handler) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.UserContext())
	if err != nil {
		slog.Error("Error listing history", "error", err)
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}

// Add serves POST /api/history with a {"query": "..."} body.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid history body."})
	}
	entries, err := h.service.Add(c.UserContext(), req.Query)
	if errors.Is(err, ErrEmptyQuery) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing search query."})
	}
	if err != nil {
		slog.Error("Error adding history entry", "error", err)
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": entries})
}

// Delete serves DELETE /api/history. With ?q it removes one query, otherwise it clears everything.
func (h *Handler) Delete(c *fiber.Ctx) error {
	var err error
	if q := c.Query("q"); q != "" {
		err = h.service.Remove(c.UserContext(), q)
	} else {
		err = h.service.Clear(c.UserContext())
	}
	if err != nil {
		slog.Error("Error deleting history", "error", err)
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
