package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Views snapshot registry
type Views interface {
	Snapshot(ctx context.Context, view string) (any, bool)
	Names() []string
}

// StateHandler JSON snapshots of the view state
type StateHandler struct {
	views Views
}

// NewStateHandler create StateHandler
func NewStateHandler(views Views) *StateHandler {
	return &StateHandler{views: views}
}

// List names of the exposed views
//
// GET /state
func (h *StateHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"views": h.views.Names()})
}

// Get snapshot of one view
//
// GET /state/:view
func (h *StateHandler) Get(c *fiber.Ctx) error {
	view := c.Params("view")
	state, ok := h.views.Snapshot(c.UserContext(), view)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown view " + view})
	}
	return c.JSON(ViewEvent{View: view, State: state})
}
