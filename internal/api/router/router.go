package router

import (
	"edu_social_client/internal/api/handlers"
	"edu_social_client/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes local view api routes
//
//	GET  /             liveness
//	POST /debug        toggle debug log
//	GET  /state        view names
//	GET  /state/:view  view snapshot
//	GET  /ws/view      view change events
func RegisterRoutes(app *fiber.App, hub *handlers.Hub, state *handlers.StateHandler, accessToken string) {
	guard := middlewares.TokenGuard(accessToken)

	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", guard, handlers.DebugLogFlag)
	app.Get("/state", guard, state.List)
	app.Get("/state/:view", guard, state.Get)

	app.Get("/ws/view", guard, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}, websocket.New(hub.Serve))
}
