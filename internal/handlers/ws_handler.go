package handlers

import (
	"log"

	"catalog/internal/services"
	"catalog/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WSHandler upgrades presence-channel connections. The handshake must carry a
// valid JWT (Authentication header or token query parameter); sockets without
// one are rejected before the upgrade.
type WSHandler struct {
	hub         *ws.Hub
	authService *services.AuthService
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *ws.Hub, authService *services.AuthService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		authService: authService,
	}
}

// RegisterRoutes registers the presence channel endpoint with the Fiber app.
func (h *WSHandler) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		token := c.Get("Authentication")
		if token == "" {
			token = c.Query("token")
		}

		claims, err := h.authService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		user, err := h.authService.ResolveUser(claims)
		if err != nil {
			log.Printf("Presence handshake: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("full_name", user.FullName)
		return c.Next()
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{
			Hub:      h.hub,
			Conn:     conn,
			Send:     make(chan []byte, 16),
			UserID:   conn.Locals("user_id").(string),
			FullName: conn.Locals("full_name").(string),
		}
		h.hub.Register <- client

		go client.WritePump()
		client.ReadPump()
	}))
}
