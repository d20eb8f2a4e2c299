package handler

import (
	"chatdoc-be/internal/pkg/logger"
	"chatdoc-be/internal/pkg/serverutils"
	internalWS "chatdoc-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// EventStreamHandler upgrades authenticated requests to a socket that
// receives the caller's domain events.
type EventStreamHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewEventStreamHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EventStreamHandler {
	return &EventStreamHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *EventStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *EventStreamHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a socket handshake, so the query wins.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}

	userIDStr, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("EVENT_STREAM", "Invalid token in socket handshake", map[string]interface{}{"error": err.Error()})
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid user id in token")
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EVENT_STREAM", "Socket session started", map[string]interface{}{"user_id": userID.String()})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("EVENT_STREAM", "Socket session ended", map[string]interface{}{"user_id": userID.String()})
	})(c)
}
