package handler

import (
	"brdgenius-be/internal/pkg/logger"
	"brdgenius-be/internal/pkg/serverutils"
	internalWS "brdgenius-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type NoticeHandler struct {
	hub      *internalWS.Hub
	sessions *serverutils.SessionManager
	logger   logger.ILogger
}

func NewNoticeHandler(hub *internalWS.Hub, sessions *serverutils.SessionManager, log logger.ILogger) *NoticeHandler {
	return &NoticeHandler{
		hub:      hub,
		sessions: sessions,
		logger:   log,
	}
}

func (h *NoticeHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.ServeWs)
}

// ServeWs streams a session's notices. Browsers pass the session token as
// ?token= since they cannot set headers on the upgrade request; the session
// cookie works as well.
func (h *NoticeHandler) ServeWs(c *fiber.Ctx) error {
	sessionID, ok := h.sessions.Resolve(c)
	if !ok {
		h.logger.Warn("NoticeHandler", "Websocket handshake without a valid session", map[string]interface{}{
			"ip": c.IP(),
		})
		return serverutils.NewAppError(fiber.StatusUnauthorized, "Invalid or missing session token", nil)
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NoticeHandler", "Websocket session started", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID)
		h.logger.Info("NoticeHandler", "Websocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}
