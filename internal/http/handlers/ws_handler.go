package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/housing-backend/internal/http/handlers/common"
	"github.com/ignatzorin/housing-backend/internal/http/middleware"
	"github.com/ignatzorin/housing-backend/internal/logger"
	"github.com/ignatzorin/housing-backend/internal/pkg/apperror"
	"github.com/ignatzorin/housing-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.TokenParser
	sessions middleware.SessionResolver
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. allowOrigin проверяет заголовок Origin.
func NewWSHandler(hub *ws.Hub, tokens middleware.TokenParser, sessions middleware.SessionResolver, allowOrigin func(origin string) bool) *WSHandler {
	return &WSHandler{
		hub:      hub,
		tokens:   tokens,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowOrigin == nil || allowOrigin(origin)
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=...
// Браузер не умеет передавать заголовок Authorization при открытии WebSocket.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		common.RespondError(c, apperror.ErrUnauthenticated)
		return
	}

	claims, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		common.RespondError(c, apperror.New(apperror.ErrCodeUnauthorized, "invalid_token"))
		return
	}
	sess, err := h.sessions.Resolve(c.Request.Context(), claims)
	if err != nil {
		common.RespondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		logger.Log.WithError(err).Warn("ws: upgrade failed")
		return
	}

	client := ws.NewClient(conn, h.hub, sess.UserID, sess.IsAdmin)
	if err := h.hub.Register(client); err != nil {
		client.Close()
		return
	}

	client.Run(c.Request.Context())
}
