package handler

import (
	"net/http"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades notification subscriptions at GET /ws
type WebSocketHandler struct {
	hub      *websocket.Hub
	origins  map[string]struct{}
	upgrader ws.Upgrader
}

func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:     hub,
		origins: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		h.origins[o] = struct{}{}
	}
	h.upgrader = ws.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024, CheckOrigin: h.checkOrigin}
	return h
}

// checkOrigin accepts requests without an Origin header (non-browser clients)
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
	return false
}

// identityFromQuery reads the identity from the query string since browsers
// cannot set headers on WebSocket requests. "user" is an email or nickname.
func identityFromQuery(c echo.Context) domain.Identity {
	if user := c.QueryParam("user"); user != "" {
		return domain.ParseIdentity(user)
	}
	return domain.Identity{Email: c.QueryParam("email"), Nickname: c.QueryParam("nickname")}
}

// HandleWS godoc
// @Summary      Subscribe to notifications
// @Description  Upgrades to a WebSocket that streams ledger events and notifications for the user
// @Tags         events
// @Param        user      query  string  false  "Email or nickname"
// @Param        email     query  string  false  "Email"
// @Param        nickname  query  string  false  "Nickname"
// @Success      101
// @Failure      401  {object}  ProblemDetails
// @Router       /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	userKey, err := identityFromQuery(c).UserKey()
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing user")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Str("user_key", userKey).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, userKey, h.hub)
	h.hub.Register(client)
	log.Info().Str("user_key", userKey).Str("client_id", client.ID()).Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()
	return nil
}
