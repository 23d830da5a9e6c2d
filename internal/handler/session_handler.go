package handler

import (
	"net/http"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles login and logout
type SessionHandler struct {
	store *service.SessionStore
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(store *service.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

// SessionResponse describes an opened session
type SessionResponse struct {
	UserKey     string `json:"userKey"`
	DisplayName string `json:"displayName"`
	Restored    bool   `json:"restored"`
	Recovered   bool   `json:"recovered"`
	AlreadyOpen bool   `json:"alreadyOpen"`
}

// Login godoc
// @Summary Open a session
// @Description Load the caller's saved ledger into memory
// @Tags session
// @Produce json
// @Param X-User-Email header string false "User email"
// @Param X-User-Nickname header string false "User nickname"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /session [post]
func (h *SessionHandler) Login(c echo.Context) error {
	identity := middleware.GetIdentity(c)

	result, err := h.store.Open(c.Request().Context(), identity)
	if err != nil {
		return handleServiceError(c, err, middleware.GetUserKey(c), "open session")
	}

	log.Info().
		Str("user_key", result.UserKey).
		Bool("restored", result.Restored).
		Bool("recovered", result.Recovered).
		Msg("Session opened")

	return c.JSON(http.StatusOK, SessionResponse{
		UserKey:     result.UserKey,
		DisplayName: identity.DisplayName(),
		Restored:    result.Restored,
		Recovered:   result.Recovered,
		AlreadyOpen: result.AlreadyOpen,
	})
}

// Logout godoc
// @Summary Close the session
// @Description Flush pending state and drop the caller's in-memory ledger
// @Tags session
// @Param X-User-Email header string false "User email"
// @Param X-User-Nickname header string false "User nickname"
// @Success 204 "No Content"
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	userKey := middleware.GetUserKey(c)

	if err := h.store.Close(c.Request().Context(), userKey); err != nil {
		return handleServiceError(c, err, userKey, "close session")
	}

	log.Info().Str("user_key", userKey).Msg("Session closed")
	return c.NoContent(http.StatusNoContent)
}
