package middleware

import (
	"context"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Identity headers set by the client after it has signed the user in.
// They are trusted as-is.
const (
	HeaderUserEmail    = "X-User-Email"
	HeaderUserNickname = "X-User-Nickname"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the caller's identity
	IdentityKey contextKey = "identity"
	// UserKeyKey is the context key for the derived user key
	UserKeyKey contextKey = "user_key"
)

// Identity returns an Echo middleware that derives the user key from the
// identity headers and stores it in the request context
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := domain.Identity{
				Email:    c.Request().Header.Get(HeaderUserEmail),
				Nickname: c.Request().Header.Get(HeaderUserNickname),
			}

			userKey, err := identity.UserKey()
			if err != nil {
				log.Debug().Str("path", c.Request().URL.Path).Msg("Request without identity")
				return identityRequiredError(c, "X-User-Email or X-User-Nickname header is required")
			}

			ctx := context.WithValue(c.Request().Context(), IdentityKey, identity)
			ctx = context.WithValue(ctx, UserKeyKey, userKey)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetUserKey extracts the user key from the context
func GetUserKey(c echo.Context) string {
	if key, ok := c.Request().Context().Value(UserKeyKey).(string); ok {
		return key
	}
	return ""
}

// GetIdentity extracts the caller's identity from the context
func GetIdentity(c echo.Context) domain.Identity {
	if identity, ok := c.Request().Context().Value(IdentityKey).(domain.Identity); ok {
		return identity
	}
	return domain.Identity{}
}
