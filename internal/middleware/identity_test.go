package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentity(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		nickname    string
		wantStatus  int
		wantUserKey string
	}{
		{"email wins", " Asha@Example.com ", "asha", http.StatusOK, "asha@example.com"},
		{"nickname fallback", "", "asha", http.StatusOK, "asha"},
		{"missing identity", "", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ledger/balance", nil)
			if tt.email != "" {
				req.Header.Set(HeaderUserEmail, tt.email)
			}
			if tt.nickname != "" {
				req.Header.Set(HeaderUserNickname, tt.nickname)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var gotKey string
			handler := Identity()(func(c echo.Context) error {
				gotKey = GetUserKey(c)
				assert.Equal(t, tt.nickname, GetIdentity(c).Nickname)
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, handler(c))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUserKey, gotKey)

			if tt.wantStatus == http.StatusUnauthorized {
				var body problemDetails
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, errorTypeIdentityRequired, body.Type)
				assert.Equal(t, "/api/v1/ledger/balance", body.Instance)
			}
		})
	}
}

func TestGetUserKey_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Empty(t, GetUserKey(c))
	assert.Equal(t, "", GetIdentity(c).Email)
}
