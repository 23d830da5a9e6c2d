package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAllowedOrigins = []string{"http://localhost:3000", "https://budgetpro.app"}

func TestWebSocketHandler_HandleWS_MissingUser(t *testing.T) {
	e := echo.New()
	h := NewWebSocketHandler(websocket.NewHub(), testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_ValidUser_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, testAllowedOrigins)

	// Valid user but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?user=asha@example.com", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	// gorilla/websocket fails the upgrade without upgrade headers
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "missing user")
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestIdentityFromQuery(t *testing.T) {
	e := echo.New()

	tests := []struct {
		query   string
		wantKey string
	}{
		{"user=Asha@Example.com", "asha@example.com"},
		{"user=asha", "asha"},
		{"email=ravi@example.com&nickname=ravi", "ravi@example.com"},
		{"nickname=ravi", "ravi"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ws?"+tt.query, nil), httptest.NewRecorder())

			key, err := identityFromQuery(c).UserKey()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://budgetpro.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}

func TestWebSocketHandler_DeliversUserEvents(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	e.GET("/ws", NewWebSocketHandler(hub, testAllowedOrigins).HandleWS)
	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?user=Asha@example.com"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount("asha@example.com") == 1 },
		time.Second, 10*time.Millisecond)

	hub.Publish("asha@example.com", websocket.Notify(websocket.LevelSuccess, "Added ₹250 to Food"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "Added ₹250 to Food")

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.TotalClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}
