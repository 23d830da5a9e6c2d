package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when sending to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrClientBackedUp is returned when a client's outbox is full
	ErrClientBackedUp = errors.New("client send buffer full")
)

// ClientInterface is what the hub needs from a connection
type ClientInterface interface {
	ID() string
	UserKey() string
	Send(data []byte) error
	Close() error
}

// tabs holds the open connections of one user by client ID
type tabs map[string]ClientInterface

// Hub routes events to every open tab of a user. Safe for concurrent use.
type Hub struct {
	mu    sync.RWMutex
	users map[string]tabs
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]tabs)}
}

func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	userTabs, ok := h.users[client.UserKey()]
	if !ok {
		userTabs = make(tabs)
		h.users[client.UserKey()] = userTabs
	}
	userTabs[client.ID()] = client
	h.mu.Unlock()

	log.Debug().Str("user_key", client.UserKey()).Str("client_id", client.ID()).Msg("WebSocket client registered")
}

// Unregister is a no-op for unknown clients
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userTabs := h.users[client.UserKey()]
	if _, ok := userTabs[client.ID()]; !ok {
		return
	}
	delete(userTabs, client.ID())
	if len(userTabs) == 0 {
		delete(h.users, client.UserKey())
	}
	log.Debug().Str("user_key", client.UserKey()).Str("client_id", client.ID()).Msg("WebSocket client unregistered")
}

// Broadcast delivers event to the user's tabs. Client.Send never blocks, so
// delivery happens inline after the lock is released.
func (h *Hub) Broadcast(userKey string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("user_key", userKey).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	recipients := h.snapshot(userKey)
	for _, c := range recipients {
		if err := c.Send(data); err != nil {
			log.Warn().Err(err).Str("user_key", userKey).Str("client_id", c.ID()).Msg("Dropped event for client")
		}
	}
	if len(recipients) > 0 {
		log.Debug().Str("user_key", userKey).Str("event_type", event.Type).Int("client_count", len(recipients)).Msg("Broadcast event")
	}
}

func (h *Hub) snapshot(userKey string) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ClientInterface, 0, len(h.users[userKey]))
	for _, c := range h.users[userKey] {
		out = append(out, c)
	}
	return out
}

func (h *Hub) ClientCount(userKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userKey])
}

func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, userTabs := range h.users {
		n += len(userTabs)
	}
	return n
}
