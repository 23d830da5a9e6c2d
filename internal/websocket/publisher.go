package websocket

// EventPublisher defines the interface for publishing user events
type EventPublisher interface {
	// Publish delivers an event to everything listening for the given user
	Publish(userKey string, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the user's clients
func (h *Hub) Publish(userKey string, event Event) {
	h.Broadcast(userKey, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userKey string, event Event) {}

// MultiPublisher forwards every event to each of its publishers in order
type MultiPublisher []EventPublisher

// Publish implements EventPublisher
func (m MultiPublisher) Publish(userKey string, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(userKey, event)
		}
	}
}
