package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userKey  string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userKey string) *mockClient {
	return &mockClient{
		id:       id,
		userKey:  userKey,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserKey() string {
	return m.userKey
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", "asha@example.com")
	client2 := newMockClient("client-2", "asha@example.com")
	client3 := newMockClient("client-3", "ravi")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount("asha@example.com"))
	assert.Equal(t, 1, hub.ClientCount("ravi"))
	assert.Equal(t, 0, hub.ClientCount("nobody"))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount("asha@example.com"))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount("asha@example.com"))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	tabA := newMockClient("tab-a", "asha@example.com")
	tabB := newMockClient("tab-b", "asha@example.com")
	other := newMockClient("other", "ravi")

	hub.Register(tabA)
	hub.Register(tabB)
	hub.Register(other)

	hub.Broadcast("asha@example.com", ExpenseRecorded(map[string]interface{}{"category": "Food"}))


	assert.Len(t, tabA.GetMessages(), 1)
	assert.Len(t, tabB.GetMessages(), 1)
	assert.Len(t, other.GetMessages(), 0, "other users must not see the event")
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), fmt.Sprintf("user-%d", i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(fmt.Sprintf("user-%d", idx%5), Notify(LevelInfo, "hello"))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", "ghost"))
	})
}

func TestHub_BroadcastToUnknownUser(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast("ghost", Notify(LevelError, "Error saving data"))
	})
}

func TestHub_BroadcastSkipsClosedClient(t *testing.T) {
	hub := NewHub()
	open := newMockClient("open", "asha@example.com")
	closed := newMockClient("closed", "asha@example.com")
	require.NoError(t, closed.Close())

	hub.Register(open)
	hub.Register(closed)

	hub.Broadcast("asha@example.com", Notify(LevelSuccess, "Added ₹250 to Food"))

	assert.Len(t, open.GetMessages(), 1)
	assert.Empty(t, closed.GetMessages())
	assert.Equal(t, 2, hub.ClientCount("asha@example.com"))
}
