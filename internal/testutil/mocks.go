package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
)

// MockSnapshotRepository is a mock implementation of domain.SnapshotRepository
type MockSnapshotRepository struct {
	mu        sync.Mutex
	Snapshots map[string]*domain.Snapshot
	LoadFn    func(userKey string) (*domain.Snapshot, error)
	SaveFn    func(userKey string, snapshot *domain.Snapshot) error
	SaveCalls int
}

// NewMockSnapshotRepository creates a new MockSnapshotRepository
func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{
		Snapshots: make(map[string]*domain.Snapshot),
	}
}

// Load retrieves a stored snapshot
func (m *MockSnapshotRepository) Load(_ context.Context, userKey string) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadFn != nil {
		return m.LoadFn(userKey)
	}
	if snap, ok := m.Snapshots[userKey]; ok {
		return snap, nil
	}
	return nil, domain.ErrSnapshotNotFound
}

// Save stores a snapshot
func (m *MockSnapshotRepository) Save(_ context.Context, userKey string, snapshot *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveFn != nil {
		return m.SaveFn(userKey, snapshot)
	}
	m.Snapshots[userKey] = snapshot
	return nil
}

// Get returns the last saved snapshot for a user
func (m *MockSnapshotRepository) Get(userKey string) *domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Snapshots[userKey]
}

// Saves returns the number of Save calls
func (m *MockSnapshotRepository) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SaveCalls
}

// FailSaves makes every Save return an error
func (m *MockSnapshotRepository) FailSaves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveFn = func(string, *domain.Snapshot) error {
		return fmt.Errorf("disk full")
	}
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	UserKey string
	Event   websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userKey string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserKey: userKey, Event: event})
}

// Types returns the types of all recorded events in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Events))
	for i, e := range m.Events {
		out[i] = e.Event.Type
	}
	return out
}

// Notifications returns the messages of recorded notification events
func (m *MockEventPublisher) Notifications() []websocket.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []websocket.Notification
	for _, e := range m.Events {
		if n, ok := e.Event.Payload.(websocket.Notification); ok {
			out = append(out, n)
		}
	}
	return out
}

// Reset clears recorded events
func (m *MockEventPublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = nil
}

// MockReportRepository is an in-memory storage.ReportRepository
type MockReportRepository struct {
	mu        sync.Mutex
	Objects    map[string][]byte
	UploadErr  error
	PresignErr error
}

// NewMockReportRepository creates a new MockReportRepository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{Objects: make(map[string][]byte)}
}

// Upload stores data
func (m *MockReportRepository) Upload(_ context.Context, objectPath string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.Objects[objectPath] = data
	return objectPath, nil
}

// GeneratePresignedURL returns a fake URL
func (m *MockReportRepository) GeneratePresignedURL(_ context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	return fmt.Sprintf("https://reports.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// Delete removes an object
func (m *MockReportRepository) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}
