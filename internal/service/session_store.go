package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// User-facing notification messages
const (
	MsgLoadFailed       = "Error loading saved data"
	MsgSaveFailed       = "Error saving data"
	MsgRecurringDeleted = "Recurring expense deleted"
)

// session is the in-memory state of one user. mu serializes all access.
type session struct {
	mu       sync.Mutex
	userKey  string
	ledger   *ledger.Ledger
	registry *ledger.Registry
	loaded   bool
	closed   bool
	dirty    bool // last save failed
	lastUsed time.Time
}

// LoadResult describes how a session was opened
type LoadResult struct {
	UserKey     string `json:"userKey"`
	Restored    bool   `json:"restored"`    // a saved snapshot was found
	Recovered   bool   `json:"recovered"`   // saved data was malformed and an empty ledger was used
	AlreadyOpen bool   `json:"alreadyOpen"` // the session was in memory already
}

// SessionStore owns one ledger and registry per user key and persists them
// through the snapshot repository after every mutation.
type SessionStore struct {
	repo      domain.SnapshotRepository
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(repo domain.SnapshotRepository, publisher websocket.EventPublisher, logger zerolog.Logger) *SessionStore {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &SessionStore{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With().Str("component", "session_store").Logger(),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Open loads the user's ledger (login). Opening an already open session is a no-op.
func (s *SessionStore) Open(ctx context.Context, identity domain.Identity) (*LoadResult, error) {
	userKey, err := identity.UserKey()
	if err != nil {
		return nil, err
	}

	sess, result, err := s.acquire(ctx, userKey)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if result == nil {
		result = &LoadResult{UserKey: userKey, AlreadyOpen: true}
	}
	return result, nil
}

// Close flushes the user's session and drops it from memory (logout).
// A session whose flush fails stays in memory and the error wraps ErrPersistenceFailure.
func (s *SessionStore) Close(ctx context.Context, userKey string) error {
	s.mu.Lock()
	sess, ok := s.sessions[userKey]
	s.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return domain.ErrSessionNotFound
	}

	if err := s.flushLocked(ctx, sess); err != nil {
		return err
	}
	s.evictLocked(sess)

	s.logger.Info().Str("user_key", userKey).Msg("Session closed")
	s.publisher.Publish(userKey, websocket.SessionClosed(map[string]string{"userKey": userKey}))
	return nil
}

// Sweep flushes and evicts sessions idle for longer than idle. It returns the
// number of evicted sessions.
func (s *SessionStore) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	candidates := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.Unlock()

	evicted := 0
	for _, sess := range candidates {
		if ctx.Err() != nil {
			break
		}
		sess.mu.Lock()
		if !sess.closed && sess.lastUsed.Before(cutoff) {
			if err := s.flushLocked(ctx, sess); err != nil {
				s.logger.Warn().Err(err).Str("user_key", sess.userKey).Msg("Keeping idle session after failed flush")
			} else {
				s.evictLocked(sess)
				evicted++
			}
		}
		sess.mu.Unlock()
	}
	return evicted
}

// FlushAll saves every session with unsaved changes. Used on shutdown.
func (s *SessionStore) FlushAll(ctx context.Context) error {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		all = append(all, sess)
	}
	s.mu.Unlock()

	var errs []error
	for _, sess := range all {
		sess.mu.Lock()
		if !sess.closed {
			if err := s.flushLocked(ctx, sess); err != nil {
				errs = append(errs, err)
			}
		}
		sess.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Count returns the number of sessions in memory
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Read runs fn against a private copy of the user's ledger and registry.
// The copy is taken under the session lock so fn never observes a partial mutation.
func (s *SessionStore) Read(ctx context.Context, userKey string, fn func(l *ledger.Ledger, r *ledger.Registry) error) error {
	sess, _, err := s.acquire(ctx, userKey)
	if err != nil {
		return err
	}
	l := sess.ledger.Clone()
	r := ledger.RegistryFrom(sess.registry.List())
	sess.mu.Unlock()

	return fn(l, r)
}

// Mutate runs fn with the session locked and saves the snapshot when fn succeeds.
// A failed save is logged and reported to the user but never rolls back memory;
// the returned bool reports whether the save succeeded.
func (s *SessionStore) Mutate(ctx context.Context, userKey string, fn func(l *ledger.Ledger, r *ledger.Registry) error) (bool, error) {
	sess, _, err := s.acquire(ctx, userKey)
	if err != nil {
		return false, err
	}
	defer sess.mu.Unlock()

	if err := fn(sess.ledger, sess.registry); err != nil {
		return false, err
	}

	if err := s.saveLocked(ctx, sess); err != nil {
		s.publisher.Publish(userKey, websocket.Notify(websocket.LevelError, MsgSaveFailed))
		return false, nil
	}
	return true, nil
}

// Publish forwards an event for userKey
func (s *SessionStore) Publish(userKey string, event websocket.Event) {
	s.publisher.Publish(userKey, event)
}

// acquire returns the user's session locked, loading it on first use.
// The LoadResult is non-nil only when this call performed the load.
func (s *SessionStore) acquire(ctx context.Context, userKey string) (*session, *LoadResult, error) {
	if userKey == "" {
		return nil, nil, domain.ErrInvalidIdentity
	}

	for {
		s.mu.Lock()
		sess, ok := s.sessions[userKey]
		if !ok {
			sess = &session{userKey: userKey}
			s.sessions[userKey] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		if sess.closed {
			// Evicted between lookup and lock; start over with a fresh session
			sess.mu.Unlock()
			continue
		}

		var result *LoadResult
		if !sess.loaded {
			var err error
			if result, err = s.loadLocked(ctx, sess); err != nil {
				sess.mu.Unlock()
				return nil, nil, err
			}
		}
		sess.lastUsed = s.now()
		return sess, result, nil
	}
}

// loadLocked restores sess from the repository. A missing or malformed
// snapshot leaves an empty, writable ledger. Any other failure leaves sess
// unloaded so nothing can be saved over the stored data; the next access
// retries the load.
func (s *SessionStore) loadLocked(ctx context.Context, sess *session) (*LoadResult, error) {
	result := &LoadResult{UserKey: sess.userKey}

	// Abandoned requests must not turn into a failed load
	snap, err := s.repo.Load(context.WithoutCancel(ctx), sess.userKey)
	var l *ledger.Ledger
	if err == nil {
		l, err = ledger.FromTree(snap.Balance, snap.Expenses)
	}

	switch {
	case err == nil:
		sess.ledger = l
		sess.registry = ledger.RegistryFrom(snap.Recurring)
		result.Restored = true
		s.logger.Info().
			Str("user_key", sess.userKey).
			Int("years", len(l.Years())).
			Int("recurring", sess.registry.Len()).
			Msg("Session restored")
	case errors.Is(err, domain.ErrSnapshotNotFound):
		sess.ledger = ledger.New()
		sess.registry = ledger.NewRegistry()
		s.logger.Info().Str("user_key", sess.userKey).Msg("New session")
	case errors.Is(err, domain.ErrMalformedSnapshot):
		sess.ledger = ledger.New()
		sess.registry = ledger.NewRegistry()
		result.Recovered = true
		s.logger.Error().Err(err).Str("user_key", sess.userKey).Msg("Saved data is malformed, starting empty")
		s.publisher.Publish(sess.userKey, websocket.Notify(websocket.LevelError, MsgLoadFailed))
	default:
		s.logger.Error().Err(err).Str("user_key", sess.userKey).Msg("Failed to load snapshot")
		s.publisher.Publish(sess.userKey, websocket.Notify(websocket.LevelError, MsgLoadFailed))
		return nil, fmt.Errorf("%w: load: %v", domain.ErrPersistenceFailure, err)
	}

	sess.loaded = true
	return result, nil
}

func (s *SessionStore) snapshotLocked(sess *session) *domain.Snapshot {
	return &domain.Snapshot{
		Balance:   sess.ledger.Balance(),
		Expenses:  sess.ledger.Tree(),
		Recurring: sess.registry.List(),
		UpdatedAt: s.now().UTC(),
	}
}

func (s *SessionStore) saveLocked(ctx context.Context, sess *session) error {
	if err := s.repo.Save(ctx, sess.userKey, s.snapshotLocked(sess)); err != nil {
		sess.dirty = true
		s.logger.Error().Err(err).Str("user_key", sess.userKey).Msg("Failed to save snapshot")
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	sess.dirty = false
	return nil
}

// flushLocked saves sess only if a previous save failed
func (s *SessionStore) flushLocked(ctx context.Context, sess *session) error {
	if !sess.loaded || !sess.dirty {
		return nil
	}
	return s.saveLocked(ctx, sess)
}

// evictLocked removes sess from the map. The caller holds sess.mu.
func (s *SessionStore) evictLocked(sess *session) {
	sess.closed = true
	s.mu.Lock()
	if s.sessions[sess.userKey] == sess {
		delete(s.sessions, sess.userKey)
	}
	s.mu.Unlock()
}
