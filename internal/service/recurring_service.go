package service

import (
	"context"
	"fmt"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// RecurringService handles recurring expense templates
type RecurringService struct {
	store *SessionStore
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(store *SessionStore) *RecurringService {
	return &RecurringService{store: store}
}

// CreateRecurringInput holds the input for creating a recurring expense
type CreateRecurringInput struct {
	Name     string
	Amount   decimal.Decimal
	Category string
}

// RecurringResult is returned by recurring mutations
type RecurringResult struct {
	Recurring *domain.RecurringExpense `json:"recurring"`
	Persisted bool                     `json:"persisted"`
}

// CreateRecurring adds a recurring expense. It is not posted to the ledger.
func (s *RecurringService) CreateRecurring(ctx context.Context, userKey string, input CreateRecurringInput) (*RecurringResult, error) {
	var entry *domain.RecurringExpense
	persisted, err := s.store.Mutate(ctx, userKey, func(_ *ledger.Ledger, r *ledger.Registry) error {
		var err error
		entry, err = r.Add(ledger.RecurringInput{
			Name:     input.Name,
			Amount:   input.Amount,
			Category: input.Category,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &RecurringResult{Recurring: entry, Persisted: persisted}
	s.store.Publish(userKey, websocket.RecurringCreated(entry))
	s.store.Publish(userKey, websocket.Notify(websocket.LevelSuccess,
		fmt.Sprintf("Added recurring expense: %s", entry.Name)))
	return result, nil
}

// ToggleRecurring flips the active flag of a recurring expense
func (s *RecurringService) ToggleRecurring(ctx context.Context, userKey, id string) (*RecurringResult, error) {
	var entry *domain.RecurringExpense
	persisted, err := s.store.Mutate(ctx, userKey, func(_ *ledger.Ledger, r *ledger.Registry) error {
		var err error
		entry, err = r.Toggle(id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.store.Publish(userKey, websocket.RecurringUpdated(entry))
	return &RecurringResult{Recurring: entry, Persisted: persisted}, nil
}

// DeleteRecurring removes a recurring expense
func (s *RecurringService) DeleteRecurring(ctx context.Context, userKey, id string) (bool, error) {
	persisted, err := s.store.Mutate(ctx, userKey, func(_ *ledger.Ledger, r *ledger.Registry) error {
		return r.Delete(id)
	})
	if err != nil {
		return false, err
	}

	s.store.Publish(userKey, websocket.RecurringDeleted(map[string]string{"id": id}))
	s.store.Publish(userKey, websocket.Notify(websocket.LevelInfo, MsgRecurringDeleted))
	return persisted, nil
}

// ListRecurring returns the user's recurring expenses in creation order
func (s *RecurringService) ListRecurring(ctx context.Context, userKey string) ([]*domain.RecurringExpense, error) {
	var out []*domain.RecurringExpense
	err := s.store.Read(ctx, userKey, func(_ *ledger.Ledger, r *ledger.Registry) error {
		out = r.List()
		return nil
	})
	return out, err
}
