package ledger

import (
	"strings"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringInput holds the fields for a new recurring expense
type RecurringInput struct {
	Name     string
	Amount   decimal.Decimal
	Category string
}

// Registry keeps recurring expenses in insertion order.
// Like Ledger it is not safe for concurrent use.
type Registry struct {
	entries []*domain.RecurringExpense
	now     func() time.Time
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{now: time.Now}
}

// RegistryFrom rebuilds a registry from persisted entries, keeping their order
func RegistryFrom(entries []*domain.RecurringExpense) *Registry {
	r := NewRegistry()
	for _, e := range entries {
		if e == nil {
			continue
		}
		r.entries = append(r.entries, e.Clone())
	}
	return r
}

// Add validates input and appends a new active entry
func (r *Registry) Add(input RecurringInput) (*domain.RecurringExpense, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = domain.DefaultRecurringCategory
	}
	if len(category) > domain.MaxCategoryLength {
		return nil, domain.ErrCategoryTooLong
	}

	entry := &domain.RecurringExpense{
		ID:        newID(),
		Name:      name,
		Amount:    input.Amount,
		Category:  category,
		Active:    true,
		CreatedAt: r.now().UTC(),
	}
	r.entries = append(r.entries, entry)
	return entry.Clone(), nil
}

// Toggle flips the active flag of the entry with id
func (r *Registry) Toggle(id string) (*domain.RecurringExpense, error) {
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrRecurringNotFound
	}
	r.entries[i].Active = !r.entries[i].Active
	return r.entries[i].Clone(), nil
}

// Delete removes the entry with id. Deleting an unknown id is an error.
func (r *Registry) Delete(id string) error {
	i := r.indexOf(id)
	if i < 0 {
		return domain.ErrRecurringNotFound
	}
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	return nil
}

// Get returns a copy of the entry with id
func (r *Registry) Get(id string) (*domain.RecurringExpense, error) {
	i := r.indexOf(id)
	if i < 0 {
		return nil, domain.ErrRecurringNotFound
	}
	return r.entries[i].Clone(), nil
}

// List returns copies of all entries in insertion order
func (r *Registry) List() []*domain.RecurringExpense {
	out := make([]*domain.RecurringExpense, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of entries
func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) indexOf(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// newID returns a time-ordered UUIDv7, falling back to a random UUID
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
