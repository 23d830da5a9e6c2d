package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/ledger"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// LedgerService handles balance and expense operations
type LedgerService struct {
	store             *SessionStore
	currencySymbol    string
	defaultCategories []string
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(store *SessionStore, currencySymbol string, defaultCategories []string) *LedgerService {
	return &LedgerService{
		store:             store,
		currencySymbol:    currencySymbol,
		defaultCategories: defaultCategories,
	}
}

// RecordExpenseInput holds the input for recording an expense
type RecordExpenseInput struct {
	Year     int
	Month    int
	Category string
	Amount   decimal.Decimal
}

// ExpenseResult is returned after an expense is recorded
type ExpenseResult struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	CategoryTotal decimal.Decimal `json:"categoryTotal"`
	Balance       decimal.Decimal `json:"balance"`
	Persisted     bool            `json:"persisted"`
}

// CreditResult is returned after a credit is recorded
type CreditResult struct {
	Amount    decimal.Decimal `json:"amount"`
	Balance   decimal.Decimal `json:"balance"`
	Persisted bool            `json:"persisted"`
}

// RecordExpense adds an expense to the user's ledger
func (s *LedgerService) RecordExpense(ctx context.Context, userKey string, input RecordExpenseInput) (*ExpenseResult, error) {
	var result ExpenseResult
	persisted, err := s.store.Mutate(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		if err := l.RecordExpense(input.Year, input.Month, input.Category, input.Amount); err != nil {
			return err
		}
		// Already validated by the ledger
		category, _ := domain.NormalizeCategory(input.Category)
		result = ExpenseResult{
			Year:          input.Year,
			Month:         input.Month,
			Category:      category,
			Amount:        input.Amount,
			CategoryTotal: l.MonthExpenses(input.Year, input.Month)[category],
			Balance:       l.Balance(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Persisted = persisted

	s.store.Publish(userKey, websocket.ExpenseRecorded(result))
	s.store.Publish(userKey, websocket.Notify(websocket.LevelSuccess,
		fmt.Sprintf("Added %s%s to %s", s.currencySymbol, input.Amount.String(), result.Category)))
	return &result, nil
}

// RecordCredit adds amount to the user's balance
func (s *LedgerService) RecordCredit(ctx context.Context, userKey string, amount decimal.Decimal) (*CreditResult, error) {
	var result CreditResult
	persisted, err := s.store.Mutate(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		if err := l.RecordCredit(amount); err != nil {
			return err
		}
		result = CreditResult{Amount: amount, Balance: l.Balance()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Persisted = persisted

	s.store.Publish(userKey, websocket.CreditRecorded(result))
	s.store.Publish(userKey, websocket.Notify(websocket.LevelSuccess,
		fmt.Sprintf("Added %s%s to balance", s.currencySymbol, amount.String())))
	return &result, nil
}

// Balance returns the user's current balance
func (s *LedgerService) Balance(ctx context.Context, userKey string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		balance = l.Balance()
		return nil
	})
	return balance, err
}

// MonthSummary lists the categories recorded in one month, sorted by name
func (s *LedgerService) MonthSummary(ctx context.Context, userKey string, year, month int) (*domain.MonthSummary, error) {
	if !domain.ValidMonth(month) {
		return nil, domain.ErrInvalidPeriod
	}
	if !domain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}

	summary := &domain.MonthSummary{
		Year:       year,
		Month:      month,
		MonthName:  domain.MonthNames[month],
		Categories: make([]domain.CategoryAmount, 0),
		Total:      decimal.Zero,
	}
	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		for category, amount := range l.MonthExpenses(year, month) {
			summary.Categories = append(summary.Categories, domain.CategoryAmount{Category: category, Amount: amount})
		}
		summary.Total = ledger.MonthTotal(l, year, month)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].Category < summary.Categories[j].Category
	})
	return summary, nil
}

// Categories returns the default categories followed by any other category the
// user has recorded, sorted
func (s *LedgerService) Categories(ctx context.Context, userKey string) ([]string, error) {
	out := append([]string(nil), s.defaultCategories...)
	known := make(map[string]bool, len(out))
	for _, c := range out {
		known[c] = true
	}

	err := s.store.Read(ctx, userKey, func(l *ledger.Ledger, _ *ledger.Registry) error {
		for _, c := range l.Categories() {
			if !known[c] {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}
