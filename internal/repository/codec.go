// Package repository holds the snapshot encoding shared by the SQL backends.
package repository

import (
	"encoding/json"
	"fmt"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
)

// EncodeExpenses serializes the nested expense tree stored alongside a snapshot
func EncodeExpenses(tree domain.ExpenseTree) ([]byte, error) {
	if tree == nil {
		tree = domain.ExpenseTree{}
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode expenses: %w", err)
	}
	return data, nil
}

// DecodeExpenses parses a stored expense tree. Empty input yields an empty tree.
func DecodeExpenses(data []byte) (domain.ExpenseTree, error) {
	tree := domain.ExpenseTree{}
	if len(data) == 0 {
		return tree, nil
	}
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode expenses: %v: %w", err, domain.ErrMalformedSnapshot)
	}
	return tree, nil
}
