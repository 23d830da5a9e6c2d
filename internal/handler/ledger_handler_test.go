package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordExpense(t *testing.T, env *testEnv, body string) {
	t.Helper()
	c, rec := newUserContext(http.MethodPost, "/api/v1/ledger/expenses", strings.NewReader(body))
	require.NoError(t, env.handlers.Ledger.RecordExpense(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestRecordExpense_Success(t *testing.T) {
	env := setupTestEnv(false)

	recordExpense(t, env, `{"year": 2024, "month": 0, "category": "Food", "amount": "250"}`)

	c, rec := newUserContext(http.MethodPost, "/api/v1/ledger/expenses", strings.NewReader(`{"year": 2024, "month": 0, "category": "Food", "amount": "50"}`))
	require.NoError(t, env.handlers.Ledger.RecordExpense(c))

	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "300.00", response.CategoryTotal)
	assert.Equal(t, "-300.00", response.Balance)
	assert.True(t, response.Persisted)
	assert.Equal(t, "Added ₹50 to Food", env.publisher.Notifications()[1].Message)
}

func TestRecordExpense_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"invalid month", `{"year": 2024, "month": 13, "category": "Food", "amount": "10"}`, "month"},
		{"missing month", `{"year": 2024, "category": "Food", "amount": "10"}`, "month"},
		{"negative amount", `{"year": 2024, "month": 1, "category": "Food", "amount": "-5"}`, "amount"},
		{"malformed amount", `{"year": 2024, "month": 1, "category": "Food", "amount": "ten"}`, "amount"},
		{"empty category", `{"year": 2024, "month": 1, "category": "  ", "amount": "5"}`, "category"},
		{"bad year", `{"year": 1900, "month": 1, "category": "Food", "amount": "5"}`, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(false)
			c, rec := newUserContext(http.MethodPost, "/api/v1/ledger/expenses", strings.NewReader(tt.body))

			require.NoError(t, env.handlers.Ledger.RecordExpense(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.wantField, problem.Errors[0].Field)
			assert.Equal(t, 0, env.repo.Saves())
		})
	}
}

func TestRecordCredit_InvalidBody(t *testing.T) {
	env := setupTestEnv(false)
	c, rec := newUserContext(http.MethodPost, "/api/v1/ledger/credits", strings.NewReader(`{"amount":`))

	require.NoError(t, env.handlers.Ledger.RecordCredit(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordExpense_SaveFailureReported(t *testing.T) {
	env := setupTestEnv(false)
	env.repo.FailSaves()

	c, rec := newUserContext(http.MethodPost, "/api/v1/ledger/expenses", strings.NewReader(`{"year": 2024, "month": 3, "category": "Gym", "amount": "20"}`))
	require.NoError(t, env.handlers.Ledger.RecordExpense(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response ExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.False(t, response.Persisted)
}

func TestGetBalanceAndMonthSummary(t *testing.T) {
	env := setupTestEnv(false)
	recordExpense(t, env, `{"year": 2024, "month": 5, "category": "Transport", "amount": "12.5"}`)
	recordExpense(t, env, `{"year": 2024, "month": 5, "category": "Food", "amount": "7.5"}`)

	c, rec := newUserContext(http.MethodGet, "/api/v1/ledger/balance", nil)
	require.NoError(t, env.handlers.Ledger.GetBalance(c))
	var balance BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "-20.00", balance.Balance)

	c, rec = newUserContext(http.MethodGet, "/api/v1/ledger/expenses/2024/5", nil)
	c.SetParamNames("year", "month")
	c.SetParamValues("2024", "5")
	require.NoError(t, env.handlers.Ledger.GetMonthSummary(c))

	var summary MonthSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "June", summary.MonthName)
	assert.Equal(t, "20.00", summary.Total)
	require.Len(t, summary.Categories, 2)
	assert.Equal(t, "Food", summary.Categories[0].Category)
}

func TestGetMonthSummary_InvalidParams(t *testing.T) {
	env := setupTestEnv(false)

	for _, params := range [][]string{{"abc", "1"}, {"2024", "12"}, {"2024", "x"}} {
		c, rec := newUserContext(http.MethodGet, "/", nil)
		c.SetParamNames("year", "month")
		c.SetParamValues(params...)

		require.NoError(t, env.handlers.Ledger.GetMonthSummary(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, params)
	}
}

func TestGetCategories(t *testing.T) {
	env := setupTestEnv(false)
	recordExpense(t, env, `{"year": 2024, "month": 0, "category": "Pets", "amount": "3"}`)

	c, rec := newUserContext(http.MethodGet, "/api/v1/ledger/categories", nil)
	require.NoError(t, env.handlers.Ledger.GetCategories(c))

	var response CategoriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, domain.DefaultCategories[0], response.Data[0])
	assert.Contains(t, response.Data, "Pets")
}
