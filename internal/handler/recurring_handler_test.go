package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRecurring(t *testing.T, env *testEnv, body string) RecurringResponse {
	t.Helper()
	c, rec := newUserContext(http.MethodPost, "/api/v1/recurring", strings.NewReader(body))
	require.NoError(t, env.handlers.Recurring.CreateRecurring(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response RecurringResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func TestCreateRecurring_Success(t *testing.T) {
	env := setupTestEnv(false)

	response := createRecurring(t, env, `{"name": "Netflix", "amount": "499"}`)

	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "Netflix", response.Name)
	assert.Equal(t, "499.00", response.Amount)
	assert.Equal(t, "Subscription", response.Category)
	assert.True(t, response.Active)
	require.NotNil(t, response.Persisted)
	assert.True(t, *response.Persisted)
}

func TestCreateRecurring_ValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty name", `{"name": "", "amount": "100"}`, "name"},
		{"long name", `{"name": "` + strings.Repeat("n", 256) + `", "amount": "100"}`, "name"},
		{"zero amount", `{"name": "Gym", "amount": "0"}`, "amount"},
		{"invalid amount", `{"name": "Gym", "amount": "abc"}`, "amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(false)
			c, rec := newUserContext(http.MethodPost, "/api/v1/recurring", strings.NewReader(tt.body))

			require.NoError(t, env.handlers.Recurring.CreateRecurring(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.wantField, problem.Errors[0].Field)
		})
	}
}

func TestRecurring_ToggleDeleteList(t *testing.T) {
	env := setupTestEnv(false)
	netflix := createRecurring(t, env, `{"name": "Netflix", "amount": "499", "category": "Subscription"}`)
	createRecurring(t, env, `{"name": "Gym", "amount": "1200", "category": "Health"}`)

	c, rec := newUserContext(http.MethodPatch, "/api/v1/recurring/"+netflix.ID+"/toggle", nil)
	c.SetParamNames("id")
	c.SetParamValues(netflix.ID)
	require.NoError(t, env.handlers.Recurring.ToggleRecurring(c))
	var toggled RecurringResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggled))
	assert.False(t, toggled.Active)

	c, rec = newUserContext(http.MethodDelete, "/api/v1/recurring/"+netflix.ID, nil)
	c.SetParamNames("id")
	c.SetParamValues(netflix.ID)
	require.NoError(t, env.handlers.Recurring.DeleteRecurring(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newUserContext(http.MethodPatch, "/api/v1/recurring/"+netflix.ID+"/toggle", nil)
	c.SetParamNames("id")
	c.SetParamValues(netflix.ID)
	require.NoError(t, env.handlers.Recurring.ToggleRecurring(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorTypeNotFound, decodeProblem(t, rec).Type)

	c, rec = newUserContext(http.MethodGet, "/api/v1/recurring", nil)
	require.NoError(t, env.handlers.Recurring.ListRecurring(c))
	var list RecurringListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "Gym", list.Data[0].Name)
	assert.Nil(t, list.Data[0].Persisted)
}

func TestDeleteRecurring_NotFound(t *testing.T) {
	env := setupTestEnv(false)
	c, rec := newUserContext(http.MethodDelete, "/api/v1/recurring/nope", nil)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	require.NoError(t, env.handlers.Recurring.DeleteRecurring(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
