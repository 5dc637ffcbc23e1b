package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/taskflow/pkg/httpx"
)

func TestJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.JSON(rec, http.StatusCreated, map[string]string{"id": "42"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"42"}`, rec.Body.String())
}

func TestError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.Error(rec, http.StatusNotFound, "Task not found.")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Task not found."}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	httpx.ValidationError(rec, "Validation failed.", map[string][]string{
		"title": {"field is required"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"Validation failed.","errors":{"title":["field is required"]}}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice"}`))
		var p payload
		require.NoError(t, httpx.Decode(req, &p))
		assert.Equal(t, "Alice", p.Name)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Alice","evil":true}`))
		var p payload
		assert.ErrorIs(t, httpx.Decode(req, &p), httpx.ErrMalformedBody)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var p payload
		assert.ErrorIs(t, httpx.Decode(req, &p), httpx.ErrMalformedBody)
	})
}
