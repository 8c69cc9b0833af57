package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondConflict(rec, "слот занят")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Code: http.StatusConflict, Message: "слот занят"}, body)
}

func TestRespondServiceUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondServiceUnavailable(rec, 1500*time.Millisecond, "retry")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	RespondServiceUnavailable(rec, 0, "retry")
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var v struct {
		Date string `json:"date"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2025-10-15"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "2025-10-15", v.Date)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"date":"2025-10-15","extra":1}`))
	assert.Error(t, DecodeJSON(r, &v))
}
