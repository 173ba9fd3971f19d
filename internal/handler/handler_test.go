package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khelsaga/venue-booking/internal/model"
	"github.com/khelsaga/venue-booking/internal/repository"
	"github.com/khelsaga/venue-booking/internal/service"
)

func TestWriteServiceError_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"slot conflict", &repository.ConflictError{Slots: []string{"10:00"}}, http.StatusConflict},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"invalid state", repository.ErrInvalidState, http.StatusConflict},
		{"unauthenticated", service.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"validation", fmt.Errorf("%w: at least one slot is required", service.ErrValidation), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("get booking: %w", repository.ErrNotFound), http.StatusNotFound},
		{"storage failure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
			writeServiceError(rec, req, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestWriteServiceError_ConflictNamesSlots(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bookings", nil)
	writeServiceError(rec, req, &repository.ConflictError{Slots: []string{"10:00", "11:00"}})

	require.Equal(t, http.StatusConflict, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"10:00", "11:00"}, body.ConflictingSlots)
	assert.Contains(t, body.Error, "10:00")
}

func TestWriteServiceError_StorageFailureStaysGeneric(t *testing.T) {
	// Operators get the detail in the log; users get a retryable message
	// that leaks nothing.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	writeServiceError(rec, req, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotContains(t, body.Error, "password")
}
