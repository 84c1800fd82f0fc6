package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"validation", NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{"wrapped assignment failure", fmt.Errorf("run: %w", NewAssignmentFailed("T1", errors.New("db down"))), "ASSIGNMENT_FAILED", http.StatusBadGateway},
		{"deadline", fmt.Errorf("evaluate: %w", context.DeadlineExceeded), "CANCELLED", http.StatusServiceUnavailable},
		{"plain", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestAssignmentFailedCarriesTicketID(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAssignmentFailed("T-42", cause)
	assert.ErrorIs(t, err, cause)
	de := ToDomainError(err)
	assert.Equal(t, "T-42", de.Details["ticket_id"])
}
