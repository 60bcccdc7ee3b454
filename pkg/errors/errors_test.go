package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusinessError_Unwrap(t *testing.T) {
	err := fmt.Errorf("borrow: %w", WrapNoCopiesAvailable(12))

	assert.True(t, errors.Is(err, ErrNoCopiesAvailable))
	assert.Contains(t, err.Error(), ErrCodeNoCopiesAvailable)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", WrapBookNotFound(1), http.StatusNotFound},
		{"no copies", WrapNoCopiesAvailable(1), http.StatusBadRequest},
		{"borrow limit", WrapBorrowLimitReached(5), http.StatusBadRequest},
		{"duplicate email", WrapEmailInUse("a@b.c"), http.StatusConflict},
		{"bad credentials", WrapInvalidCredentials(), http.StatusUnauthorized},
		{"other member", WrapNotBorrower(3), http.StatusForbidden},
		{"database", WrapDatabaseError(errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "You have reached the maximum borrowing limit of 5 books", PublicMessage(WrapBorrowLimitReached(5)))
	assert.Equal(t, "Internal server error", PublicMessage(WrapDatabaseError(errors.New("pq: relation does not exist"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
}
