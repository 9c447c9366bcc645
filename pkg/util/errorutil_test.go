package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestHasCode(t *testing.T) {
	err := NewValidationError("bad input", nil)
	if !HasCode(err, CodeValidation) {
		t.Error("direct code not detected")
	}
	if HasCode(err, CodeNotFound) {
		t.Error("wrong code matched")
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if !HasCode(wrapped, CodeValidation) {
		t.Error("wrapped code not detected")
	}
	if HasCode(nil, CodeValidation) {
		t.Error("nil error matched a code")
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	if de.Code != CodeNotFound || de.HTTPStatus != http.StatusNotFound {
		t.Fatalf("got %s/%d, want NOT_FOUND/404", de.Code, de.HTTPStatus)
	}
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	orig := NewConflict("lost the race", nil)
	de := ToDomainError(orig)
	if de.Code != CodeConflict || de.HTTPStatus != http.StatusConflict {
		t.Fatalf("got %s/%d, want CONFLICT/409", de.Code, de.HTTPStatus)
	}
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("connection reset")
	de := ToDomainError(cause)
	if de.Code != CodeStorage {
		t.Fatalf("got %s, want STORAGE_FAILURE", de.Code)
	}
	if !errors.Is(de, cause) {
		t.Error("wrapped error lost its cause")
	}
}

func TestInvalidTransitionStatus(t *testing.T) {
	de := ToDomainError(NewInvalidTransition("terminal state", nil))
	if de.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", de.HTTPStatus)
	}
}
