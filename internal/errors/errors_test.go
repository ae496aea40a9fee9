package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	err := Wrap(ErrInternalServer, inner)

	if err.Code != "INTERNAL_ERROR" {
		t.Errorf("expected code INTERNAL_ERROR, got %s", err.Code)
	}
	if !stderrors.Is(err, inner) {
		t.Error("expected wrapped error to unwrap to inner")
	}
	if !stderrors.Is(err, ErrInternalServer) {
		t.Error("expected wrapped error to match its sentinel")
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidInput, "installments must be between 1 and 360")

	if err.Message != "installments must be between 1 and 360" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.StatusCode)
	}
	if ErrInvalidInput.Message != "Invalid input" {
		t.Error("sentinel must not be mutated")
	}
	if stderrors.Is(err, ErrNotFound) {
		t.Error("different codes must not match")
	}
}
