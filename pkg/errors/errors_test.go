package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestProviderCodeUnwraps(t *testing.T) {
	err := fmt.Errorf("sign in: %w", NewProviderError("auth/user-not-found", "EMAIL_NOT_FOUND"))
	if got := ProviderCode(err); got != "auth/user-not-found" {
		t.Errorf("expected auth/user-not-found, got %q", got)
	}
}

func TestProviderCodeOfPlainError(t *testing.T) {
	if got := ProviderCode(fmt.Errorf("boom")); got != "" {
		t.Errorf("expected empty code, got %q", got)
	}
	if got := ProviderCode(nil); got != "" {
		t.Errorf("expected empty code for nil, got %q", got)
	}
}

func TestProviderErrorMessage(t *testing.T) {
	if got := NewProviderError("auth/timeout", "").Error(); got != "auth/timeout" {
		t.Errorf("unexpected message %q", got)
	}
	if got := NewProviderError("auth/weak-password", "WEAK_PASSWORD").Error(); got != "auth/weak-password: WEAK_PASSWORD" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestInternalErrorDefaultMessage(t *testing.T) {
	if got := NewInternalError().Error(); got != "internal server error" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestInternalErrorMessage(t *testing.T) {
	err := error(&InternalError{Message: "take popup state: redis down"})
	var ie *InternalError
	if !stderrors.As(fmt.Errorf("complete: %w", err), &ie) || ie.Message != "take popup state: redis down" {
		t.Errorf("unexpected internal error %v", err)
	}
	if ProviderCode(err) != "" {
		t.Error("internal error carries no platform code")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	if got := NewValidationError("missing required fields: email").Error(); got != "missing required fields: email" {
		t.Errorf("unexpected message %q", got)
	}
}
