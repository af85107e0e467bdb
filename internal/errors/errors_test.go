package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrInternalServer, cause)

	if err.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.Message != ErrInternalServer.Message {
		t.Errorf("expected sentinel message, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to unwrap to cause")
	}
	if ErrInternalServer.Internal != nil {
		t.Error("sentinel must not be mutated")
	}
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrInvalidPin, "Wrong PIN. 2 attempts left.")

	if err.Code != ErrInvalidPin.Code {
		t.Errorf("expected %s, got %s", ErrInvalidPin.Code, err.Code)
	}
	if err.Error() != "Wrong PIN. 2 attempts left." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCodeOf(t *testing.T) {
	t.Run("app_error", func(t *testing.T) {
		if got := CodeOf(ErrDuplicateCard); got != "DUPLICATE_CARD" {
			t.Errorf("expected DUPLICATE_CARD, got %q", got)
		}
	})

	t.Run("wrapped_app_error", func(t *testing.T) {
		err := fmt.Errorf("completing flow: %w", ErrCardNotFound)
		if got := CodeOf(err); got != "CARD_NOT_FOUND" {
			t.Errorf("expected CARD_NOT_FOUND, got %q", got)
		}
	})

	t.Run("plain_error", func(t *testing.T) {
		if got := CodeOf(errors.New("boom")); got != "" {
			t.Errorf("expected empty code, got %q", got)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if got := CodeOf(nil); got != "" {
			t.Errorf("expected empty code, got %q", got)
		}
	})
}

func TestIs(t *testing.T) {
	if !Is(WithMessage(ErrAccountLocked, "locked"), ErrAccountLocked) {
		t.Error("expected codes to match")
	}
	if Is(ErrAccountLocked, ErrSessionExpired) {
		t.Error("expected codes to differ")
	}
	if Is(nil, ErrAccountLocked) {
		t.Error("nil must not match")
	}
}
