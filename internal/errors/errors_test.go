package errors

import (
	"errors"
	"fmt"
	"testing"
)

type customError struct {
	Msg string
}

func (e customError) Error() string { return e.Msg }

func TestNew(t *testing.T) {
	err := New("test error")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "test error" {
		t.Errorf("expected 'test error', got '%s'", err.Error())
	}
}

func TestWrap(t *testing.T) {
	t.Run("wrap non-nil error", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "secret lookup")
		if wrapped == nil {
			t.Fatal("expected wrapped error, got nil")
		}
		expected := "secret lookup: not found"
		if wrapped.Error() != expected {
			t.Errorf("expected '%s', got '%s'", expected, wrapped.Error())
		}
		if !errors.Is(wrapped, ErrNotFound) {
			t.Error("expected wrapped error to wrap ErrNotFound")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		wrapped := Wrap(nil, "wrapped")
		if wrapped != nil {
			t.Errorf("expected nil, got %v", wrapped)
		}
	})
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrConflict)
	if !Is(wrapped, ErrConflict) {
		t.Error("expected Is to match wrapped sentinel")
	}
	if Is(wrapped, ErrInvalidInput) {
		t.Error("expected Is not to match a different sentinel")
	}
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", customError{Msg: "inner"})

	var target customError
	if !As(wrapped, &target) {
		t.Fatal("expected As to find customError")
	}
	if target.Msg != "inner" {
		t.Errorf("expected 'inner', got '%s'", target.Msg)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrConflict, ErrInvalidInput, ErrUnauthorized, ErrInternal}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
