package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Booking"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("nope"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", nil), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("mongo"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	plain := Conflict("slot taken")
	if plain.Error() != "CONFLICT: slot taken" {
		t.Errorf("unexpected message: %s", plain.Error())
	}

	cause := errors.New("connection reset")
	wrapped := Internal("query failed", cause)
	if wrapped.Error() != "INTERNAL_ERROR: query failed (caused by: connection reset)" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected the cause to be reachable through Unwrap")
	}
}

func TestWithDetails(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail, got %v", err.Details)
	}

	conflict := Conflict("taken").WithDetails(map[string]any{"from": "cancelled"})
	if conflict.Details["from"] != "cancelled" {
		t.Errorf("expected details to be attached, got %v", conflict.Details)
	}
}

func TestAsAppError(t *testing.T) {
	t.Run("passes AppError through", func(t *testing.T) {
		original := Conflict("taken")
		if got := AsAppError(original); got != original {
			t.Error("expected the same AppError back")
		}
	})

	t.Run("finds AppError in a wrap chain", func(t *testing.T) {
		original := NotFound("Room")
		wrapped := fmt.Errorf("handler: %w", original)
		if got := AsAppError(wrapped); got != original {
			t.Error("expected the wrapped AppError back")
		}
	})

	t.Run("coerces unknown errors to internal", func(t *testing.T) {
		got := AsAppError(errors.New("raw failure"))
		if got.Code != CodeInternal {
			t.Errorf("expected %s, got %s", CodeInternal, got.Code)
		}
		if got.StatusCode() != http.StatusInternalServerError {
			t.Errorf("unexpected status %d", got.StatusCode())
		}
	})
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(InvalidInput("x")) {
		t.Error("expected true for AppError")
	}
	if IsAppError(errors.New("x")) {
		t.Error("expected false for a plain error")
	}
	if IsAppError(nil) {
		t.Error("expected false for nil")
	}
}
