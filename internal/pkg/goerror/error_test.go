package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("db down")), want: http.StatusInternalServerError},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "throttled", err: NewBusiness("wait", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "invalid input", err: NewInvalidInput(nil, "action", "required"), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gerr, ok := As(fmt.Errorf("wrapped: %w", tt.err))
			if !ok {
				t.Fatalf("As() did not find *Error in %v", tt.err)
			}
			if got := gerr.StatusCode(); got != tt.want {
				t.Errorf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewInvalidInputFields(t *testing.T) {
	gerr, _ := As(NewInvalidInput(nil, "action", "action is required", "field", "field is required"))
	if got := gerr.Fields()["field"]; got != "field is required" {
		t.Errorf("Fields()[field] = %q", got)
	}

	gerr, _ = As(NewInvalidInput(nil, "odd"))
	if gerr.Code() != CodeInvalidFormat {
		t.Errorf("odd pairs Code() = %s, want %s", gerr.Code(), CodeInvalidFormat)
	}
}

func TestNewServerKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewServer(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(NewServer(cause), cause) = false")
	}

	gerr, _ := As(err)
	if gerr.Msg() != "Internal server error" {
		t.Errorf("Msg() = %q", gerr.Msg())
	}
}
