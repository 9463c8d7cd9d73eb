package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatuses(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", ValidationFailed([]FieldError{{Msg: "Text is required"}}), http.StatusBadRequest},
		{"unauthorized", Unauthorized("No token, authorization denied"), http.StatusUnauthorized},
		{"forbidden", Forbidden("User not authorized"), http.StatusForbidden},
		{"not found", NotFound("Post not found"), http.StatusNotFound},
		{"conflict", Conflict("Post already liked"), http.StatusBadRequest},
		{"upstream not found", Upstream("No Github profile found", true, nil), http.StatusNotFound},
		{"upstream failure", Upstream("GitHub unavailable", false, errors.New("boom")), http.StatusBadGateway},
		{"internal", Internal(errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Status != tt.want {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.want)
			}
			if len(tt.err.Body().Errors) == 0 {
				t.Error("expected at least one error message in body")
			}
		})
	}
}

func TestInternalHidesCause(t *testing.T) {
	e := Internal(errors.New("connection refused to 10.0.0.3"))
	if got := e.Body().Errors[0].Msg; got != "Server error" {
		t.Errorf("client message = %q", got)
	}
}

func TestFrom(t *testing.T) {
	nf := NotFound("Post not found")
	wrapped := fmt.Errorf("loading post: %w", nf)

	if got := From(wrapped); got != nf {
		t.Errorf("From(wrapped) = %v, want the original *Error", got)
	}

	plain := errors.New("boom")
	got := From(plain)
	if got.Kind != KindInternal || !errors.Is(got, plain) {
		t.Errorf("From(plain) = %+v, want Internal wrapping the cause", got)
	}
}
