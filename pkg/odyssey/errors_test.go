package odyssey

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAPIError_Kind(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want Kind
	}{
		{
			name: "already checked in",
			err:  &APIError{HTTPStatus: http.StatusOK, Status: "fail", Message: "current account already checked in"},
			want: KindAlreadyDone,
		},
		{
			name: "already claimed",
			err:  &APIError{HTTPStatus: http.StatusBadRequest, Status: "fail", Message: "interact rewards already claimed"},
			want: KindAlreadyDone,
		},
		{
			name: "milestone not reached",
			err:  &APIError{HTTPStatus: http.StatusBadRequest, Status: "fail", Message: "interact task not reached"},
			want: KindNotReady,
		},
		{
			name: "no box left",
			err:  &APIError{HTTPStatus: http.StatusOK, Status: "fail", Message: "no box to open"},
			want: KindNotReady,
		},
		{
			name: "unauthorized status code",
			err:  &APIError{HTTPStatus: http.StatusUnauthorized, Message: "auth token expired"},
			want: KindUnauthorized,
		},
		{
			name: "forbidden status code",
			err:  &APIError{HTTPStatus: http.StatusForbidden},
			want: KindUnauthorized,
		},
		{
			name: "token message on 400",
			err:  &APIError{HTTPStatus: http.StatusBadRequest, Message: "invalid token"},
			want: KindUnauthorized,
		},
		{
			name: "server error",
			err:  &APIError{HTTPStatus: http.StatusBadGateway, Message: "upstream unavailable"},
			want: KindTransient,
		},
		{
			name: "plain client error",
			err:  &APIError{HTTPStatus: http.StatusBadRequest, Message: "stage must be between 1 and 3"},
			want: KindInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Kind(); got != tt.want {
				t.Errorf("Kind() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKindOf_NonAPIErrorsAreTransient(t *testing.T) {
	err := errors.New("connection reset by peer")
	if KindOf(err) != KindTransient {
		t.Errorf("expected plain errors to classify as transient, got %s", KindOf(err))
	}
	if !IsRetryable(err) {
		t.Error("plain errors should be retryable")
	}
}

func TestKindOf_UnwrapsWrappedAPIErrors(t *testing.T) {
	inner := &APIError{HTTPStatus: http.StatusOK, Status: "fail", Message: "already claimed"}
	wrapped := fmt.Errorf("claim stage 2: %w", inner)

	if !IsAlreadyDone(wrapped) {
		t.Error("expected wrapped APIError to classify as already done")
	}
	if IsRetryable(wrapped) {
		t.Error("already-done errors must not be retryable")
	}
}

func TestClassificationHelpers_NilError(t *testing.T) {
	if IsAlreadyDone(nil) || IsNotReady(nil) || IsUnauthorized(nil) || IsRetryable(nil) {
		t.Error("nil error must not match any classification")
	}
}
