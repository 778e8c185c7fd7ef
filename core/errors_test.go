package core

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
)

func TestAPIErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
		want   string
	}{
		{name: "401 overrides detail", status: 401, detail: "token invalid", want: MsgSessionExpired},
		{name: "403 overrides detail", status: 403, detail: "nope", want: MsgForbidden},
		{name: "404 keeps detail", status: 404, detail: "post not found", want: "post not found"},
		{name: "404 without detail", status: 404, want: MsgNotFound},
		{name: "500 overrides detail", status: 500, detail: "stack trace", want: MsgServerError},
		{name: "other status keeps detail", status: 409, detail: "already reacted", want: "already reacted"},
		{name: "other status without detail", status: 409, want: http.StatusText(409)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.status, tt.detail)
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusOf(t *testing.T) {
	apiErr := NewAPIError(404, "gone")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "bare", err: apiErr, want: 404},
		{name: "wrapped", err: errors.Wrap(apiErr, "fetching post"), want: 404},
		{name: "double wrapped", err: errors.Wrap(errors.Wrap(apiErr, "a"), "b"), want: 404},
		{name: "transport error", err: errors.New("connection refused"), want: 0},
		{name: "nil", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "401", err: NewAPIError(401, ""), want: MsgSessionExpired},
		{name: "429", err: NewAPIError(429, ""), want: MsgTooManyReqs},
		{name: "503", err: NewAPIError(503, ""), want: MsgServerError},
		{name: "wrapped 404", err: errors.Wrap(NewAPIError(404, "x"), "deleting"), want: MsgNotFound},
		{name: "plain error keeps its message", err: errors.New("dial tcp: timeout"), want: "dial tcp: timeout"},
		{name: "nil", want: MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "500", err: NewAPIError(500, ""), want: true},
		{name: "429", err: NewAPIError(429, ""), want: true},
		{name: "404", err: NewAPIError(404, "")},
		{name: "network error", err: errors.New("connection reset")},
		{name: "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsNetworkError(t *testing.T) {
	if IsNetworkError(nil) {
		t.Error("IsNetworkError(nil) = true")
	}
	if IsNetworkError(NewAPIError(500, "")) {
		t.Error("IsNetworkError(APIError) = true")
	}
	if !IsNetworkError(errors.New("connection refused")) {
		t.Error("IsNetworkError(transport error) = false")
	}
}
