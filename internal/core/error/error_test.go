package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"missing", MissingParameter("location"), ErrMissingParameter, http.StatusBadRequest},
		{"invalid", InvalidParameter("date", "bad"), ErrInvalidParameter, http.StatusBadRequest},
		{"request failed", RequestFailed("weather", "https://x", 3, errors.New("dial")), ErrRequestFailed, http.StatusBadGateway},
		{"aborted", Aborted(time.Second, context.DeadlineExceeded), ErrAbortedRequest, http.StatusGatewayTimeout},
		{"upstream", UpstreamStatus(503), ErrUpstreamStatus, http.StatusBadGateway},
		{"not found", LocationNotFound("Atlantis"), ErrLocationNotFound, http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !errors.Is(c.err, c.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", c.err, c.sentinel)
			}
			if got := StatusOf(c.err); got != c.status {
				t.Errorf("StatusOf = %d, want %d", got, c.status)
			}
		})
	}
}

func TestRequestFailedKeepsCause(t *testing.T) {
	last := Aborted(2*time.Second, context.DeadlineExceeded)
	err := fmt.Errorf("geocode: %w", RequestFailed("weather", "https://x", 3, last))

	if !errors.Is(err, ErrRequestFailed) || !errors.Is(err, ErrAbortedRequest) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("cause chain lost: %v", err)
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Status != http.StatusBadGateway {
		t.Fatalf("errors.As = %+v", appErr)
	}
}

func TestStatusOfPlainError(t *testing.T) {
	if got := StatusOf(errors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("StatusOf = %d, want 500", got)
	}
}

func TestAppErrorMessage(t *testing.T) {
	if got := New(nil, http.StatusTeapot, "short").Error(); got != "short" {
		t.Errorf("Error() = %q", got)
	}
	if got := UpstreamStatus(500).Error(); got != "upstream status 500: upstream returned non-success status" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapRedis(t *testing.T) {
	if WrapRedis(nil) != nil {
		t.Fatal("WrapRedis(nil) should be nil")
	}
	if got := StatusOf(WrapRedis(redis.Nil)); got != http.StatusNotFound {
		t.Errorf("redis.Nil status = %d, want 404", got)
	}
	err := WrapRedis(errors.New("connection refused"))
	if got := StatusOf(err); got != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", got)
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Message != RedisErrorMessage {
		t.Errorf("message = %+v", appErr)
	}
}
