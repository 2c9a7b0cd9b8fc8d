package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/kursadbilgin/contact-relay/internal/domain"
)

// AttemptError describes why a single candidate endpoint failed.
type AttemptError struct {
	Kind       domain.ErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
	// Response is the JSON body the relay sent with a non-2xx status, if any.
	Response any
}

func (e *AttemptError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 3)
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%s error", e.Kind))
	}

	return strings.Join(parts, ": ")
}

func (e *AttemptError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// KindOf classifies err into the submission error taxonomy.
func KindOf(err error) domain.ErrorKind {
	if err == nil {
		return ""
	}

	var attemptErr *AttemptError
	if errors.As(err, &attemptErr) && attemptErr.Kind != "" {
		return attemptErr.Kind
	}
	if errors.Is(err, domain.ErrValidation) {
		return domain.ErrorKindValidation
	}
	if isTimeout(err) {
		return domain.ErrorKindTimeout
	}

	return domain.ErrorKindNetwork
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ResponseOf returns the JSON body a relay sent along with a rejection, or nil.
func ResponseOf(err error) any {
	var attemptErr *AttemptError
	if errors.As(err, &attemptErr) {
		return attemptErr.Response
	}
	return nil
}

// StatusCodeOf returns the HTTP status carried by err, or zero.
func StatusCodeOf(err error) int {
	var attemptErr *AttemptError
	if errors.As(err, &attemptErr) {
		return attemptErr.StatusCode
	}
	return 0
}
