package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kursadbilgin/contact-relay/internal/domain"
)

// Messages shown to end users. Failure detail is never surfaced through callbacks.
const (
	SuccessMessage        = "Message sent successfully."
	GenericFailureMessage = "Failed to send message. Please try again later."
)

// SuccessResult is passed to Callbacks.OnSuccess.
type SuccessResult struct {
	Message string
	Backend string
	Data    any
}

// Callbacks receive the user-facing result of HandleSend. Nil fields are no-ops.
type Callbacks struct {
	OnSuccess func(SuccessResult)
	OnError   func(message string)
}

// HandleSend submits payload and invokes exactly one callback. It never
// panics: unexpected failures, including panics raised by the sender or by
// diagnostics, become the generic failure. The returned outcome keeps the raw
// reason for programmatic callers.
func (s *SubmissionService) HandleSend(
	ctx context.Context,
	payload domain.Payload,
	callbacks Callbacks,
	timeout time.Duration,
) (outcome domain.Outcome) {
	if ctx == nil {
		ctx = context.Background()
	}

	onSuccess := callbacks.OnSuccess
	if onSuccess == nil {
		onSuccess = func(SuccessResult) {}
	}
	onError := callbacks.OnError
	if onError == nil {
		onError = func(string) {}
	}

	notified := false
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}

		err := fmt.Errorf("unexpected error: %v", recovered)
		if s != nil {
			s.report(func() { s.diagnostics.UnexpectedError(ctx, err) })
		}
		if !notified {
			notified = true
			invokeSafely(func() { onError(GenericFailureMessage) })
		}
		outcome = domain.Outcome{
			Error: err.Error(),
			Kind:  domain.ErrorKindUnexpected,
		}
	}()

	result := s.Submit(ctx, payload, SubmitOptions{Timeout: timeout})
	notified = true
	if result.Success {
		onSuccess(SuccessResult{
			Message: SuccessMessage,
			Backend: result.Backend,
			Data:    result.Data,
		})
		return result
	}

	onError(GenericFailureMessage)
	return result
}

func invokeSafely(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
