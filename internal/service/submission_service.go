package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/contact-relay/internal/domain"
	"github.com/kursadbilgin/contact-relay/internal/observability"
	"github.com/kursadbilgin/contact-relay/internal/relay"
)

const DefaultTimeout = 5 * time.Second

// Config is the explicit configuration of a SubmissionService.
type Config struct {
	// Location is the page the submission originates from. Nil means no page.
	Location *relay.Location
	// FallbackEndpoint is appended after the loopback candidates.
	FallbackEndpoint string
	// Timeout bounds each candidate attempt. Zero means DefaultTimeout.
	Timeout time.Duration
	// Candidates replaces the computed candidate list when non-empty.
	Candidates []string
}

// Diagnostics receives best-effort progress reports. Implementations must not
// block; a panicking implementation is ignored.
type Diagnostics interface {
	AttemptSucceeded(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	AttemptFailed(ctx context.Context, attempt domain.Attempt)
	SubmissionFinished(ctx context.Context, outcome domain.Outcome)
	UnexpectedError(ctx context.Context, err error)
}

type nopDiagnostics struct{}

func (nopDiagnostics) AttemptSucceeded(context.Context, string, int, time.Duration) {}
func (nopDiagnostics) AttemptFailed(context.Context, domain.Attempt)                {}
func (nopDiagnostics) SubmissionFinished(context.Context, domain.Outcome)           {}
func (nopDiagnostics) UnexpectedError(context.Context, error)                       {}

// SubmitOptions are per-call overrides.
type SubmitOptions struct {
	Timeout time.Duration
}

// SubmissionService submits payloads to the first relay endpoint that answers.
// Calls share no mutable state and may run concurrently.
type SubmissionService struct {
	sender      relay.Sender
	cfg         Config
	diagnostics Diagnostics
	now         func() time.Time
	newID       func() string
}

func NewSubmissionService(sender relay.Sender, cfg Config, diagnostics Diagnostics) (*SubmissionService, error) {
	if sender == nil {
		return nil, fmt.Errorf("relay sender is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if diagnostics == nil {
		diagnostics = nopDiagnostics{}
	}
	cfg.Candidates = append([]string(nil), cfg.Candidates...)

	return &SubmissionService{
		sender:      sender,
		cfg:         cfg,
		diagnostics: diagnostics,
		now:         time.Now,
		newID:       uuid.NewString,
	}, nil
}

// Candidates returns the ordered endpoint list tried by Submit.
func (s *SubmissionService) Candidates() []string {
	if len(s.cfg.Candidates) > 0 {
		return append([]string(nil), s.cfg.Candidates...)
	}
	return relay.Candidates(s.cfg.Location, s.cfg.FallbackEndpoint)
}

// Submit validates payload and tries each candidate in order. The first
// candidate answering 2xx with a JSON body wins. When every candidate fails
// the outcome carries the last candidate's reason.
func (s *SubmissionService) Submit(ctx context.Context, payload domain.Payload, opts SubmitOptions) domain.Outcome {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = s.withSubmissionID(ctx)

	if err := payload.Validate(); err != nil {
		return s.finish(ctx, domain.Outcome{
			Error: err.Error(),
			Kind:  domain.ErrorKindValidation,
		})
	}

	timeout := s.timeout(opts.Timeout)
	var attempts []domain.Attempt

	for i, endpoint := range s.Candidates() {
		if ctx.Err() != nil {
			break
		}

		resp, attempt, err := s.attempt(observability.WithAttempt(ctx, i+1), endpoint, payload, timeout)
		if err != nil {
			attempts = append(attempts, attempt)
			continue
		}

		return s.finish(ctx, domain.Outcome{
			Success:  true,
			Status:   resp.StatusCode,
			Backend:  endpoint,
			Data:     resp.Data,
			Attempts: attempts,
		})
	}

	outcome := domain.Outcome{
		Error:    "all endpoints failed",
		Kind:     domain.ErrorKindNetwork,
		Attempts: attempts,
	}
	if n := len(attempts); n > 0 {
		outcome.Error = attempts[n-1].Error
		outcome.Kind = attempts[n-1].Kind
	} else if err := ctx.Err(); err != nil {
		outcome.Error = fmt.Sprintf("submission canceled: %v", err)
	}

	return s.finish(ctx, outcome)
}

func (s *SubmissionService) attempt(
	ctx context.Context,
	endpoint string,
	payload domain.Payload,
	timeout time.Duration,
) (*relay.AttemptResponse, domain.Attempt, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := s.now()
	resp, err := s.sender.Send(attemptCtx, endpoint, payload)
	duration := s.now().Sub(start)

	if err == nil && resp == nil {
		err = &relay.AttemptError{
			Kind:     domain.ErrorKindNetwork,
			Endpoint: endpoint,
			Message:  "relay returned empty response",
		}
	}
	if err == nil {
		s.report(func() { s.diagnostics.AttemptSucceeded(ctx, endpoint, resp.StatusCode, duration) })
		return resp, domain.Attempt{}, nil
	}

	kind := relay.KindOf(err)
	// The attempt deadline fired while the caller was still waiting.
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		kind = domain.ErrorKindTimeout
	}

	reason := err.Error()
	if kind == domain.ErrorKindTimeout {
		reason = fmt.Sprintf("request timed out after %dms", timeout.Milliseconds())
	}

	attempt := domain.Attempt{
		Endpoint:       endpoint,
		Kind:           kind,
		StatusCode:     relay.StatusCodeOf(err),
		Error:          reason,
		DurationMillis: duration.Milliseconds(),
		Response:       relay.ResponseOf(err),
	}
	s.report(func() { s.diagnostics.AttemptFailed(ctx, attempt) })

	return nil, attempt, err
}

func (s *SubmissionService) finish(ctx context.Context, outcome domain.Outcome) domain.Outcome {
	s.report(func() { s.diagnostics.SubmissionFinished(ctx, outcome) })
	return outcome
}

func (s *SubmissionService) timeout(override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return s.cfg.Timeout
}

func (s *SubmissionService) withSubmissionID(ctx context.Context) context.Context {
	if _, ok := observability.SubmissionIDFromContext(ctx); ok {
		return ctx
	}
	return observability.WithSubmissionID(ctx, s.newID())
}

// report runs a diagnostics call, discarding any panic it raises.
func (s *SubmissionService) report(fn func()) {
	defer func() { _ = recover() }()
	fn()
}
