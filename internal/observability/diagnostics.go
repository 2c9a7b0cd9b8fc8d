package observability

import (
	"context"
	"time"

	"github.com/kursadbilgin/contact-relay/internal/domain"
	"go.uber.org/zap"
)

// Diagnostics reports submission progress to zap and Prometheus. Either sink may be nil.
type Diagnostics struct {
	logger  *zap.Logger
	metrics *Metrics
}

func NewDiagnostics(logger *zap.Logger, metrics *Metrics) *Diagnostics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Diagnostics{logger: logger, metrics: metrics}
}

func (d *Diagnostics) AttemptSucceeded(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	d.metrics.ObserveAttempt("", duration)
	SubmissionLogger(d.logger, ctx).Debug("relay attempt succeeded",
		zap.String("endpoint", endpoint),
		zap.Int("status", statusCode),
		zap.Duration("duration", duration),
	)
}

func (d *Diagnostics) AttemptFailed(ctx context.Context, attempt domain.Attempt) {
	d.metrics.ObserveAttempt(attempt.Kind.String(), time.Duration(attempt.DurationMillis)*time.Millisecond)
	SubmissionLogger(d.logger, ctx).Debug("relay attempt failed", AttemptFields(attempt)...)
}

func (d *Diagnostics) SubmissionFinished(ctx context.Context, outcome domain.Outcome) {
	d.metrics.IncSubmission(outcome.Success)

	logger := SubmissionLogger(d.logger, ctx)
	if outcome.Success {
		logger.Info("submission succeeded", OutcomeFields(outcome)...)
		return
	}
	logger.Warn("submission failed", OutcomeFields(outcome)...)
}

func (d *Diagnostics) UnexpectedError(ctx context.Context, err error) {
	SubmissionLogger(d.logger, ctx).Error("unexpected submission error", zap.Error(err))
}
