package observability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/contact-relay/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelAliases = map[string]string{
	"":        "info",
	"warning": "warn",
	"err":     "error",
}

// NewLogger builds the JSON logger shared by contactd and the sendmail command.
// Level names are case-insensitive.
func NewLogger(level string) (*zap.Logger, error) {
	parsed, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.DisableStacktrace = true

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func ParseLevel(level string) (zapcore.Level, error) {
	name := strings.ToLower(strings.TrimSpace(level))
	if alias, ok := levelAliases[name]; ok {
		name = alias
	}

	var parsed zapcore.Level
	if err := parsed.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return parsed, nil
}

type scopeKey struct{}

// submissionScope is what a log line needs to be tied back to one submission
// and to the candidate attempt it came from.
type submissionScope struct {
	submissionID string
	attempt      int
}

func scopeFrom(ctx context.Context) submissionScope {
	if ctx == nil {
		return submissionScope{}
	}
	scope, _ := ctx.Value(scopeKey{}).(submissionScope)
	return scope
}

func withScope(ctx context.Context, scope submissionScope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, scope)
}

// WithSubmissionID tags ctx with the submission it belongs to. An attempt
// number already carried by ctx is kept.
func WithSubmissionID(ctx context.Context, submissionID string) context.Context {
	scope := scopeFrom(ctx)
	scope.submissionID = strings.TrimSpace(submissionID)
	return withScope(ctx, scope)
}

func SubmissionIDFromContext(ctx context.Context) (string, bool) {
	id := scopeFrom(ctx).submissionID
	return id, id != ""
}

// WithAttempt tags ctx with the 1-based position of the candidate being tried.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	scope := scopeFrom(ctx)
	scope.attempt = attempt
	return withScope(ctx, scope)
}

func AttemptFromContext(ctx context.Context) (int, bool) {
	n := scopeFrom(ctx).attempt
	return n, n > 0
}

// SubmissionLogger returns logger annotated with the submission scope in ctx.
func SubmissionLogger(logger *zap.Logger, ctx context.Context) *zap.Logger {
	if logger == nil {
		return nil
	}

	scope := scopeFrom(ctx)
	fields := make([]zap.Field, 0, 2)
	if scope.submissionID != "" {
		fields = append(fields, zap.String("submissionId", scope.submissionID))
	}
	if scope.attempt > 0 {
		fields = append(fields, zap.Int("attempt", scope.attempt))
	}
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

// AttemptFields describes a failed candidate attempt.
func AttemptFields(attempt domain.Attempt) []zap.Field {
	fields := []zap.Field{
		zap.String("endpoint", attempt.Endpoint),
		zap.String("kind", attempt.Kind.String()),
		zap.String("error", attempt.Error),
		zap.Duration("duration", time.Duration(attempt.DurationMillis)*time.Millisecond),
	}
	if attempt.StatusCode != 0 {
		fields = append(fields, zap.Int("status", attempt.StatusCode))
	}
	if attempt.Response != nil {
		fields = append(fields, zap.Bool("relayAnswered", true))
	}
	return fields
}

// OutcomeFields describes a finished submission.
func OutcomeFields(outcome domain.Outcome) []zap.Field {
	fields := []zap.Field{zap.Int("failedAttempts", len(outcome.Attempts))}
	if outcome.Success {
		return append(fields,
			zap.String("backend", outcome.Backend),
			zap.Int("status", outcome.Status),
			zap.Bool("relayAccepted", outcome.RelayAccepted()),
		)
	}
	return append(fields,
		zap.String("kind", outcome.Kind.String()),
		zap.String("error", outcome.Error),
		zap.Bool("relayAnswered", outcome.RelayAnswered()),
	)
}
