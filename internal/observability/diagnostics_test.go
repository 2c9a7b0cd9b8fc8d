package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kursadbilgin/contact-relay/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDiagnosticsSubmissionSucceeded(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.DebugLevel)
	metrics := NewMetrics()
	diagnostics := NewDiagnostics(zap.New(core), metrics)

	ctx := WithSubmissionID(context.Background(), "sub-1")
	diagnostics.AttemptFailed(ctx, domain.Attempt{
		Endpoint:       "http://127.0.0.1:5000/send-mail",
		Kind:           domain.ErrorKindNetwork,
		Error:          "connection refused",
		DurationMillis: 3,
	})
	diagnostics.AttemptSucceeded(ctx, "http://localhost:5000/send-mail", 200, 10*time.Millisecond)
	diagnostics.SubmissionFinished(ctx, domain.Outcome{
		Success:  true,
		Status:   200,
		Backend:  "http://localhost:5000/send-mail",
		Attempts: []domain.Attempt{{Kind: domain.ErrorKindNetwork}},
	})

	entries := recorded.All()
	if len(entries) != 3 {
		t.Fatalf("entries=%d, want=3", len(entries))
	}

	last := entries[2]
	if last.Message != "submission succeeded" {
		t.Fatalf("message=%q, want %q", last.Message, "submission succeeded")
	}
	fields := last.ContextMap()
	if fields["backend"] != "http://localhost:5000/send-mail" {
		t.Fatalf("backend=%v", fields["backend"])
	}
	if fields["submissionId"] != "sub-1" {
		t.Fatalf("submissionId=%v, want sub-1", fields["submissionId"])
	}
	if fields["failedAttempts"] != int64(1) {
		t.Fatalf("failedAttempts=%v, want 1", fields["failedAttempts"])
	}

	if got := testutil.ToFloat64(metrics.submissionsTotal.WithLabelValues("success")); got != 1 {
		t.Fatalf("submissions_total{success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.attemptsTotal.WithLabelValues("network")); got != 1 {
		t.Fatalf("attempts_total{network} = %v, want 1", got)
	}
}

func TestDiagnosticsSubmissionFailed(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.InfoLevel)
	diagnostics := NewDiagnostics(zap.New(core), nil)

	diagnostics.SubmissionFinished(context.Background(), domain.Outcome{
		Kind:  domain.ErrorKindHTTP,
		Error: "non-OK HTTP status: 500 Internal Server Error",
	})
	diagnostics.UnexpectedError(context.Background(), errors.New("boom"))

	entries := recorded.All()
	if len(entries) != 2 {
		t.Fatalf("entries=%d, want=2", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Fatalf("level=%s, want warn", entries[0].Level)
	}
	if entries[0].ContextMap()["kind"] != "http" {
		t.Fatalf("kind=%v, want http", entries[0].ContextMap()["kind"])
	}
	if entries[1].Level != zapcore.ErrorLevel {
		t.Fatalf("level=%s, want error", entries[1].Level)
	}
}

func TestNewDiagnosticsNilLogger(t *testing.T) {
	t.Parallel()

	diagnostics := NewDiagnostics(nil, nil)
	diagnostics.SubmissionFinished(context.Background(), domain.Outcome{Success: true})
	diagnostics.UnexpectedError(context.Background(), errors.New("boom"))
}
