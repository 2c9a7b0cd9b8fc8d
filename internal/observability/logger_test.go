package observability

import (
	"context"
	"testing"

	"github.com/kursadbilgin/contact-relay/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    zapcore.Level
		wantErr bool
	}{
		{input: "debug", want: zapcore.DebugLevel},
		{input: " WARN ", want: zapcore.WarnLevel},
		{input: "warning", want: zapcore.WarnLevel},
		{input: "err", want: zapcore.ErrorLevel},
		{input: "", want: zapcore.InfoLevel},
		{input: "loud", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseLevel(%q) expected error", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLevel(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("ParseLevel(%q) = %s, want %s", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	t.Parallel()

	logger, err := NewLogger("warning")
	if err != nil {
		t.Fatalf("NewLogger() unexpected error: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatal("warn should be enabled at warn level")
	}

	if _, err := NewLogger("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSubmissionScopeSurvivesLayering(t *testing.T) {
	t.Parallel()

	ctx := WithSubmissionID(context.Background(), "sub-1")
	ctx = WithAttempt(ctx, 3)
	ctx = WithSubmissionID(ctx, " req-7 ")

	if id, ok := SubmissionIDFromContext(ctx); !ok || id != "req-7" {
		t.Fatalf("submission id = %q (ok=%v), want req-7", id, ok)
	}
	if n, ok := AttemptFromContext(ctx); !ok || n != 3 {
		t.Fatalf("attempt = %d (ok=%v), want 3", n, ok)
	}

	if _, ok := SubmissionIDFromContext(WithAttempt(context.Background(), 1)); ok {
		t.Fatal("attempt-only context should carry no submission id")
	}
	if _, ok := AttemptFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no attempt")
	}
}

func TestSubmissionLoggerFields(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		ctx         context.Context
		wantID      any
		wantAttempt any
	}{
		{name: "empty scope", ctx: context.Background()},
		{name: "submission only", ctx: WithSubmissionID(context.Background(), "sub-1"), wantID: "sub-1"},
		{
			name:        "submission and attempt",
			ctx:         WithAttempt(WithSubmissionID(context.Background(), "sub-2"), 2),
			wantID:      "sub-2",
			wantAttempt: int64(2),
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			core, recorded := observer.New(zapcore.DebugLevel)
			SubmissionLogger(zap.New(core), tc.ctx).Info("relay attempt")

			fields := recorded.All()[0].ContextMap()
			if fields["submissionId"] != tc.wantID {
				t.Fatalf("submissionId = %v, want %v", fields["submissionId"], tc.wantID)
			}
			if fields["attempt"] != tc.wantAttempt {
				t.Fatalf("attempt = %v, want %v", fields["attempt"], tc.wantAttempt)
			}
		})
	}

	if SubmissionLogger(nil, context.Background()) != nil {
		t.Fatal("expected nil logger")
	}
}

func TestAttemptFieldsMarkRelayAnswer(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	logger.Debug("rejected", AttemptFields(domain.Attempt{
		Endpoint:   "http://127.0.0.1:5000/send-mail",
		Kind:       domain.ErrorKindHTTP,
		StatusCode: 400,
		Error:      "non-OK HTTP status: 400 Bad Request",
		Response:   map[string]any{"success": false},
	})...)
	logger.Debug("unreachable", AttemptFields(domain.Attempt{
		Endpoint: "http://localhost:5000/send-mail",
		Kind:     domain.ErrorKindNetwork,
		Error:    "connection refused",
	})...)

	entries := recorded.All()
	rejected := entries[0].ContextMap()
	if rejected["status"] != int64(400) || rejected["relayAnswered"] != true {
		t.Fatalf("rejected fields = %v", rejected)
	}
	unreachable := entries[1].ContextMap()
	if _, ok := unreachable["status"]; ok {
		t.Fatalf("unreachable fields = %v, want no status", unreachable)
	}
	if _, ok := unreachable["relayAnswered"]; ok {
		t.Fatalf("unreachable fields = %v, want no relayAnswered", unreachable)
	}
	if unreachable["kind"] != "network" {
		t.Fatalf("kind = %v, want network", unreachable["kind"])
	}
}

func TestOutcomeFields(t *testing.T) {
	t.Parallel()

	core, recorded := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	logger.Info("done", OutcomeFields(domain.Outcome{
		Error:    "non-OK HTTP status: 400 Bad Request",
		Kind:     domain.ErrorKindHTTP,
		Attempts: []domain.Attempt{{Kind: domain.ErrorKindHTTP, Response: map[string]any{"success": false}}},
	})...)

	fields := recorded.All()[0].ContextMap()
	if fields["relayAnswered"] != true {
		t.Fatalf("relayAnswered = %v, want true", fields["relayAnswered"])
	}
	if fields["failedAttempts"] != int64(1) {
		t.Fatalf("failedAttempts = %v, want 1", fields["failedAttempts"])
	}
	if _, ok := fields["backend"]; ok {
		t.Fatal("failed outcome should not log a backend")
	}
}
