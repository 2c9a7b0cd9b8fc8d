package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kursadbilgin/contact-relay/internal/domain"
	"github.com/kursadbilgin/contact-relay/internal/observability"
	"github.com/kursadbilgin/contact-relay/internal/relay"
	"github.com/kursadbilgin/contact-relay/internal/service"
	"github.com/spf13/cobra"
)

// ErrSubmissionFailed is returned after a failed outcome has been printed.
var ErrSubmissionFailed = errors.New("submission failed")

type sendOptions struct {
	name        string
	email       string
	phone       string
	message     string
	source      string
	timeout     time.Duration
	pageURL     string
	fallbackURL string
	endpoints   []string
	logLevel    string
}

// NewSendMailCommand builds the sendmail command. sender may be nil, in which
// case an HTTP sender is used.
func NewSendMailCommand(sender relay.Sender) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:           "sendmail",
		Short:         "Submit a contact form payload to the first reachable mail relay",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSendMail(cmd, opts, sender)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.name, "name", "", "sender name")
	flags.StringVar(&opts.email, "email", "", "sender email")
	flags.StringVar(&opts.phone, "phone", "", "sender phone")
	flags.StringVar(&opts.message, "message", "", "message body")
	flags.StringVar(&opts.source, "source", domain.DefaultSource, "submission source label")
	flags.DurationVar(&opts.timeout, "timeout", service.DefaultTimeout, "per-endpoint timeout")
	flags.StringVar(&opts.pageURL, "page-url", "", "page the form is served from, used to derive same-origin candidates")
	flags.StringVar(&opts.fallbackURL, "fallback-url", relay.DefaultFallbackEndpoint, "endpoint tried after the loopback candidates")
	flags.StringSliceVar(&opts.endpoints, "endpoint", nil, "explicit candidate endpoints, replacing the derived list")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "diagnostic log level")

	return cmd
}

func runSendMail(cmd *cobra.Command, opts *sendOptions, sender relay.Sender) error {
	if opts.timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", opts.timeout)
	}

	var location *relay.Location
	if opts.pageURL != "" {
		loc, err := relay.ParseLocation(opts.pageURL)
		if err != nil {
			return err
		}
		location = loc
	}

	logger, err := observability.NewLogger(opts.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if sender == nil {
		sender = relay.NewHTTPSender()
	}

	svc, err := service.NewSubmissionService(sender, service.Config{
		Location:         location,
		FallbackEndpoint: opts.fallbackURL,
		Timeout:          opts.timeout,
		Candidates:       opts.endpoints,
	}, observability.NewDiagnostics(logger, nil))
	if err != nil {
		return err
	}

	payload := domain.NewPayload(opts.name, opts.email, opts.phone, opts.message, opts.source).Trimmed()

	outcome := svc.HandleSend(cmd.Context(), payload, service.Callbacks{
		OnSuccess: func(result service.SuccessResult) {
			fmt.Fprintln(cmd.ErrOrStderr(), result.Message)
		},
		OnError: func(message string) {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		},
	}, opts.timeout)

	if err := writeOutcome(cmd.OutOrStdout(), outcome); err != nil {
		return err
	}
	if !outcome.Success {
		return ErrSubmissionFailed
	}
	return nil
}

func writeOutcome(w io.Writer, outcome domain.Outcome) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(outcome); err != nil {
		return fmt.Errorf("failed to write outcome: %w", err)
	}
	return nil
}
