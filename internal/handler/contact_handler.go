package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/contact-relay/internal/domain"
	"github.com/kursadbilgin/contact-relay/internal/observability"
	"github.com/kursadbilgin/contact-relay/internal/service"
)

type ContactSubmitter interface {
	HandleSend(ctx context.Context, payload domain.Payload, callbacks service.Callbacks, timeout time.Duration) domain.Outcome
}

type ContactHandler struct {
	submitter ContactSubmitter
	timeout   time.Duration
	metrics   *observability.Metrics
}

func NewContactHandler(submitter ContactSubmitter, timeout time.Duration, metrics *observability.Metrics) (*ContactHandler, error) {
	if submitter == nil {
		return nil, fmt.Errorf("contact submitter is required")
	}
	return &ContactHandler{
		submitter: submitter,
		timeout:   timeout,
		metrics:   metrics,
	}, nil
}

func RegisterContactRoutes(router fiber.Router, submitter ContactSubmitter, timeout time.Duration, metrics *observability.Metrics) error {
	h, err := NewContactHandler(submitter, timeout, metrics)
	if err != nil {
		return err
	}

	router.Post("/contact", h.SubmitContact)

	return nil
}

type contactResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Color     string `json:"color"`
	Notice    string `json:"notice"`
	ResetForm bool   `json:"resetForm"`
	Backend   string `json:"backend,omitempty"`
}

// SubmitContact relays one contact form and renders the feedback the page shows.
func (h *ContactHandler) SubmitContact(c *fiber.Ctx) error {
	payload, err := parseContactPayload(c)
	if err != nil {
		return err
	}
	if err := payload.Validate(); err != nil {
		return toHTTPError(err)
	}

	ctx := context.Context(c.Context())
	if requestID := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); requestID != "" {
		ctx = observability.WithSubmissionID(ctx, requestID)
	}

	var notice string
	outcome := h.submitter.HandleSend(ctx, payload, service.Callbacks{
		OnSuccess: func(result service.SuccessResult) { notice = result.Message },
		OnError:   func(message string) { notice = message },
	}, h.timeout)

	status := domain.FormStatusFromOutcome(outcome)
	h.metrics.IncFormResponse(status.String())

	return c.Status(httpStatusFor(status)).JSON(contactResponse{
		Status:    status.String(),
		Message:   status.Message(),
		Color:     status.Color(),
		Notice:    notice,
		ResetForm: status == domain.FormStatusSuccess,
		Backend:   outcome.Backend,
	})
}

// parseContactPayload reads a JSON object or a form-encoded body. JSON keys are
// taken as sent so missing fields fail validation; form bodies always carry
// all five fields and an empty source falls back to DefaultSource.
func parseContactPayload(c *fiber.Ctx) (domain.Payload, error) {
	contentType := strings.ToLower(strings.TrimSpace(c.Get(fiber.HeaderContentType)))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEApplicationJSON):
		return parseJSONPayload(c)
	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm),
		strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		return parseFormPayload(c), nil
	default:
		return nil, fiber.NewError(fiber.StatusUnsupportedMediaType, "content type must be application/json or a form encoding")
	}
}

func parseJSONPayload(c *fiber.Ctx) (domain.Payload, error) {
	var raw map[string]any
	if err := c.BodyParser(&raw); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if raw == nil {
		return nil, toHTTPError(fmt.Errorf("%w: payload must be an object with required keys", domain.ErrValidation))
	}

	payload := make(domain.Payload, len(domain.RequiredFields))
	for _, key := range domain.RequiredFields {
		value, ok := raw[key]
		if !ok {
			continue
		}
		str, ok := value.(string)
		if !ok {
			return nil, toHTTPError(fmt.Errorf("%w: field %s must be a string", domain.ErrValidation, key))
		}
		payload[key] = str
	}
	return payload.Trimmed(), nil
}

func parseFormPayload(c *fiber.Ctx) domain.Payload {
	payload := make(domain.Payload, len(domain.RequiredFields))
	for _, key := range domain.RequiredFields {
		payload[key] = c.FormValue(key)
	}
	payload = payload.Trimmed()
	if payload[domain.FieldSource] == "" {
		payload[domain.FieldSource] = domain.DefaultSource
	}
	return payload
}

func httpStatusFor(status domain.FormStatus) int {
	switch status {
	case domain.FormStatusSuccess:
		return fiber.StatusOK
	case domain.FormStatusServerRejected:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusServiceUnavailable
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
