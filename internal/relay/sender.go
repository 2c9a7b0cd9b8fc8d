package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/kursadbilgin/contact-relay/internal/domain"
)

// HTTPSender posts payloads to relay endpoints over HTTP. Request lifetime is
// bounded by the caller's context only; the client carries no timeout of its
// own so per-call overrides are honoured.
type HTTPSender struct {
	client *resty.Client
}

func NewHTTPSender() *HTTPSender {
	sender, _ := NewHTTPSenderWithClient(resty.New())
	return sender
}

func NewHTTPSenderWithClient(client *resty.Client) (*HTTPSender, error) {
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	client.SetRetryCount(0)

	return &HTTPSender{client: client}, nil
}

func (s *HTTPSender) Send(ctx context.Context, endpoint string, payload domain.Payload) (*AttemptResponse, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("sender is not initialized")
	}
	if err := payload.Validate(); err != nil {
		return nil, &AttemptError{
			Kind:     domain.ErrorKindValidation,
			Endpoint: endpoint,
			Cause:    err,
		}
	}

	response, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload.Wire()).
		Post(endpoint)
	if err != nil {
		return nil, requestError(endpoint, err)
	}
	if response == nil {
		return nil, &AttemptError{
			Kind:     domain.ErrorKindNetwork,
			Endpoint: endpoint,
			Message:  "relay returned empty response",
		}
	}

	statusCode := response.StatusCode()
	if !response.IsSuccess() {
		rejection := &AttemptError{
			Kind:       domain.ErrorKindHTTP,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Message:    nonOKMessage(statusCode, response.Status()),
		}
		var answer any
		if err := json.Unmarshal(response.Body(), &answer); err == nil {
			rejection.Response = answer
		}
		return nil, rejection
	}

	var data any
	if err := json.Unmarshal(response.Body(), &data); err != nil {
		return nil, &AttemptError{
			Kind:       domain.ErrorKindParse,
			Endpoint:   endpoint,
			StatusCode: statusCode,
			Message:    "failed to parse JSON response",
			Cause:      err,
		}
	}

	return &AttemptResponse{
		StatusCode: statusCode,
		Data:       data,
	}, nil
}

func requestError(endpoint string, err error) *AttemptError {
	kind := domain.ErrorKindNetwork
	message := "relay request failed"
	switch {
	case isTimeout(err):
		kind = domain.ErrorKindTimeout
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		message = "request canceled"
	}

	return &AttemptError{
		Kind:     kind,
		Endpoint: endpoint,
		Message:  message,
		Cause:    err,
	}
}

func nonOKMessage(statusCode int, status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Sprintf("non-OK HTTP status: %d", statusCode)
	}
	return fmt.Sprintf("non-OK HTTP status: %s", status)
}
