package relay

import (
	"context"

	"github.com/kursadbilgin/contact-relay/internal/domain"
)

// SendMailPath is the relay route every candidate endpoint points at.
const SendMailPath = "/send-mail"

// Sender is the outbound port that delivers a payload to one endpoint.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload domain.Payload) (*AttemptResponse, error)
}

// AttemptResponse is a relay answer with a 2xx status and a JSON body.
type AttemptResponse struct {
	StatusCode int
	Data       any
}
