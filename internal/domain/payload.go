package domain

import (
	"fmt"
	"strings"
)

// Payload field names as they appear on the wire. Keys are case-sensitive.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldMessage = "message"
	FieldSource  = "source"
)

// DefaultSource labels submissions whose form did not carry a source value.
const DefaultSource = "Website Enquiry"

// RequiredFields lists the keys every payload must carry, in wire order.
var RequiredFields = []string{FieldName, FieldEmail, FieldPhone, FieldMessage, FieldSource}

// Payload is the contact-form data submitted by a user. A field counts as
// present when its key exists, even if the value is empty.
type Payload map[string]string

func NewPayload(name, email, phone, message, source string) Payload {
	return Payload{
		FieldName:    name,
		FieldEmail:   email,
		FieldPhone:   phone,
		FieldMessage: message,
		FieldSource:  source,
	}
}

func (p Payload) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: payload must be an object with required keys", ErrValidation)
	}
	for _, key := range RequiredFields {
		if _, ok := p[key]; !ok {
			return fmt.Errorf("%w: missing required payload key: %s", ErrValidation, key)
		}
	}
	return nil
}

// Trimmed returns a copy with surrounding whitespace removed from every value.
func (p Payload) Trimmed() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for key, value := range p {
		out[key] = strings.TrimSpace(value)
	}
	return out
}

// Wire returns the five-field body sent to the relay. Keys outside
// RequiredFields are not forwarded.
func (p Payload) Wire() WirePayload {
	return WirePayload{
		Name:    p[FieldName],
		Email:   p[FieldEmail],
		Phone:   p[FieldPhone],
		Message: p[FieldMessage],
		Source:  p[FieldSource],
	}
}

// WirePayload is the JSON body accepted by the relay's /send-mail route.
type WirePayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Source  string `json:"source"`
}
