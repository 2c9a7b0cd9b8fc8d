package domain

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why a submission or a single candidate attempt failed.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindHTTP       ErrorKind = "http"
	ErrorKindParse      ErrorKind = "parse"
	ErrorKindTimeout    ErrorKind = "timeout"
	ErrorKindNetwork    ErrorKind = "network"
	ErrorKindUnexpected ErrorKind = "unexpected"
)

func (k ErrorKind) String() string { return string(k) }

func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindValidation, ErrorKindHTTP, ErrorKindParse, ErrorKindTimeout, ErrorKindNetwork, ErrorKindUnexpected:
		return true
	}
	return false
}

func ParseErrorKindFromString(s string) (ErrorKind, error) {
	k := ErrorKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: invalid error kind %q", ErrValidation, s)
	}
	return k, nil
}

// Attempt records one failed candidate endpoint attempt.
type Attempt struct {
	Endpoint       string    `json:"endpoint"`
	Kind           ErrorKind `json:"kind"`
	StatusCode     int       `json:"statusCode,omitempty"`
	Error          string    `json:"error"`
	DurationMillis int64     `json:"durationMs"`
	// Response holds the relay's JSON answer when it rejected the submission.
	Response any `json:"response,omitempty"`
}
