package domain

import (
	"fmt"
	"unicode/utf8"
)

const maxErrorBody = 512

// EnumerationError means the resource inventory could not be read; no report is built.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("enumeration failed: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// SendError is a non-2xx answer from the webhook.
type SendError struct {
	StatusCode int
	Body       string
}

func NewSendError(status int, body []byte) *SendError {
	if len(body) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return &SendError{StatusCode: status, Body: string(body)}
}

func (e *SendError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// TransportError covers network failures and timeouts while sending.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("webhook transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
