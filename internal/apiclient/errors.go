package apiclient

import (
	"fmt"
)

// ServerError is a failure the upstream reported in its JSON error field.
// Message is the verbatim text meant for the user.
type ServerError struct {
	StatusCode int
	Message    string
	RawText    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// TransportError covers network failures, non-success responses without an
// error payload and bodies that could not be decoded.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
