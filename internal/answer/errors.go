package answer

import (
	"errors"
	"fmt"
)

// TransportError covers network failures and responses that could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response from the Answer Service.
type ServerError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: API error: %s - %s", e.Op, e.Status, e.Body)
}

// IsServerError reports whether err wraps a *ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
