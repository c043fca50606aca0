package view

import (
	"errors"
	"fmt"
)

var ErrUnknownControl = errors.New("unknown control")

// HTTPError is a non-2xx reply from the trading API.
type HTTPError struct {
	Status int
	Err    error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error, status %d", e.Status)
}

func (e *HTTPError) Unwrap() error { return e.Err }

// ValidationError is a missing or malformed input caught before any request
// is made. Message is already localized.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type statusCoder interface {
	HTTPStatus() int
}

// upstreamError lifts any error carrying an HTTP status into *HTTPError.
func upstreamError(err error) error {
	var sc statusCoder
	if errors.As(err, &sc) {
		return &HTTPError{Status: sc.HTTPStatus(), Err: err}
	}
	return err
}
