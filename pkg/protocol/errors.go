package protocol

import "errors"

var (
	// ErrOperationNotSupported is returned by a handler asked to perform a
	// verb its integration does not support. The executor's capability
	// pre-check normally catches this first; the handler guard is the
	// backstop.
	ErrOperationNotSupported = errors.New("operation not supported by integration")

	// ErrMissingContext is returned when a required identifier (org id,
	// portal, channel, calendar) is absent from the step context. Detected
	// before any remote call is attempted.
	ErrMissingContext = errors.New("required context identifier is missing")
)
