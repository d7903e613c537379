// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package eutils

import (
	"errors"
	"fmt"
)

// TransientError wraps a failure that persisted through the retry ceiling:
// timeouts, 5xx responses, rate-limit signals. Callers treat it as a
// per-record failure, never as fatal to the whole run.
type TransientError struct {
	Cause error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure after retries: %v", e.Cause)
}

func (e *TransientError) Unwrap() error { return e.Cause }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// StatusError reports a non-OK HTTP status from a remote endpoint.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.Code)
}
