package errs

import (
	"errors"
	"fmt"
)

var ErrSecretNotConfigured = errors.New("webhook secret is not configured")
var ErrMissingSignature = errors.New("signature header is missing")

// VerificationError rejects a delivery before it is journaled. The REST
// layer maps it to a 4xx so the provider does not retry.
type VerificationError struct {
	Err error
}

func (t VerificationError) Error() string {
	return fmt.Sprintf("error verifying webhook signature: %v", t.Err)
}

func (t VerificationError) Unwrap() error {
	return t.Err
}

// RetryableError marks a failed handler run that is worth a provider-side
// retry, e.g. a momentary database outage.
type RetryableError struct {
	Err error
}

func (t RetryableError) Error() string {
	return fmt.Sprintf("retryable error: %v", t.Err)
}

func (t RetryableError) Unwrap() error {
	return t.Err
}
