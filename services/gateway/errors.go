package gateway

import (
	"errors"
	"fmt"

	"quotewizard/models"
)

type ErrorKind string

const (
	KindRejected    ErrorKind = "rejected"
	KindUnavailable ErrorKind = "unavailable"
)

// GatewayError classifies a pricing or payment failure. Reason is safe to show
// to the customer for rejections.
type GatewayError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func NewRejectedError(reason string, err error) error {
	return &GatewayError{Kind: KindRejected, Reason: reason, Err: err}
}

func NewUnavailableError(reason string, err error) error {
	return &GatewayError{Kind: KindUnavailable, Reason: reason, Err: err}
}

// resultFromError maps a collaborator error to a submission outcome.
// Anything unclassified is a transport problem.
func resultFromError(err error) models.SubmissionResult {
	var ge *GatewayError
	if errors.As(err, &ge) && ge.Kind == KindRejected {
		return models.Rejected(ge.Reason)
	}
	return models.Unavailable(err.Error())
}
