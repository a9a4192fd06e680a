package models

import "github.com/shopspring/decimal"

// SubmissionStatus is the variant tag of a SubmissionResult.
type SubmissionStatus string

const (
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
	SubmissionUnavailable SubmissionStatus = "unavailable"
)

// Quote is the price the pricing service returned for a draft.
type Quote struct {
	ID       string          `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// SubmissionResult is the gateway outcome for one submission attempt.
//
//	Accepted:    PaymentToken set, Quote set
//	Rejected:    Reason set
//	Unavailable: Reason describes the transport failure
type SubmissionResult struct {
	Status       SubmissionStatus `json:"status"`
	PaymentToken string           `json:"paymentToken,omitempty"`
	Quote        *Quote           `json:"quote,omitempty"`
	Reason       string           `json:"reason,omitempty"`
}

func Accepted(token string, quote *Quote) SubmissionResult {
	return SubmissionResult{Status: SubmissionAccepted, PaymentToken: token, Quote: quote}
}

func Rejected(reason string) SubmissionResult {
	return SubmissionResult{Status: SubmissionRejected, Reason: reason}
}

func Unavailable(reason string) SubmissionResult {
	return SubmissionResult{Status: SubmissionUnavailable, Reason: reason}
}

// Settled reports whether the outcome is final for its idempotency key.
// Unavailable is never settled so a retry reaches the gateway again.
func (r SubmissionResult) Settled() bool {
	return r.Status == SubmissionAccepted || r.Status == SubmissionRejected
}
