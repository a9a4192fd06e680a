package gateway

import (
	"context"

	"quotewizard/models"
)

// PricingClient prices a completed draft.
type PricingClient interface {
	Quote(ctx context.Context, draft models.BookingDraft, idempotencyKey string) (*models.Quote, error)
}

// PaymentInitiator starts a payment for a quote and returns the opaque payment token.
type PaymentInitiator interface {
	Initiate(ctx context.Context, quote models.Quote, draft models.BookingDraft, idempotencyKey string) (string, error)
}

// ResultCache remembers settled outcomes per idempotency key and guards
// against two submissions with the same key running at once.
type ResultCache interface {
	Get(ctx context.Context, idempotencyKey string) (*models.SubmissionResult, error)
	Put(ctx context.Context, idempotencyKey string, result models.SubmissionResult) error
	Acquire(ctx context.Context, idempotencyKey string) (bool, error)
	Release(ctx context.Context, idempotencyKey string) error
}
