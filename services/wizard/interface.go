package wizard

import (
	"context"

	"quotewizard/models"
)

// Gateway prices a completed draft and initiates its payment.
// Implementations never fabricate success: transport failures come back as Unavailable.
type Gateway interface {
	Submit(ctx context.Context, draft models.BookingDraft, idempotencyKey string) models.SubmissionResult
}

// Checkout receives the completed booking once a session reaches submitted.
type Checkout interface {
	Handoff(ctx context.Context, booking models.Booking) error
}
