package bookingRepo

import (
	"context"
	"errors"
	"time"

	"quotewizard/models"
)

var ErrBookingNotFound = errors.New("booking not found")

// BookingRepository stores bookings handed off by the quote wizard.
type BookingRepository interface {
	// Upsert inserts the booking unless one with the same idempotency key exists.
	// It reports whether a new document was created.
	Upsert(ctx context.Context, booking *models.Booking) (bool, error)
	// GetByID retrieves a booking by its ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByIdempotencyKey retrieves the booking created for a submission key.
	GetByIdempotencyKey(ctx context.Context, key string) (*models.Booking, error)
	// MarkConfirmed moves a submitted booking to confirmed. Confirming twice is a no-op.
	MarkConfirmed(ctx context.Context, id string, at time.Time) error
}
