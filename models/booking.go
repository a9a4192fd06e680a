package models

import "time"

// Booking statuses.
const (
	BookingStatusSubmitted = "submitted"
	BookingStatusConfirmed = "confirmed"
)

// Booking is the completed wizard payload handed to checkout.
type Booking struct {
	ID             string       `bson:"id" json:"id"`
	SessionID      string       `bson:"session_id" json:"sessionId"`
	IdempotencyKey string       `bson:"idempotency_key" json:"idempotencyKey"`
	Draft          BookingDraft `bson:"draft" json:"draft"`
	PaymentToken   string       `bson:"payment_token" json:"paymentToken"`
	Quote          *Quote       `bson:"-" json:"quote,omitempty"` // stored flattened by the repository
	Status         string       `bson:"status" json:"status"`
	CreatedAt      time.Time    `bson:"created_at" json:"createdAt"`
	ConfirmedAt    *time.Time   `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
}

// BookingConfirmPayload is the asynq payload for the post-submission confirmation task.
type BookingConfirmPayload struct {
	BookingID      string `json:"bookingId"`
	IdempotencyKey string `json:"idempotencyKey"`
}
