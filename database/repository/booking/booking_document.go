package bookingRepo

import (
	"time"

	"quotewizard/models"

	"github.com/shopspring/decimal"
)

// bookingDocument is the stored shape of a booking. The quote amount is kept
// as a decimal string so no precision is lost.
type bookingDocument struct {
	ID             string              `bson:"id"`
	SessionID      string              `bson:"session_id"`
	IdempotencyKey string              `bson:"idempotency_key"`
	Draft          models.BookingDraft `bson:"draft"`
	PaymentToken   string              `bson:"payment_token"`
	QuoteID        string              `bson:"quote_id,omitempty"`
	QuoteAmount    string              `bson:"quote_amount,omitempty"`
	QuoteCurrency  string              `bson:"quote_currency,omitempty"`
	Status         string              `bson:"status"`
	CreatedAt      time.Time           `bson:"created_at"`
	ConfirmedAt    *time.Time          `bson:"confirmed_at,omitempty"`
}

func toDocument(b *models.Booking) bookingDocument {
	doc := bookingDocument{
		ID:             b.ID,
		SessionID:      b.SessionID,
		IdempotencyKey: b.IdempotencyKey,
		Draft:          b.Draft,
		PaymentToken:   b.PaymentToken,
		Status:         b.Status,
		CreatedAt:      b.CreatedAt,
		ConfirmedAt:    b.ConfirmedAt,
	}
	if b.Quote != nil {
		doc.QuoteID = b.Quote.ID
		doc.QuoteAmount = b.Quote.Amount.String()
		doc.QuoteCurrency = b.Quote.Currency
	}
	return doc
}

func (d bookingDocument) toModel() (*models.Booking, error) {
	b := &models.Booking{
		ID:             d.ID,
		SessionID:      d.SessionID,
		IdempotencyKey: d.IdempotencyKey,
		Draft:          d.Draft,
		PaymentToken:   d.PaymentToken,
		Status:         d.Status,
		CreatedAt:      d.CreatedAt,
		ConfirmedAt:    d.ConfirmedAt,
	}
	if d.QuoteAmount != "" {
		amount, err := decimal.NewFromString(d.QuoteAmount)
		if err != nil {
			return nil, err
		}
		b.Quote = &models.Quote{ID: d.QuoteID, Amount: amount, Currency: d.QuoteCurrency}
	}
	return b, nil
}
