package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"quotewizard/models"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// MsgPaymentSetupFailed is shown when Stripe refuses the payment request itself.
const MsgPaymentSetupFailed = "We couldn't set up your payment. Please check your details and try again."

// PaymentIntentAPI is the part of the Stripe PaymentIntents client used here.
// *paymentintent.Client satisfies it.
type PaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripePayments initiates a PaymentIntent per submission. The PaymentIntent ID is
// the payment token handed back to the wizard; confirmation happens in the browser.
type StripePayments struct {
	intents  PaymentIntentAPI
	currency string
	logger   *zap.Logger
}

func NewStripePayments(secretKey, currency string, logger *zap.Logger) *StripePayments {
	api := &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return NewStripePaymentsWithAPI(api, currency, logger)
}

func NewStripePaymentsWithAPI(api PaymentIntentAPI, currency string, logger *zap.Logger) *StripePayments {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripePayments{intents: api, currency: strings.ToLower(currency), logger: logger}
}

func (p *StripePayments) Initiate(ctx context.Context, quote models.Quote, draft models.BookingDraft, idempotencyKey string) (string, error) {
	currency := p.currency
	if quote.Currency != "" {
		currency = strings.ToLower(quote.Currency)
	}

	minor := minorUnits(quote.Amount, currency)
	if minor <= 0 {
		return "", NewUnavailableError(fmt.Sprintf("quoted amount %s is not chargeable", quote.Amount), nil)
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(minor),
		Currency:    stripe.String(currency),
		Description: stripe.String(describeMove(draft)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	params.AddMetadata("idempotency_key", idempotencyKey)
	if quote.ID != "" {
		params.AddMetadata("quote_id", quote.ID)
	}
	if draft.MoveDate != nil {
		params.AddMetadata("move_date", *draft.MoveDate)
	}
	if draft.TimeOfDay != nil {
		params.AddMetadata("time_of_day", *draft.TimeOfDay)
	}

	pi, err := p.intents.New(params)
	if err != nil {
		p.logger.Warn("stripe payment intent failed",
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err))
		return "", classifyStripeError(err)
	}
	if pi == nil || pi.ID == "" {
		return "", NewUnavailableError("stripe returned no payment intent", nil)
	}

	p.logger.Info("stripe payment intent created",
		zap.String("payment_intent", pi.ID),
		zap.String("idempotency_key", idempotencyKey),
		zap.Int64("amount", minor),
		zap.String("currency", currency))
	return pi.ID, nil
}

// zeroDecimalCurrencies are charged in whole units; Stripe takes their amounts as-is.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true,
	"jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// minorUnits converts a quoted amount into the smallest unit Stripe expects
// for the (lowercase) currency.
func minorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

// classifyStripeError separates declines and bad requests (rejections) from
// outages, throttling and network failures (unavailability).
func classifyStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return NewUnavailableError("stripe request failed", err)
	}

	switch {
	case se.HTTPStatusCode == http.StatusTooManyRequests || se.HTTPStatusCode >= http.StatusInternalServerError:
		return NewUnavailableError("stripe is unavailable", err)
	case se.Type == stripe.ErrorTypeCard:
		return NewRejectedError(orDefault(se.Msg, MsgPaymentSetupFailed), err)
	case se.Type == stripe.ErrorTypeInvalidRequest || se.Type == stripe.ErrorTypeIdempotency:
		return NewRejectedError(MsgPaymentSetupFailed, err)
	default:
		return NewUnavailableError("stripe request failed", err)
	}
}

func describeMove(draft models.BookingDraft) string {
	var from, to string
	if draft.MoveOrigin != nil {
		from = draft.MoveOrigin.Display()
	}
	if draft.MoveDestination != nil {
		to = draft.MoveDestination.Display()
	}
	desc := fmt.Sprintf("Move from %s to %s", from, to)
	if draft.MoveDate != nil {
		desc += " on " + *draft.MoveDate
	}
	return desc
}
