package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quotewizard/models"

	"github.com/shopspring/decimal"
)

// MsgNotServiceable is shown when the pricing service declines a move without a reason.
const MsgNotServiceable = "We can't offer a price for this move yet"

// HTTPPricingClient calls the brokerage pricing API.
type HTTPPricingClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewPricingClient(baseURL, apiKey string, opts ...func(*HTTPPricingClient)) *HTTPPricingClient {
	c := &HTTPPricingClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithHTTPClient(hc *http.Client) func(*HTTPPricingClient) {
	return func(c *HTTPPricingClient) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

type quoteRequest struct {
	IdempotencyKey     string   `json:"idempotencyKey"`
	Origin             string   `json:"origin"`
	OriginPlaceID      string   `json:"originPlaceId,omitempty"`
	Destination        string   `json:"destination"`
	DestinationPlaceID string   `json:"destinationPlaceId,omitempty"`
	ItemsOrSize        []string `json:"itemsOrSize"`
	MoveDate           string   `json:"moveDate"`
	TimeOfDay          string   `json:"timeOfDay"`
}

type quoteResponse struct {
	QuoteID     string          `json:"quoteId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Serviceable *bool           `json:"serviceable,omitempty"`
	Reason      string          `json:"reason,omitempty"`
}

type pricingErrorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Quote posts the draft to /v1/quotes. Client errors are rejections, everything
// else that is not a well formed 2xx is unavailability.
func (c *HTTPPricingClient) Quote(ctx context.Context, draft models.BookingDraft, idempotencyKey string) (*models.Quote, error) {
	if c.BaseURL == "" {
		return nil, NewUnavailableError("pricing service is not configured", nil)
	}

	body, err := json.Marshal(newQuoteRequest(draft, idempotencyKey))
	if err != nil {
		return nil, fmt.Errorf("failed to encode quote request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/quotes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", idempotencyKey)
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, NewUnavailableError("pricing request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, NewUnavailableError("failed to read pricing response", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var qr quoteResponse
		if err := json.Unmarshal(raw, &qr); err != nil {
			return nil, NewUnavailableError("invalid pricing response", err)
		}
		if qr.Serviceable != nil && !*qr.Serviceable {
			return nil, NewRejectedError(orDefault(qr.Reason, MsgNotServiceable), nil)
		}
		if !qr.Amount.IsPositive() {
			return nil, NewUnavailableError(fmt.Sprintf("pricing returned non-positive amount %s", qr.Amount), nil)
		}
		return &models.Quote{
			ID:       qr.QuoteID,
			Amount:   qr.Amount,
			Currency: strings.ToLower(qr.Currency),
		}, nil

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		var eb pricingErrorBody
		_ = json.Unmarshal(raw, &eb)
		return nil, NewRejectedError(orDefault(eb.Reason, orDefault(eb.Message, MsgNotServiceable)), nil)

	default:
		return nil, NewUnavailableError(fmt.Sprintf("pricing service returned %d", resp.StatusCode), nil)
	}
}

func newQuoteRequest(draft models.BookingDraft, key string) quoteRequest {
	req := quoteRequest{
		IdempotencyKey: key,
		ItemsOrSize:    draft.ItemsOrSize,
	}
	if draft.MoveOrigin != nil {
		req.Origin = draft.MoveOrigin.Display()
		req.OriginPlaceID = draft.MoveOrigin.PlaceID
	}
	if draft.MoveDestination != nil {
		req.Destination = draft.MoveDestination.Display()
		req.DestinationPlaceID = draft.MoveDestination.PlaceID
	}
	if draft.MoveDate != nil {
		req.MoveDate = *draft.MoveDate
	}
	if draft.TimeOfDay != nil {
		req.TimeOfDay = *draft.TimeOfDay
	}
	return req
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
