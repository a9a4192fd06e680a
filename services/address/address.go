package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quotewizard/models"

	"go.uber.org/zap"
)

// Lookup modes accepted by New.
const (
	ModeGoogle = "google"
	ModeManual = "manual"
)

const (
	defaultPlacesURL = "https://maps.googleapis.com/maps/api/place/autocomplete/json"
	maxSuggestions   = 5
	minQueryLength   = 3
)

var ErrLookupFailed = errors.New("address lookup failed")

// Lookup suggests addresses for partial input. An empty result is not an error:
// the customer can always keep the text they typed.
type Lookup interface {
	Suggest(ctx context.Context, query string) ([]models.AddressCandidate, error)
	// Manual reports whether the customer has to type the address themselves.
	Manual() bool
}

// New selects the lookup for mode, falling back to manual entry when Google
// is requested without an API key.
func New(mode, apiKey string, logger *zap.Logger) Lookup {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.EqualFold(mode, ModeGoogle) {
		if apiKey != "" {
			return NewGoogleLookup(apiKey)
		}
		logger.Warn("google address lookup requested without GOOGLE_API_KEY, using manual entry")
	}
	return ManualLookup{}
}

// ManualLookup never suggests anything.
type ManualLookup struct{}

func (ManualLookup) Suggest(ctx context.Context, query string) ([]models.AddressCandidate, error) {
	return []models.AddressCandidate{}, nil
}

func (ManualLookup) Manual() bool { return true }

// GoogleLookup queries the Places Autocomplete API.
type GoogleLookup struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGoogleLookup(apiKey string, opts ...func(*GoogleLookup)) *GoogleLookup {
	g := &GoogleLookup{
		APIKey:     apiKey,
		BaseURL:    defaultPlacesURL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GoogleLookup) Manual() bool { return false }

func WithBaseURL(u string) func(*GoogleLookup) {
	return func(g *GoogleLookup) {
		g.BaseURL = u
	}
}

type autocompleteResponse struct {
	Predictions []struct {
		Description string `json:"description"`
		PlaceID     string `json:"place_id"`
	} `json:"predictions"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func (g *GoogleLookup) Suggest(ctx context.Context, query string) ([]models.AddressCandidate, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return []models.AddressCandidate{}, nil
	}

	params := url.Values{}
	params.Set("input", query)
	params.Set("types", "address")
	params.Set("key", g.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var data autocompleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	switch data.Status {
	case "OK":
	case "ZERO_RESULTS":
		return []models.AddressCandidate{}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrLookupFailed, data.Status, data.ErrorMessage)
	}

	candidates := make([]models.AddressCandidate, 0, len(data.Predictions))
	for _, p := range data.Predictions {
		if len(candidates) == maxSuggestions {
			break
		}
		candidates = append(candidates, models.AddressCandidate{PlaceID: p.PlaceID, Description: p.Description})
	}
	return candidates, nil
}
