package main

import (
	"errors"
	"fmt"
	"strings"

	"quotewizard/config"
	"quotewizard/services/address"
)

// checkProductionConfig refuses to run a production server that could only
// ever answer "unavailable" at the payment step.
func checkProductionConfig(cfg config.Config) error {
	if cfg.Env != "production" {
		return nil
	}
	var missing []string
	if cfg.StripeKey == "" {
		missing = append(missing, "STRIPE_KEY")
	}
	if cfg.PricingURL == "" {
		missing = append(missing, "PRICING_URL")
	}
	if strings.EqualFold(cfg.AddressLookup, address.ModeGoogle) && cfg.GoogleAPIKey == "" {
		missing = append(missing, "GOOGLE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing production settings: %s", strings.Join(missing, ", "))
	}
	if strings.HasPrefix(cfg.StripeKey, "sk_test_") {
		return errors.New("STRIPE_KEY is a test key")
	}
	return nil
}
