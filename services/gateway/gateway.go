package gateway

import (
	"context"

	"quotewizard/models"

	"go.uber.org/zap"
)

// QuoteGateway prices a draft and initiates its payment. Settled outcomes are
// remembered per idempotency key so a retried submission never creates a second payment.
type QuoteGateway struct {
	pricing  PricingClient
	payments PaymentInitiator
	cache    ResultCache
	logger   *zap.Logger
}

// NewQuoteGateway wires the gateway. cache may be nil, leaving deduplication to
// the payment provider's own idempotency handling.
func NewQuoteGateway(pricing PricingClient, payments PaymentInitiator, cache ResultCache, logger *zap.Logger) *QuoteGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteGateway{pricing: pricing, payments: payments, cache: cache, logger: logger}
}

func (g *QuoteGateway) Submit(ctx context.Context, draft models.BookingDraft, idempotencyKey string) models.SubmissionResult {
	if idempotencyKey == "" {
		return models.Unavailable("missing idempotency key")
	}
	log := g.logger.With(zap.String("idempotency_key", idempotencyKey))

	if g.cache != nil {
		cached, err := g.cache.Get(ctx, idempotencyKey)
		if err != nil {
			log.Warn("submission ledger lookup failed", zap.Error(err))
		} else if cached != nil {
			log.Info("returning settled submission", zap.String("status", string(cached.Status)))
			return *cached
		}

		acquired, err := g.cache.Acquire(ctx, idempotencyKey)
		switch {
		case err != nil:
			log.Warn("submission lock failed", zap.Error(err))
		case !acquired:
			return models.Unavailable("a submission with this key is already in progress")
		default:
			defer func() {
				if err := g.cache.Release(context.WithoutCancel(ctx), idempotencyKey); err != nil {
					log.Warn("submission lock release failed", zap.Error(err))
				}
			}()
		}
	}

	result := g.submit(ctx, draft, idempotencyKey)

	if result.Settled() && g.cache != nil {
		if err := g.cache.Put(context.WithoutCancel(ctx), idempotencyKey, result); err != nil {
			log.Warn("failed to record settled submission", zap.Error(err))
		}
	}
	log.Info("submission finished", zap.String("status", string(result.Status)), zap.String("reason", result.Reason))
	return result
}

func (g *QuoteGateway) submit(ctx context.Context, draft models.BookingDraft, idempotencyKey string) models.SubmissionResult {
	quote, err := g.pricing.Quote(ctx, draft, idempotencyKey)
	if err != nil {
		return g.failure(ctx, "pricing", err)
	}

	token, err := g.payments.Initiate(ctx, *quote, draft, idempotencyKey)
	if err != nil {
		return g.failure(ctx, "payment", err)
	}
	return models.Accepted(token, quote)
}

func (g *QuoteGateway) failure(ctx context.Context, stage string, err error) models.SubmissionResult {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return models.Unavailable(stage + ": " + ctxErr.Error())
	}
	return resultFromError(err)
}
