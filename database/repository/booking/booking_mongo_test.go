package bookingRepo

import (
	"context"
	"os"
	"testing"
	"time"

	"quotewizard/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs against a live MongoDB when TEST_MONGO_URL is set.
func newTestRepo(t *testing.T) BookingRepository {
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo unavailable: %v", err)
	}

	db := client.Database("quotewizard_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoBookingRepo(db)
}

func TestMongoUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	booking := &models.Booking{
		ID:             uuid.NewString(),
		SessionID:      "s-1",
		IdempotencyKey: "key-1",
		PaymentToken:   "pi_1",
		Quote:          &models.Quote{ID: "q-1", Amount: decimal.RequireFromString("900.10"), Currency: "usd"},
	}

	created, err := repo.Upsert(ctx, booking)
	require.NoError(t, err)
	require.True(t, created)

	dup := *booking
	dup.ID = uuid.NewString()
	created, err = repo.Upsert(ctx, &dup)
	require.NoError(t, err)
	require.False(t, created)

	stored, err := repo.GetByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, booking.ID, stored.ID)
	require.Equal(t, models.BookingStatusSubmitted, stored.Status)
	require.Equal(t, "900.1", stored.Quote.Amount.String())
}

func TestMongoMarkConfirmed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	booking := &models.Booking{ID: uuid.NewString(), IdempotencyKey: "key-2", PaymentToken: "pi_2"}
	_, err := repo.Upsert(ctx, booking)
	require.NoError(t, err)

	at := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkConfirmed(ctx, booking.ID, at))
	require.NoError(t, repo.MarkConfirmed(ctx, booking.ID, at.Add(time.Hour)))

	stored, err := repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusConfirmed, stored.Status)
	require.True(t, stored.ConfirmedAt.Equal(at))

	require.ErrorIs(t, repo.MarkConfirmed(ctx, "missing", at), ErrBookingNotFound)
	_, err = repo.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrBookingNotFound)
}
