package wizard

import (
	"context"
	"testing"
	"time"

	"quotewizard/models"

	"github.com/stretchr/testify/require"
)

func TestSessionManagerLifecycle(t *testing.T) {
	m := NewSessionManager(Dependencies{Validator: fixedValidator(), Gateway: newLedgerGateway()}, time.Hour)

	ctrl := m.Start()
	require.Equal(t, 1, m.Len())

	got, err := m.Get(ctrl.ID())
	require.NoError(t, err)
	require.Same(t, ctrl, got)

	require.NoError(t, m.Discard(ctrl.ID()))
	_, err = m.Get(ctrl.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.ErrorIs(t, m.Discard(ctrl.ID()), ErrSessionNotFound)

	_, err = ctrl.Back()
	require.ErrorIs(t, err, ErrSessionDiscarded)
}

func TestSessionManagerSweep(t *testing.T) {
	m := NewSessionManager(Dependencies{Validator: fixedValidator(), Gateway: newLedgerGateway()}, 10*time.Minute)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale := m.Start()
	now = now.Add(8 * time.Minute)
	fresh := m.Start()
	now = now.Add(5 * time.Minute)

	removed := m.Sweep()

	require.Equal(t, 1, removed)
	_, err := m.Get(stale.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	require.NoError(t, err)
}

func TestSessionManagerRelease(t *testing.T) {
	m := NewSessionManager(Dependencies{Validator: fixedValidator()}, time.Hour)
	ctrl := m.Start()

	m.Release(ctrl.ID())

	require.Equal(t, 0, m.Len())
}

func TestSessionManagerKeepsAndRetriesFailedHandoffs(t *testing.T) {
	checkout := &flakyCheckout{failures: 2}
	deps := Dependencies{
		Validator: fixedValidator(),
		Gateway:   &scriptedGateway{result: models.Accepted("tok_abc", nil)},
		Checkout:  checkout,
	}
	m := NewSessionManager(deps, time.Minute)
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	ctrl := m.Start()
	advanceToPayment(t, ctrl)
	_, err := ctrl.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ctrl.HandoffPending())

	// Idle past the ttl, but the booking is not recorded yet.
	now = now.Add(time.Hour)
	require.Zero(t, m.Sweep())
	require.Equal(t, 1, m.Len())

	require.Equal(t, 1, m.RetryHandoffs(context.Background()))
	require.Equal(t, 1, m.Len())

	require.Zero(t, m.RetryHandoffs(context.Background()))
	require.Zero(t, m.Len())
	require.Len(t, checkout.stored, 1)
}
