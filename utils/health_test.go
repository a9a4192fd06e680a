package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHealthStatusHealthy(t *testing.T) {
	now := time.Now()
	require.True(t, HealthStatus{}.Healthy())
	require.True(t, HealthStatus{Mongo: true, Redis: []bool{true}, CheckedAt: now}.Healthy())
	require.False(t, HealthStatus{Mongo: false, Redis: []bool{true}, CheckedAt: now}.Healthy())
	require.False(t, HealthStatus{Mongo: true, Redis: []bool{true, false}, CheckedAt: now}.Healthy())
}
