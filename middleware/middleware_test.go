package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRateLimitPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, hit("1.1.1.1"))
	require.Equal(t, http.StatusOK, hit("1.1.1.1"))
	require.Equal(t, http.StatusTooManyRequests, hit("1.1.1.1"))
	require.Equal(t, http.StatusOK, hit("2.2.2.2"))
}

func TestRateLimiterStoreDropsIdleIPs(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	store := newRateLimiterStore(2)
	store.now = func() time.Time { return now }

	store.getLimiter("198.51.100.1")
	busy := store.getLimiter("198.51.100.2")
	require.Equal(t, 2, store.size())

	now = now.Add(6 * time.Minute)
	require.Same(t, busy, store.getLimiter("198.51.100.2"))

	now = now.Add(5 * time.Minute)
	store.getLimiter("198.51.100.3")

	// .1 went quiet 11 minutes ago; .2 was seen 5 minutes ago.
	require.Equal(t, 2, store.size())
	require.Same(t, busy, store.getLimiter("198.51.100.2"))
	require.NotContains(t, store.limiters, "198.51.100.1")
}

func TestGetClientIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": " 9.9.9.9 , 10.0.0.1"}, "127.0.0.1:1234", "9.9.9.9"},
		{"real ip", map[string]string{"X-Real-IP": "8.8.8.8"}, "127.0.0.1:1234", "8.8.8.8"},
		{"remote", nil, "7.7.7.7:5555", "7.7.7.7"},
		{"garbage header", map[string]string{"X-Forwarded-For": "unknown"}, "7.7.7.7:5555", "7.7.7.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			require.Equal(t, tt.want, getClientIP(c))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		_, ok := c.Get("logger")
		require.True(t, ok)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	entries := logs.FilterMessage("request handled").All()
	require.Len(t, entries, 1)
	require.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	require.Equal(t, "/ok", entries[0].ContextMap()["path"])
}
