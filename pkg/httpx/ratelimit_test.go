package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimitByIP(t *testing.T) {
	t.Parallel()

	cfg := RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), RateLimitByIP(cfg))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do("1.2.3.4:1000"))
	require.Equal(t, http.StatusOK, do("1.2.3.4:1000"))
	require.Equal(t, http.StatusTooManyRequests, do("1.2.3.4:1000"))

	// A different client gets its own budget.
	require.Equal(t, http.StatusOK, do("5.6.7.8:1000"))
}

func TestIPKeyHonoursProxyHeaders(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:9999"
	require.Equal(t, "10.0.0.1", IPKey(req))

	req.Header.Set("X-Real-IP", "2.2.2.2")
	require.Equal(t, "2.2.2.2", IPKey(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 9.9.9.9")
	require.Equal(t, "1.1.1.1", IPKey(req))
}
