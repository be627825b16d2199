package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/bobmcallan/mini-analyst/internal/common"
	"github.com/bobmcallan/mini-analyst/internal/metrics"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestCorrelationIDMiddleware(t *testing.T) {
	handler := correlationIDMiddleware(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Len(t, rr.Header().Get("X-Correlation-ID"), 8)

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get("X-Correlation-ID"))
}

func TestCorsMiddleware_Preflight(t *testing.T) {
	called := false
	handler := corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := recoveryMiddleware(common.NewSilentLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("indicator exploded")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/analyze?symbol=AAPL", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error","code":"internal_error"}`, rr.Body.String())
}

func TestLoggingMiddleware_CapturesStatus(t *testing.T) {
	var captured *responseWriter
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = w.(*responseWriter)
		WriteError(w, http.StatusBadGateway, "upstream down")
	})

	rr := httptest.NewRecorder()
	loggingMiddleware(common.NewSilentLogger())(inner).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	require.NotNil(t, captured)
	assert.Equal(t, http.StatusBadGateway, captured.statusCode)
	assert.Equal(t, rr.Body.Len(), captured.bytesWritten)
}

func TestWorkerLimit_RejectsWhenContextEnds(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	sem := semaphore.NewWeighted(1)
	require.NoError(t, sem.Acquire(context.Background(), 1)) // hold the only slot

	called := false
	handler := workerLimit(sem, m, common.NewSilentLogger())(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/analyze?symbol=AAPL", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	handler(rr, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "busy", decodeError(t, rr).Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rejected))
}

func TestWorkerLimit_ReleasesSlot(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	sem := semaphore.NewWeighted(1)

	var inFlight float64
	handler := workerLimit(sem, m, common.NewSilentLogger())(func(w http.ResponseWriter, r *http.Request) {
		inFlight = testutil.ToFloat64(m.InFlight)
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/api/analyze?symbol=AAPL", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	assert.Equal(t, 1.0, inFlight)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlight))
	assert.True(t, sem.TryAcquire(1), "slot must be released after each request")
}
