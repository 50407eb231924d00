package observability

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthChecker_Check(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		circuit    string
		wantStatus string
		wantDB     string
	}{
		{name: "no database", db: nil, wantStatus: "healthy", wantDB: "not configured"},
		{name: "database up", db: fakePinger{}, wantStatus: "healthy", wantDB: "healthy"},
		{name: "database down", db: fakePinger{err: errors.New("refused")}, wantStatus: "unhealthy", wantDB: "unhealthy: refused"},
		{name: "circuit open", db: nil, circuit: "circuit open", wantStatus: "unhealthy", wantDB: "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker(tt.db)
			circuit := tt.circuit
			hc.AddCheck("paytr", func(context.Context) string { return circuit })

			status := hc.Check(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantDB, status.Checks["database"])
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	hc := NewHealthChecker(fakePinger{err: errors.New("down")})
	srv := httptest.NewServer(NewMetricsHandler(hc))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "unhealthy", status.Status)

	ready, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	ready.Body.Close()
	assert.Equal(t, http.StatusOK, ready.StatusCode)

	RecordGatewayRequest("capture", "ok", 10*time.Millisecond)
	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "paytr_gateway_requests_total")
}

func TestRecordProcessorOperation(t *testing.T) {
	before := testutil.ToFloat64(processorOperationsTotal.WithLabelValues("refund", "failure", "REFUND_FAILED"))
	RecordProcessorOperation("refund", "REFUND_FAILED", time.Millisecond)
	after := testutil.ToFloat64(processorOperationsTotal.WithLabelValues("refund", "failure", "REFUND_FAILED"))
	assert.Equal(t, before+1, after)
}

func TestRecordProcessorAmount_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(processorAmountMinor.WithLabelValues("capture", "try"))
	RecordProcessorAmount("capture", "try", 0)
	RecordProcessorAmount("capture", "try", 1500)
	assert.Equal(t, before+1500, testutil.ToFloat64(processorAmountMinor.WithLabelValues("capture", "try")))
}

func TestHTTPMiddleware_RecordsStatus(t *testing.T) {
	h := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/probe", "418"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/probe", "418")))
}
