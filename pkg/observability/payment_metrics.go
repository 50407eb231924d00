package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PayTR HTTP calls, one per attempt
	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paytr_gateway_requests_total",
		Help: "Total number of requests sent to the PayTR API",
	}, []string{
		"operation", // initiate, authorize, capture, refund, ...
		"outcome",   // ok, network_error, system_error, invalid_request, declined, ...
	})

	gatewayRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "paytr_gateway_request_duration_seconds",
		Help:    "Duration of PayTR API requests in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	gatewayCircuitState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "paytr_gateway_circuit_state",
		Help: "PayTR circuit breaker state (0=closed, 1=open, 2=half-open)",
	})

	// Processor operations as seen by the host
	processorOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_processor_operations_total",
		Help: "Total number of payment processor operations",
	}, []string{
		"operation",
		"status", // success, failure
		"code",   // normalized error code, empty on success
	})

	processorOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_processor_operation_duration_seconds",
		Help:    "End-to-end duration of payment processor operations",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation", "status"})

	processorAmountMinor = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_processor_amount_minor_total",
		Help: "Sum of captured and refunded amounts in minor currency units",
	}, []string{"operation", "currency"})
)

// RecordGatewayRequest records a single PayTR API attempt
func RecordGatewayRequest(operation, outcome string, duration time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetGatewayCircuitState publishes the breaker state as a number
func SetGatewayCircuitState(state int) {
	gatewayCircuitState.Set(float64(state))
}

// RecordProcessorOperation records the outcome of a host-facing operation
func RecordProcessorOperation(operation, code string, duration time.Duration) {
	status := "success"
	if code != "" {
		status = "failure"
	}
	processorOperationsTotal.WithLabelValues(operation, status, code).Inc()
	processorOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordProcessorAmount adds a settled amount for revenue dashboards.
// Currency may be empty when the host did not send one.
func RecordProcessorAmount(operation, currency string, amountMinor int64) {
	if amountMinor <= 0 {
		return
	}
	processorAmountMinor.WithLabelValues(operation, currency).Add(float64(amountMinor))
}
