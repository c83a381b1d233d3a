package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultRegistry = newRegistry()

type registry struct {
	reg *prometheus.Registry

	toolCalls        *prometheus.CounterVec
	toolDuration     *prometheus.HistogramVec
	auditFailures    prometheus.Counter
	rpcErrors        *prometheus.CounterVec
	activeTransports *prometheus.GaugeVec
}

func newRegistry() *registry {
	r := &registry{
		reg: prometheus.NewRegistry(),
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soapbridge_tool_calls_total",
				Help: "Tool calls by tool, action and outcome status",
			},
			[]string{"tool", "action", "status"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soapbridge_tool_duration_seconds",
				Help:    "Tool call latency in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"tool"},
		),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "soapbridge_audit_write_failures_total",
			Help: "Audit records that could not be persisted",
		}),
		rpcErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soapbridge_jsonrpc_errors_total",
				Help: "JSON-RPC error responses by code",
			},
			[]string{"code"},
		),
		activeTransports: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "soapbridge_active_connections",
				Help: "Open MCP connections by transport",
			},
			[]string{"transport"},
		),
	}
	r.reg.MustRegister(
		r.toolCalls,
		r.toolDuration,
		r.auditFailures,
		r.rpcErrors,
		r.activeTransports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func IncToolCall(toolName, action, status string) {
	defaultRegistry.toolCalls.WithLabelValues(toolName, action, status).Inc()
}

func ObserveToolDuration(toolName string, d time.Duration) {
	defaultRegistry.toolDuration.WithLabelValues(toolName).Observe(d.Seconds())
}

func IncAuditWriteFailure() {
	defaultRegistry.auditFailures.Inc()
}

func IncRPCError(code string) {
	defaultRegistry.rpcErrors.WithLabelValues(code).Inc()
}

// TrackConnection bumps the open-connection gauge and returns the matching
// decrement.
func TrackConnection(transport string) func() {
	g := defaultRegistry.activeTransports.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(defaultRegistry.reg, promhttp.HandlerOpts{})
}
