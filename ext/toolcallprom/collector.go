// Package toolcallprom exports executor outcomes as Prometheus metrics.
package toolcallprom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skosovsky/toolcall"
)

// Collector holds the tool execution metrics.
type Collector struct {
	ExecutionsTotal   *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
}

// NewCollector creates the metrics under namespace (may be empty) and registers them with reg.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	c := &Collector{
		ExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_executions_total",
				Help:      "Total number of tool executions",
			},
			[]string{"tool_name", "status"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_execution_errors_total",
				Help:      "Total number of failed tool executions by error type",
			},
			[]string{"tool_name", "error_type"},
		),
		ExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "tool_execution_duration_seconds",
				Help:      "Duration of tool executions in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"tool_name"},
		),
	}
	for _, m := range []prometheus.Collector{c.ExecutionsTotal, c.ErrorsTotal, c.ExecutionDuration} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Observe records one executor outcome. Its signature matches toolcall.WithOnAfterExecute.
func (c *Collector) Observe(_ context.Context, call toolcall.ToolCall, res *toolcall.Result, d time.Duration) {
	c.ExecutionsTotal.WithLabelValues(call.ToolName, res.Status.String()).Inc()
	c.ExecutionDuration.WithLabelValues(call.ToolName).Observe(d.Seconds())
	if res.IsError() {
		errType := toolcall.ErrorUnknown
		if res.ErrorDetails != nil {
			errType = res.ErrorDetails.Type
		}
		label, err := errType.MarshalText()
		if err != nil {
			label = []byte("unknown")
		}
		c.ErrorsTotal.WithLabelValues(call.ToolName, string(label)).Inc()
	}
}

// Option returns the executor option that feeds this collector.
func (c *Collector) Option() toolcall.ExecutorOption {
	return toolcall.WithOnAfterExecute(c.Observe)
}
