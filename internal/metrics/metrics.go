// Package metrics exposes Prometheus counters for the driver loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts model turns created or continued.
	TurnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deskdriver",
		Name:      "turns_total",
		Help:      "Model turns created or continued.",
	})

	// ActionsTotal counts dispatched environment actions by action type.
	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deskdriver",
		Name:      "actions_total",
		Help:      "Environment actions dispatched, by action type.",
	}, []string{"type"})

	// DispatchFailures counts swallowed primitive-execution failures.
	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deskdriver",
		Name:      "dispatch_failures_total",
		Help:      "Environment primitive failures absorbed by the dispatcher.",
	})

	// ModelErrors counts failed calls to the model service.
	ModelErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "deskdriver",
		Name:      "model_errors_total",
		Help:      "Failed model-service calls.",
	})

	// ToolCalls counts executed function tool calls by tool name.
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "deskdriver",
		Name:      "tool_calls_total",
		Help:      "Function tool calls executed, by tool name.",
	}, []string{"tool"})
)
