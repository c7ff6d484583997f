package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RegistryMetricer is implemented by metrics that can be served by a metrics server.
type RegistryMetricer interface {
	Registry() *prometheus.Registry
}

// DocumentedMetricer is implemented by metrics that can list what they record.
type DocumentedMetricer interface {
	Document() []DocumentedMetric
}

// NewRegistry creates a registry with the process and Go runtime collectors already attached.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewGoCollector())
	return registry
}
