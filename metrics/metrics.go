// Package metrics exposes prometheus counters for the storage and operator
// paths. Counters live in their own registry so embedding programs decide
// whether and where to serve them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ebtensor"

type Collector struct {
	Registry *prometheus.Registry

	// CutPatches counts patch stores created by collection builds, by state
	CutPatches *prometheus.CounterVec
	// ParallelCopyBytes counts bytes packed by collective redistribution
	ParallelCopyBytes prometheus.Counter
	// OperatorApplies counts operator applications by path (base, cross_term)
	OperatorApplies *prometheus.CounterVec
	// BoundaryFills counts ghost cells written by the edge and corner fill
	BoundaryFills *prometheus.CounterVec
}

func NewCollector() (c *Collector) {
	c = &Collector{
		Registry: prometheus.NewRegistry(),
		CutPatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cutcell",
			Name:      "patches_total",
			Help:      "Cut cell patch stores created, by allocation state.",
		}, []string{"state"}),
		ParallelCopyBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cutcell",
			Name:      "parallel_copy_bytes_total",
			Help:      "Bytes packed by cut cell redistribution.",
		}),
		OperatorApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tensor",
			Name:      "applies_total",
			Help:      "Tensor operator applications, by path.",
		}, []string{"path"}),
		BoundaryFills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tensor",
			Name:      "boundary_fills_total",
			Help:      "Ghost cells written by the tensor boundary fill, by kind.",
		}, []string{"kind"}),
	}
	c.Registry.MustRegister(c.CutPatches, c.ParallelCopyBytes, c.OperatorApplies, c.BoundaryFills)
	return
}

// Default is the collector used by the library packages
var Default = NewCollector()

// Snapshot flattens the registry into name{labels} -> value for reports
func (c *Collector) Snapshot() (values map[string]float64, err error) {
	families, err := c.Registry.Gather()
	if err != nil {
		return
	}
	values = make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, lp := range m.GetLabel() {
				name += "{" + lp.GetName() + "=" + lp.GetValue() + "}"
			}
			if m.GetCounter() != nil {
				values[name] = m.GetCounter().GetValue()
			}
		}
	}
	return
}
