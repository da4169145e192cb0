package metrics

import (
	"errors"
	"runtime"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_memory_bytes",
		Help: "Current system memory usage",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "system_goroutines",
		Help: "Number of goroutines",
	})

	// Generation metrics
	GraphsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_graph_generated_total",
			Help: "Total number of generation calls",
		},
		[]string{"status", "id_scheme"},
	)

	GenerationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_graph_generation_errors_total",
			Help: "Generation failures by error kind",
		},
		[]string{"kind"},
	)

	// Graph metrics, describing the most recently generated graph
	GraphNodeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sample_graph_nodes",
			Help: "Number of nodes in the last generated graph",
		},
		[]string{"object_type"},
	)

	GraphEdgeCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sample_graph_edges",
		Help: "Number of edges in the last generated graph",
	})
)

// Error kinds reported on GenerationErrors
const (
	KindConfiguration     = "configuration"
	KindInsufficientNodes = "insufficient_nodes"
	KindIdentifierSpace   = "identifier_space"
	KindOther             = "other"
)

// ObserveGraph records a successful generation
func ObserveGraph(doc *graph.Document, scheme graph.IDScheme) {
	GraphsGenerated.WithLabelValues("success", string(scheme)).Inc()

	GraphNodeCount.Reset()
	for _, n := range doc.Nodes {
		GraphNodeCount.WithLabelValues(n.ObjectType).Inc()
	}
	GraphEdgeCount.Set(float64(len(doc.Edges)))
}

// ObserveError records a failed generation and returns the kind it was filed under
func ObserveError(err error, scheme graph.IDScheme) string {
	kind := ErrorKind(err)
	GraphsGenerated.WithLabelValues("error", string(scheme)).Inc()
	GenerationErrors.WithLabelValues(kind).Inc()
	return kind
}

// ErrorKind classifies a generation error
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, graph.ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, graph.ErrInsufficientNodes):
		return KindInsufficientNodes
	case errors.Is(err, graph.ErrIdentifierSpace):
		return KindIdentifierSpace
	default:
		return KindOther
	}
}

// UpdateSystemMetrics updates system-level metrics
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
