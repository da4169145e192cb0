// Package processors enriches generated graph documents with metadata
// derived from their edges: true degrees, dependency levels and
// connectivity clusters.
package processors

import (
	"context"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/athapong/sample-graph/pkg/graph/algorithms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var processingDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "sample_graph_processor_duration_seconds",
		Help: "Time spent in each graph processor",
	},
	[]string{"processor_type"},
)

func init() {
	prometheus.MustRegister(processingDuration)
}

const (
	ProcessorDegree  = "degree"
	ProcessorLevel   = "level"
	ProcessorCluster = "cluster"
)

// DefaultProcessors returns degree, level and cluster processors in that order
func DefaultProcessors() []graph.Processor {
	return []graph.Processor{
		NewDegreeProcessor(),
		NewLevelProcessor(),
		NewClusterProcessor(),
	}
}

// DegreeProcessor replaces decorative degrees with edge counts
type DegreeProcessor struct{}

func NewDegreeProcessor() *DegreeProcessor {
	return &DegreeProcessor{}
}

func (p *DegreeProcessor) Name() string { return ProcessorDegree }

func (p *DegreeProcessor) Process(ctx context.Context, doc *graph.Document) error {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues(ProcessorDegree))
	defer timer.ObserveDuration()

	graph.SetTrueDegrees(doc)
	return nil
}

// ClusterProcessor tags every node with the index of its weakly connected
// component, numbered in order of first appearance
type ClusterProcessor struct {
	logger *logrus.Logger
}

func NewClusterProcessor() *ClusterProcessor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &ClusterProcessor{logger: logger}
}

func (p *ClusterProcessor) Name() string { return ProcessorCluster }

func (p *ClusterProcessor) Process(ctx context.Context, doc *graph.Document) error {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues(ProcessorCluster))
	defer timer.ObserveDuration()

	idx := graph.NewIndex(doc)
	components := algorithms.Components(idx)
	for cluster, members := range components {
		for _, id := range members {
			if pos, ok := idx.Position(id); ok {
				doc.Nodes[pos].Cluster = cluster
			}
		}
	}

	p.logger.WithField("clusters", len(components)).Debug("Assigned connectivity clusters")
	return nil
}
