package processors

import (
	"context"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// LevelProcessor assigns dependency depth: nodes without predecessors sit at
// level 0, every other node one level below its deepest predecessor.
//
// Random graphs usually contain cycles. Nodes left over after the
// topological pass are levelled in document order from whichever
// predecessors already have a level.
type LevelProcessor struct {
	logger *logrus.Logger
}

func NewLevelProcessor() *LevelProcessor {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &LevelProcessor{logger: logger}
}

func (p *LevelProcessor) Name() string { return ProcessorLevel }

func (p *LevelProcessor) Process(ctx context.Context, doc *graph.Document) error {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues(ProcessorLevel))
	defer timer.ObserveDuration()

	idx := graph.NewIndex(doc)
	levels := make(map[string]int, len(doc.Nodes))
	pending := make(map[string]int, len(doc.Nodes))

	queue := make([]string, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		pending[n.ID] = len(idx.Predecessors(n.ID))
		if pending[n.ID] == 0 {
			levels[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := queue[0]
		queue = queue[1:]
		for _, next := range idx.Successors(current) {
			if lvl := levels[current] + 1; lvl > levels[next] {
				levels[next] = lvl
			}
			pending[next]--
			if pending[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	cyclic := 0
	for _, n := range doc.Nodes {
		if pending[n.ID] <= 0 {
			continue
		}
		cyclic++
		best := 0
		for _, pred := range idx.Predecessors(n.ID) {
			if lvl, ok := levels[pred]; ok && lvl+1 > best {
				best = lvl + 1
			}
		}
		levels[n.ID] = best
		pending[n.ID] = 0
	}

	for i := range doc.Nodes {
		doc.Nodes[i].Level = levels[doc.Nodes[i].ID]
	}

	if cyclic > 0 {
		p.logger.WithField("cyclic_nodes", cyclic).Debug("Levelled nodes on cycles by partial predecessors")
	}
	return nil
}
