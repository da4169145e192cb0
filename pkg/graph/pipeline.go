package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

var (
	pipelineProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "sample_graph_pipeline_duration_seconds",
			Help: "Time spent running graph documents through the processing pipeline",
		},
		[]string{"mode"},
	)

	documentProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sample_graph_pipeline_documents_total",
			Help: "Total number of graph documents processed",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(pipelineProcessingDuration)
	prometheus.MustRegister(documentProcessedTotal)
}

// Pipeline runs processors over copies of graph documents
type Pipeline struct {
	processors []Processor
	mutex      sync.RWMutex
	logger     *logrus.Logger
	batchSize  int
}

// NewPipeline creates an empty processing pipeline
func NewPipeline(processors ...Processor) *Pipeline {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Pipeline{
		processors: append([]Processor(nil), processors...),
		batchSize:  10,
		logger:     logger,
	}
}

// SetLogger replaces the pipeline's logger
func (p *Pipeline) SetLogger(logger *logrus.Logger) {
	p.logger = logger
}

// AddProcessor appends a processor to the pipeline
func (p *Pipeline) AddProcessor(processor Processor) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.processors = append(p.processors, processor)
}

// BatchProcess processes documents concurrently, batchSize at a time.
// Results are returned in input order.
func (p *Pipeline) BatchProcess(ctx context.Context, docs []*Document) ([]*Document, error) {
	p.logger.WithField("document_count", len(docs)).Info("Starting batch processing")

	results := make([]*Document, len(docs))
	for i := 0; i < len(docs); i += p.batchSize {
		end := min(i+p.batchSize, len(docs))

		errors := make(chan error, end-i)
		var wg sync.WaitGroup

		for j := i; j < end; j++ {
			wg.Add(1)
			go func(pos int) {
				defer wg.Done()

				timer := prometheus.NewTimer(pipelineProcessingDuration.WithLabelValues("batch"))
				out, err := p.run(ctx, docs[pos])
				timer.ObserveDuration()

				if err != nil {
					p.logger.WithError(err).WithField("position", pos).Error("Failed to process document")
					documentProcessedTotal.WithLabelValues("error").Inc()
					errors <- err
					return
				}

				documentProcessedTotal.WithLabelValues("success").Inc()
				results[pos] = out
			}(j)
		}

		wg.Wait()
		close(errors)

		for err := range errors {
			if err != nil {
				return nil, fmt.Errorf("batch processing failed: %w", err)
			}
		}
	}

	p.logger.Info("Batch processing completed successfully")
	return results, nil
}

// Process runs a copy of doc through every processor in order and returns the
// copy. doc itself is left untouched.
func (p *Pipeline) Process(ctx context.Context, doc *Document) (*Document, error) {
	timer := prometheus.NewTimer(pipelineProcessingDuration.WithLabelValues("single"))
	defer timer.ObserveDuration()

	out, err := p.run(ctx, doc)
	if err != nil {
		documentProcessedTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	documentProcessedTotal.WithLabelValues("success").Inc()
	return out, nil
}

func (p *Pipeline) run(ctx context.Context, doc *Document) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("cannot process nil document")
	}

	p.mutex.RLock()
	processors := append([]Processor(nil), p.processors...)
	p.mutex.RUnlock()

	if len(processors) == 0 {
		return nil, fmt.Errorf("no processors configured in pipeline")
	}

	p.logger.WithFields(logrus.Fields{
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	}).Debug("Processing document")

	work := doc.Clone()
	for i, processor := range processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := processor.Process(ctx, work); err != nil {
			return nil, fmt.Errorf("processor %d (%s) failed: %w", i, processor.Name(), err)
		}
	}

	p.logger.WithField("processors", len(processors)).Debug("Document processing completed")
	return work, nil
}
