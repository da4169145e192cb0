package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type levelShift struct{ by int }

func (p levelShift) Name() string { return "shift" }

func (p levelShift) Process(ctx context.Context, doc *Document) error {
	for i := range doc.Nodes {
		doc.Nodes[i].Level += p.by
	}
	return nil
}

type failing struct{}

func (failing) Name() string { return "failing" }

func (failing) Process(ctx context.Context, doc *Document) error {
	return errors.New("boom")
}

func TestPipelineProcessLeavesInputUntouched(t *testing.T) {
	doc := chainDocument()
	before := doc.Clone()

	p := NewPipeline(levelShift{by: 1})
	p.AddProcessor(levelShift{by: 2})

	out, err := p.Process(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, before, doc)
	for _, n := range out.Nodes {
		assert.Equal(t, 3, n.Level)
	}
}

func TestPipelineErrors(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), chainDocument())
	assert.Error(t, err)

	_, err = NewPipeline(levelShift{}).Process(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewPipeline(levelShift{}, failing{}).Process(context.Background(), chainDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewPipeline(levelShift{}).Process(ctx, chainDocument())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineBatchProcessKeepsOrder(t *testing.T) {
	docs := make([]*Document, 25)
	for i := range docs {
		doc, err := newTestGenerator(uint64(i)).GenerateGraph(sampleSpec(5, 4))
		require.NoError(t, err)
		docs[i] = doc
	}

	out, err := NewPipeline(levelShift{by: 10}).BatchProcess(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, out, len(docs))
	for i := range docs {
		assert.Equal(t, docs[i].NodeIDs(), out[i].NodeIDs())
		assert.Equal(t, docs[i].Nodes[0].Level+10, out[i].Nodes[0].Level)
	}
}

func TestPipelineBatchProcessFails(t *testing.T) {
	_, err := NewPipeline(failing{}).BatchProcess(context.Background(), []*Document{chainDocument()})
	assert.Error(t, err)
}
