package storage

import (
	"testing"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeParamsRoundTrip(t *testing.T) {
	doc := generated(t, 6)
	params := nodeParams(doc)
	require.Len(t, params, len(doc.Nodes))

	for i, p := range params {
		row := p.(map[string]interface{})
		assert.Equal(t, int64(i), row["seq"])

		get := func(key string) (interface{}, bool) {
			v, ok := row[key]
			return v, ok
		}
		assert.Equal(t, doc.Nodes[i], nodeFromRecord(get))
	}
}

func TestEdgeParams(t *testing.T) {
	doc := &graph.Document{Edges: []graph.Edge{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}}}
	params := edgeParams(doc)
	require.Len(t, params, 2)
	assert.Equal(t, map[string]interface{}{"seq": int64(1), "source": "b", "target": "a"}, params[1])
}

func TestRecordValueConversions(t *testing.T) {
	values := map[string]interface{}{"i64": int64(3), "int": 4, "f": 5.0, "s": "x", "nil": nil}
	get := func(key string) (interface{}, bool) {
		v, ok := values[key]
		return v, ok
	}

	assert.Equal(t, 3, intValue(get, "i64"))
	assert.Equal(t, 4, intValue(get, "int"))
	assert.Equal(t, 5, intValue(get, "f"))
	assert.Equal(t, 0, intValue(get, "nil"))
	assert.Equal(t, 0, intValue(get, "missing"))
	assert.Equal(t, "x", stringValue(get, "s"))
	assert.Equal(t, "", stringValue(get, "i64"))
}

func TestNewNeo4jStorage(t *testing.T) {
	// creating the driver does not dial the server
	s, err := NewNeo4jStorage("bolt://localhost:7687", "neo4j", "secret", "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", s.graph)
	assert.NoError(t, s.Close())

	_, err = NewNeo4jStorage("ftp://localhost", "neo4j", "secret", "demo")
	assert.Error(t, err)
}

func TestCheckLoaded(t *testing.T) {
	doc := generated(t, 2)
	got, err := checkLoaded("demo", doc)
	require.NoError(t, err)
	assert.Same(t, doc, got)

	_, err = checkLoaded("demo", &graph.Document{})
	assert.ErrorIs(t, err, ErrGraphNotFound)

	_, err = checkLoaded("demo", &graph.Document{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{{Source: "a", Target: "c"}},
	})
	assert.ErrorIs(t, err, graph.ErrInvalidDocument)
	assert.Contains(t, err.Error(), "load graph demo")
}
