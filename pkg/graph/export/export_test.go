package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleDocument() *graph.Document {
	return &graph.Document{
		Nodes: []graph.Node{
			{ID: "dbo.USER_TABLE_ab12cd", SchemaName: "dbo", ObjectName: "USER_TABLE_x1y2z", ObjectType: "USER_TABLE", Level: 0, Cluster: 2, InDegree: 1, OutDegree: 0},
			{ID: "Sales.VIEW_9zz8yy", SchemaName: "Sales", ObjectName: "VIEW_k3j4h", ObjectType: "VIEW", Level: 1, Cluster: 0, InDegree: 0, OutDegree: 1},
		},
		Edges: []graph.Edge{
			{Source: "Sales.VIEW_9zz8yy", Target: "dbo.USER_TABLE_ab12cd"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"json", "CYTOSCAPE", " d3 "} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("graphml")
	assert.Error(t, err)
	assert.Equal(t, []Format{FormatJSON, FormatCytoscape, FormatD3}, Formats())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDocument(), FormatJSON))

	out := gjson.ParseBytes(buf.Bytes())
	assert.Equal(t, "dbo.USER_TABLE_ab12cd", out.Get("nodes.0.id").String())
	assert.Equal(t, "USER_TABLE_x1y2z", out.Get("nodes.0.object_name").String())
	assert.Equal(t, int64(2), out.Get("nodes.0.cluster").Int())
	assert.Equal(t, int64(1), out.Get("nodes.1.out_degree").Int())
	assert.Equal(t, "Sales.VIEW_9zz8yy", out.Get("edges.0.source").String())
	assert.Contains(t, buf.String(), "\n  \"nodes\"")
}

func TestWriteCytoscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDocument(), FormatCytoscape))

	out := gjson.ParseBytes(buf.Bytes())
	assert.Equal(t, "dbo.USER_TABLE_ab12cd", out.Get("nodes.0.data.id").String())
	assert.Equal(t, "USER_TABLE_x1y2z", out.Get("nodes.0.data.label").String())
	assert.Equal(t, "dbo", out.Get("nodes.0.data.schema_name").String())
	// zero values are still written for nodes
	assert.True(t, out.Get("nodes.0.data.level").Exists())
	assert.Equal(t, "e0", out.Get("edges.0.data.id").String())
	assert.Equal(t, "Sales.VIEW_9zz8yy", out.Get("edges.0.data.source").String())
	assert.False(t, out.Get("edges.0.data.level").Exists())
}

func TestWriteD3(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDocument(), FormatD3))

	out := gjson.ParseBytes(buf.Bytes())
	assert.Equal(t, "VIEW", out.Get("nodes.1.group").String())
	assert.Equal(t, "Sales", out.Get("nodes.1.schema").String())
	assert.Equal(t, "dbo.USER_TABLE_ab12cd", out.Get("links.0.target").String())
	assert.Equal(t, int64(1), out.Get("links.#").Int())
}

func TestToCytoscapeKeepsDistinctValues(t *testing.T) {
	cy := ToCytoscape(sampleDocument())
	require.Len(t, cy.Nodes, 2)
	assert.Equal(t, 2, *cy.Nodes[0].Data.Cluster)
	assert.Equal(t, 0, *cy.Nodes[1].Data.Cluster)
	assert.Equal(t, 1, *cy.Nodes[1].Data.Level)
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleDocument(), Format("svg")))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "graph.json")
	require.NoError(t, WriteFile(path, sampleDocument(), FormatD3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, gjson.ValidBytes(data))
	assert.Equal(t, int64(2), gjson.GetBytes(data, "nodes.#").Int())
}
