package graph

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSchemas     = []string{"dbo", "HumanResources", "Sales", "Finance", "Inventory"}
	testObjectTypes = []string{"USER_TABLE", "SQL_STORED_PROCEDURE", "VIEW", "FUNCTION"}
)

func sampleSpec(nodes, edges int) GraphSpec {
	return GraphSpec{
		NodeCount:   nodes,
		EdgeCount:   edges,
		Schemas:     testSchemas,
		ObjectTypes: testObjectTypes,
		Levels:      LevelRange{Min: 0, Max: 3},
	}
}

func newTestGenerator(seed uint64, opts ...Option) *Generator {
	return NewGenerator(NewSeededSource(seed), opts...)
}

// assertWellFormed checks the invariants every generated document satisfies
func assertWellFormed(t *testing.T, spec GraphSpec, doc *Document) {
	t.Helper()
	require.Len(t, doc.Nodes, spec.NodeCount)
	require.Len(t, doc.Edges, spec.EdgeCount)

	ids := make(map[string]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		assert.False(t, ids[n.ID], "duplicate id %s", n.ID)
		ids[n.ID] = true
		assert.Contains(t, spec.Schemas, n.SchemaName)
		assert.Contains(t, spec.ObjectTypes, n.ObjectType)
		assert.True(t, spec.Levels.Contains(n.Level), "level %d outside %v", n.Level, spec.Levels)
	}
	for _, e := range doc.Edges {
		assert.NotEqual(t, e.Source, e.Target, "self-loop")
		assert.True(t, ids[e.Source], "dangling source %s", e.Source)
		assert.True(t, ids[e.Target], "dangling target %s", e.Target)
	}
}

func TestGenerateGraphSmall(t *testing.T) {
	spec := GraphSpec{
		NodeCount:   3,
		EdgeCount:   3,
		Schemas:     []string{"dbo"},
		ObjectTypes: []string{"USER_TABLE"},
		Levels:      LevelRange{Min: 0, Max: 1},
	}
	doc, err := newTestGenerator(42).GenerateGraph(spec)
	require.NoError(t, err)
	assertWellFormed(t, spec, doc)

	for _, n := range doc.Nodes {
		assert.Equal(t, "dbo", n.SchemaName)
		assert.Equal(t, "USER_TABLE", n.ObjectType)
		assert.Contains(t, []int{0, 1}, n.Level)
	}
}

func TestGenerateGraphDefaultSample(t *testing.T) {
	spec := sampleSpec(50, 100)
	doc, err := newTestGenerator(7).GenerateGraph(spec)
	require.NoError(t, err)
	assertWellFormed(t, spec, doc)
}

func TestGenerateGraphNodeFields(t *testing.T) {
	doc, err := newTestGenerator(1).GenerateGraph(sampleSpec(20, 10))
	require.NoError(t, err)

	idPattern := regexp.MustCompile(`^[A-Za-z]+\.[A-Z_]+_[0-9a-z]{6}$`)
	namePattern := regexp.MustCompile(`^[A-Z_]+_[0-9a-z]{5}$`)
	for _, n := range doc.Nodes {
		assert.Regexp(t, idPattern, n.ID)
		assert.Regexp(t, namePattern, n.ObjectName)
		assert.Equal(t, n.SchemaName+"."+n.ObjectType+"_", n.ID[:len(n.SchemaName)+len(n.ObjectType)+2])
		assert.GreaterOrEqual(t, n.Cluster, 0)
		assert.Less(t, n.Cluster, DefaultClusterCount)
		assert.GreaterOrEqual(t, n.InDegree, 0)
		assert.LessOrEqual(t, n.InDegree, DefaultMaxDegree)
		assert.GreaterOrEqual(t, n.OutDegree, 0)
		assert.LessOrEqual(t, n.OutDegree, DefaultMaxDegree)
	}
}

func TestGenerateGraphDeterministic(t *testing.T) {
	for _, scheme := range []IDScheme{IDSchemeRandom, IDSchemeCounter, IDSchemeUUID} {
		t.Run(string(scheme), func(t *testing.T) {
			spec := sampleSpec(30, 60)
			first, err := newTestGenerator(99, WithIDScheme(scheme)).GenerateGraph(spec)
			require.NoError(t, err)
			second, err := newTestGenerator(99, WithIDScheme(scheme)).GenerateGraph(spec)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			other, err := newTestGenerator(100, WithIDScheme(scheme)).GenerateGraph(spec)
			require.NoError(t, err)
			assert.NotEqual(t, first, other)
		})
	}
}

func TestGenerateGraphCounterScheme(t *testing.T) {
	doc, err := newTestGenerator(3, WithIDScheme(IDSchemeCounter)).GenerateGraph(sampleSpec(12, 0))
	require.NoError(t, err)
	for i, n := range doc.Nodes {
		assert.Regexp(t, regexp.MustCompile(`_\d{4}$`), n.ID)
		assert.Equal(t, n.SchemaName+"."+n.ObjectType+"_"+fourDigits(i+1), n.ID)
	}
}

func fourDigits(n int) string {
	s := []byte("0000")
	for i := 3; i >= 0 && n > 0; i-- {
		s[i] = byte('0' + n%10)
		n /= 10
	}
	return string(s)
}

func TestGenerateGraphUUIDScheme(t *testing.T) {
	doc, err := newTestGenerator(5, WithIDScheme(IDSchemeUUID)).GenerateGraph(sampleSpec(10, 5))
	require.NoError(t, err)
	uuidSuffix := regexp.MustCompile(`_[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	for _, n := range doc.Nodes {
		assert.Regexp(t, uuidSuffix, n.ID)
	}
}

func TestGenerateGraphComputedDegrees(t *testing.T) {
	doc, err := newTestGenerator(11, WithDegreeMode(DegreeComputed)).GenerateGraph(sampleSpec(15, 40))
	require.NoError(t, err)

	in := map[string]int{}
	out := map[string]int{}
	for _, e := range doc.Edges {
		out[e.Source]++
		in[e.Target]++
	}
	for _, n := range doc.Nodes {
		assert.Equal(t, in[n.ID], n.InDegree, n.ID)
		assert.Equal(t, out[n.ID], n.OutDegree, n.ID)
	}
}

func TestGenerateGraphUniqueEdges(t *testing.T) {
	// 4 nodes allow 12 ordered pairs; asking for all of them forces the
	// enumeration fallback
	spec := sampleSpec(4, 12)
	doc, err := newTestGenerator(8, WithUniqueEdges(true)).GenerateGraph(spec)
	require.NoError(t, err)
	assertWellFormed(t, spec, doc)

	seen := map[Edge]bool{}
	for _, e := range doc.Edges {
		assert.False(t, seen[e], "duplicate edge %v", e)
		seen[e] = true
	}
}

func TestGenerateGraphUniqueEdgesCapacity(t *testing.T) {
	_, err := newTestGenerator(8, WithUniqueEdges(true)).GenerateGraph(sampleSpec(3, 7))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "edge_count", cfgErr.Field)
}

func TestGenerateGraphTwoNodes(t *testing.T) {
	spec := sampleSpec(2, 25)
	doc, err := newTestGenerator(4).GenerateGraph(spec)
	require.NoError(t, err)
	assertWellFormed(t, spec, doc)

	a, b := doc.Nodes[0].ID, doc.Nodes[1].ID
	for _, e := range doc.Edges {
		assert.True(t, (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a))
	}
}

func TestGenerateGraphBoundaries(t *testing.T) {
	t.Run("single node without edges", func(t *testing.T) {
		doc, err := newTestGenerator(1).GenerateGraph(sampleSpec(1, 0))
		require.NoError(t, err)
		assert.Len(t, doc.Nodes, 1)
		assert.Empty(t, doc.Edges)
	})

	t.Run("single node with edges", func(t *testing.T) {
		_, err := newTestGenerator(1).GenerateGraph(sampleSpec(1, 1))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsufficientNodes)

		var insufficient *InsufficientNodesError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 1, insufficient.NodeCount)
		assert.Equal(t, 1, insufficient.EdgeCount)
	})

	t.Run("zero nodes", func(t *testing.T) {
		_, err := newTestGenerator(1).GenerateGraph(sampleSpec(0, 0))
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("zero edges", func(t *testing.T) {
		doc, err := newTestGenerator(1).GenerateGraph(sampleSpec(5, 0))
		require.NoError(t, err)
		assert.NotNil(t, doc.Edges)
		assert.Empty(t, doc.Edges)
	})

	wide := []LevelRange{
		{Min: math.MinInt, Max: math.MaxInt},
		{Min: -1, Max: math.MaxInt},
		{Min: math.MinInt, Max: 0},
		{Min: -5, Max: -2},
		{Min: math.MaxInt, Max: math.MaxInt},
	}
	for _, levels := range wide {
		t.Run(fmt.Sprintf("levels %d..%d", levels.Min, levels.Max), func(t *testing.T) {
			spec := sampleSpec(20, 10)
			spec.Levels = levels
			doc, err := newTestGenerator(1).GenerateGraph(spec)
			require.NoError(t, err)
			require.Len(t, doc.Nodes, 20)
			for _, n := range doc.Nodes {
				assert.True(t, levels.Contains(n.Level), "level %d outside %d..%d", n.Level, levels.Min, levels.Max)
			}
		})
	}
}

func TestGenerateGraphConfigurationErrors(t *testing.T) {
	cases := []struct {
		name  string
		spec  GraphSpec
		opts  []Option
		field string
	}{
		{"negative nodes", sampleSpec(-1, 0), nil, "node_count"},
		{"negative edges", sampleSpec(3, -1), nil, "edge_count"},
		{"empty schemas", GraphSpec{NodeCount: 1, ObjectTypes: testObjectTypes}, nil, "schemas"},
		{"blank schema", GraphSpec{NodeCount: 1, Schemas: []string{""}, ObjectTypes: testObjectTypes}, nil, "schemas"},
		{"empty object types", GraphSpec{NodeCount: 1, Schemas: testSchemas}, nil, "object_types"},
		{"inverted levels", GraphSpec{NodeCount: 1, Schemas: testSchemas, ObjectTypes: testObjectTypes, Levels: LevelRange{Min: 3, Max: 1}}, nil, "levels"},
		{"unknown id scheme", sampleSpec(3, 1), []Option{WithIDScheme("sequential")}, "id_scheme"},
		{"unknown degree mode", sampleSpec(3, 1), []Option{WithDegreeMode("exact")}, "degree_mode"},
		{"no clusters", sampleSpec(3, 1), []Option{WithClusterCount(0)}, "cluster_count"},
		{"negative max degree", sampleSpec(3, 1), []Option{WithMaxDegree(-1)}, "max_degree"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestGenerator(1, tc.opts...).GenerateGraph(tc.spec)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestGenerateGraphIdentifierSpace(t *testing.T) {
	// the counter scheme never collides, so exhaust the random scheme with a
	// source that always yields the same value
	g := NewGenerator(constantSource{}, WithIDScheme(IDSchemeRandom))
	_, err := g.GenerateGraph(GraphSpec{
		NodeCount:   2,
		Schemas:     []string{"dbo"},
		ObjectTypes: []string{"VIEW"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIdentifierSpace)
}

type constantSource struct{}

// Uint64 returns all ones so rand.IntN(n) always yields n-1 without
// looping in its rejection step
func (constantSource) Uint64() uint64 { return ^uint64(0) }

func (constantSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestGenerateIdentifierAndNode(t *testing.T) {
	g := newTestGenerator(21)
	id := g.GenerateIdentifier("Sales", "VIEW")
	assert.Regexp(t, regexp.MustCompile(`^Sales\.VIEW_[0-9a-z]{6}$`), id)

	n := g.GenerateNode("Finance", "FUNCTION", 2)
	assert.Equal(t, "Finance", n.SchemaName)
	assert.Equal(t, "FUNCTION", n.ObjectType)
	assert.Equal(t, 2, n.Level)
	assert.Regexp(t, regexp.MustCompile(`^Finance\.FUNCTION_[0-9a-z]{6}$`), n.ID)
	assert.Regexp(t, regexp.MustCompile(`^FUNCTION_[0-9a-z]{5}$`), n.ObjectName)
}

func TestGenerateEdge(t *testing.T) {
	e := GenerateEdge("dbo.VIEW_a", "dbo.VIEW_b")
	assert.Equal(t, Edge{Source: "dbo.VIEW_a", Target: "dbo.VIEW_b"}, e)
}

func TestGeneratorOptions(t *testing.T) {
	g := newTestGenerator(0, WithIDScheme(IDSchemeUUID), WithUniqueEdges(true), WithClusterCount(5), WithMaxDegree(4))
	opts := g.Options()
	assert.Equal(t, IDSchemeUUID, opts.IDScheme)
	assert.Equal(t, DegreeSynthetic, opts.DegreeMode)
	assert.True(t, opts.UniqueEdges)
	assert.Equal(t, 5, opts.ClusterCount)
	assert.Equal(t, 4, opts.MaxDegree)
}
