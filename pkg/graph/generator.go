package graph

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
)

// IDScheme selects how node identifiers are suffixed
type IDScheme string

const (
	// IDSchemeRandom appends a random base-36 suffix, rejecting collisions
	IDSchemeRandom IDScheme = "random"
	// IDSchemeCounter appends the node's position in the graph
	IDSchemeCounter IDScheme = "counter"
	// IDSchemeUUID appends a version 4 UUID drawn from the generator's source
	IDSchemeUUID IDScheme = "uuid"
)

// DegreeMode selects how in_degree and out_degree are filled
type DegreeMode string

const (
	// DegreeSynthetic draws both degrees at random, unrelated to the edges
	DegreeSynthetic DegreeMode = "synthetic"
	// DegreeComputed counts the generated edges
	DegreeComputed DegreeMode = "computed"
)

const (
	DefaultClusterCount = 3
	DefaultMaxDegree    = 2

	identifierSuffixLen   = 6
	nameSuffixLen         = 5
	maxIdentifierAttempts = 64
	maxEdgeAttempts       = 64

	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// Source is the entropy a Generator draws from. *rand.ChaCha8 satisfies it.
type Source interface {
	rand.Source
	io.Reader
}

// NewSeededSource returns a deterministic source for seed
func NewSeededSource(seed uint64) *rand.ChaCha8 {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9e3779b97f4a7c15)
	return rand.NewChaCha8(key)
}

// Options tune the generated node metadata and edge set
type Options struct {
	IDScheme     IDScheme
	DegreeMode   DegreeMode
	UniqueEdges  bool
	ClusterCount int
	MaxDegree    int
}

// Option mutates Options
type Option func(*Options)

// DefaultOptions produces the classic sample data. Suffixes are random,
// degrees and clusters are decorative values in [0,2], and duplicate edges
// are allowed.
func DefaultOptions() Options {
	return Options{
		IDScheme:     IDSchemeRandom,
		DegreeMode:   DegreeSynthetic,
		ClusterCount: DefaultClusterCount,
		MaxDegree:    DefaultMaxDegree,
	}
}

func WithIDScheme(s IDScheme) Option {
	return func(o *Options) { o.IDScheme = s }
}

func WithDegreeMode(m DegreeMode) Option {
	return func(o *Options) { o.DegreeMode = m }
}

func WithUniqueEdges(unique bool) Option {
	return func(o *Options) { o.UniqueEdges = unique }
}

func WithClusterCount(n int) Option {
	return func(o *Options) { o.ClusterCount = n }
}

func WithMaxDegree(n int) Option {
	return func(o *Options) { o.MaxDegree = n }
}

// Generator fabricates sample schema graphs from an injected random source.
// A Generator is not safe for concurrent use; give each goroutine its own,
// seeded independently.
type Generator struct {
	src  Source
	rng  *rand.Rand
	opts Options
}

// NewGenerator creates a generator drawing from src
func NewGenerator(src Source, opts ...Option) *Generator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator{
		src:  src,
		rng:  rand.New(src),
		opts: o,
	}
}

// Options returns the generator's effective options
func (g *Generator) Options() Options {
	return g.opts
}

// GenerateIdentifier returns schema.objectType_suffix with a random base-36
// suffix. Two calls can collide; GenerateGraph rejects collisions.
func (g *Generator) GenerateIdentifier(schema, objectType string) string {
	return fmt.Sprintf("%s.%s_%s", schema, objectType, g.suffix(identifierSuffixLen))
}

// GenerateNode builds a node with a fresh random identifier and randomized
// cluster and degree metadata
func (g *Generator) GenerateNode(schema, objectType string, level int) Node {
	return g.newNode(g.GenerateIdentifier(schema, objectType), schema, objectType, level)
}

// GenerateEdge links two node IDs without checking them
func GenerateEdge(sourceID, targetID string) Edge {
	return Edge{Source: sourceID, Target: targetID}
}

// GenerateGraph produces spec.NodeCount nodes followed by spec.EdgeCount
// self-loop free edges between them
func (g *Generator) GenerateGraph(spec GraphSpec) (*Document, error) {
	if err := g.validate(spec); err != nil {
		return nil, err
	}

	doc := &Document{
		Nodes: make([]Node, 0, spec.NodeCount),
		Edges: make([]Edge, 0, spec.EdgeCount),
	}

	taken := mapset.NewThreadUnsafeSet[string]()
	for i := range spec.NodeCount {
		schema := spec.Schemas[g.rng.IntN(len(spec.Schemas))]
		objectType := spec.ObjectTypes[g.rng.IntN(len(spec.ObjectTypes))]
		level := g.level(spec.Levels)

		id, err := g.nextIdentifier(schema, objectType, i, taken)
		if err != nil {
			return nil, err
		}
		taken.Add(id)
		doc.Nodes = append(doc.Nodes, g.newNode(id, schema, objectType, level))
	}

	ids := doc.NodeIDs()
	var seen mapset.Set[Edge]
	if g.opts.UniqueEdges {
		seen = mapset.NewThreadUnsafeSet[Edge]()
	}
	for range spec.EdgeCount {
		var e Edge
		if seen != nil {
			e = g.uniqueEdge(ids, seen)
			seen.Add(e)
		} else {
			e = g.randomEdge(ids)
		}
		doc.Edges = append(doc.Edges, e)
	}

	if g.opts.DegreeMode == DegreeComputed {
		SetTrueDegrees(doc)
	}
	return doc, nil
}

// level draws uniformly from r. The width is taken in uint64 so ranges wider
// than MaxInt stay valid; a width of zero means the full int range.
func (g *Generator) level(r LevelRange) int {
	span := uint64(r.Max) - uint64(r.Min) + 1
	if span == 0 {
		return int(g.rng.Uint64())
	}
	return r.Min + int(g.rng.Uint64N(span))
}

func (g *Generator) validate(spec GraphSpec) error {
	switch g.opts.IDScheme {
	case IDSchemeRandom, IDSchemeCounter, IDSchemeUUID:
	default:
		return configError("id_scheme", "unknown scheme %q", g.opts.IDScheme)
	}
	switch g.opts.DegreeMode {
	case DegreeSynthetic, DegreeComputed:
	default:
		return configError("degree_mode", "unknown mode %q", g.opts.DegreeMode)
	}
	if g.opts.ClusterCount < 1 {
		return configError("cluster_count", "must be positive, got %d", g.opts.ClusterCount)
	}
	if g.opts.MaxDegree < 0 {
		return configError("max_degree", "must not be negative, got %d", g.opts.MaxDegree)
	}

	if spec.NodeCount < 1 {
		return configError("node_count", "must be positive, got %d", spec.NodeCount)
	}
	if spec.EdgeCount < 0 {
		return configError("edge_count", "must not be negative, got %d", spec.EdgeCount)
	}
	if err := validateEnum("schemas", spec.Schemas); err != nil {
		return err
	}
	if err := validateEnum("object_types", spec.ObjectTypes); err != nil {
		return err
	}
	if spec.Levels.Min > spec.Levels.Max {
		return configError("levels", "min %d exceeds max %d", spec.Levels.Min, spec.Levels.Max)
	}

	if spec.EdgeCount > 0 && spec.NodeCount < 2 {
		return &InsufficientNodesError{NodeCount: spec.NodeCount, EdgeCount: spec.EdgeCount}
	}
	if g.opts.UniqueEdges {
		capacity := spec.NodeCount * (spec.NodeCount - 1)
		if spec.EdgeCount > capacity {
			return configError("edge_count", "%d unique edges requested but %d nodes allow at most %d",
				spec.EdgeCount, spec.NodeCount, capacity)
		}
	}
	return nil
}

func validateEnum(field string, values []string) error {
	if len(values) == 0 {
		return configError(field, "enumeration is empty")
	}
	for i, v := range values {
		if v == "" {
			return configError(field, "entry %d is empty", i)
		}
	}
	return nil
}

func (g *Generator) newNode(id, schema, objectType string, level int) Node {
	return Node{
		ID:         id,
		SchemaName: schema,
		ObjectName: fmt.Sprintf("%s_%s", objectType, g.suffix(nameSuffixLen)),
		ObjectType: objectType,
		Level:      level,
		Cluster:    g.intN(g.opts.ClusterCount),
		InDegree:   g.intN(g.opts.MaxDegree + 1),
		OutDegree:  g.intN(g.opts.MaxDegree + 1),
	}
}

func (g *Generator) nextIdentifier(schema, objectType string, index int, taken mapset.Set[string]) (string, error) {
	for range maxIdentifierAttempts {
		var id string
		switch g.opts.IDScheme {
		case IDSchemeCounter:
			id = fmt.Sprintf("%s.%s_%04d", schema, objectType, index+1)
		case IDSchemeUUID:
			u, err := uuid.NewRandomFromReader(g.src)
			if err != nil {
				return "", fmt.Errorf("drawing uuid: %w", err)
			}
			id = fmt.Sprintf("%s.%s_%s", schema, objectType, u)
		default:
			id = g.GenerateIdentifier(schema, objectType)
		}
		if !taken.Contains(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free identifier for %s.%s after %d attempts",
		ErrIdentifierSpace, schema, objectType, maxIdentifierAttempts)
}

// randomEdge picks a source uniformly, then a target uniformly among the
// remaining nodes. Requires len(ids) >= 2.
func (g *Generator) randomEdge(ids []string) Edge {
	s := g.rng.IntN(len(ids))
	t := g.rng.IntN(len(ids) - 1)
	if t >= s {
		t++
	}
	return GenerateEdge(ids[s], ids[t])
}

// uniqueEdge samples until it finds an unseen pair, then falls back to
// picking among the remaining free pairs. The caller guarantees one exists.
func (g *Generator) uniqueEdge(ids []string, seen mapset.Set[Edge]) Edge {
	for range maxEdgeAttempts {
		e := g.randomEdge(ids)
		if !seen.Contains(e) {
			return e
		}
	}
	free := make([]Edge, 0)
	for i, s := range ids {
		for j, t := range ids {
			if i == j {
				continue
			}
			if e := GenerateEdge(s, t); !seen.Contains(e) {
				free = append(free, e)
			}
		}
	}
	return free[g.rng.IntN(len(free))]
}

func (g *Generator) suffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[g.rng.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

func (g *Generator) intN(n int) int {
	if n <= 0 {
		return 0
	}
	return g.rng.IntN(n)
}
