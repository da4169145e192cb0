package graph

import (
	"context"
)

// Node represents a database object in the sample graph
type Node struct {
	ID         string `json:"id"`
	SchemaName string `json:"schema_name"`
	ObjectName string `json:"object_name"`
	ObjectType string `json:"object_type"`
	Level      int    `json:"level"`
	Cluster    int    `json:"cluster"`
	InDegree   int    `json:"in_degree"`
	OutDegree  int    `json:"out_degree"`
}

// Edge represents a directed dependency between two node IDs
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Document is the interchange form of a generated graph.
// Nodes and edges keep the order in which they were produced.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LevelRange is an inclusive range of node levels
type LevelRange struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether level lies within the range
func (r LevelRange) Contains(level int) bool {
	return level >= r.Min && level <= r.Max
}

// GraphSpec describes the shape of a graph to generate
type GraphSpec struct {
	NodeCount   int
	EdgeCount   int
	Schemas     []string
	ObjectTypes []string
	Levels      LevelRange
}

// Processor enriches a document in place. The pipeline hands every processor
// its own working copy, never the caller's document.
type Processor interface {
	Name() string
	Process(ctx context.Context, doc *Document) error
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	copy(out.Nodes, d.Nodes)
	copy(out.Edges, d.Edges)
	return out
}

// NodeIDs returns node identifiers in document order
func (d *Document) NodeIDs() []string {
	ids := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		ids[i] = n.ID
	}
	return ids
}
