package graph

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Index is a read-only lookup structure over a document
type Index struct {
	doc     *Document
	nodeMap map[string]int // node ID to position in doc.Nodes
	out     map[string][]string
	in      map[string][]string
}

// NewIndex builds an index over doc. Edge order is preserved and duplicate
// edges are kept, so adjacency lengths equal true degrees.
func NewIndex(doc *Document) *Index {
	idx := &Index{
		doc:     doc,
		nodeMap: make(map[string]int, len(doc.Nodes)),
		out:     make(map[string][]string, len(doc.Nodes)),
		in:      make(map[string][]string, len(doc.Nodes)),
	}
	for i, n := range doc.Nodes {
		if _, exists := idx.nodeMap[n.ID]; !exists {
			idx.nodeMap[n.ID] = i
		}
	}
	for _, e := range doc.Edges {
		idx.out[e.Source] = append(idx.out[e.Source], e.Target)
		idx.in[e.Target] = append(idx.in[e.Target], e.Source)
	}
	return idx
}

// Node returns the node with the given ID
func (idx *Index) Node(id string) (Node, bool) {
	i, ok := idx.nodeMap[id]
	if !ok {
		return Node{}, false
	}
	return idx.doc.Nodes[i], true
}

// Has reports whether id names a node
func (idx *Index) Has(id string) bool {
	_, ok := idx.nodeMap[id]
	return ok
}

// Position returns the node's offset in the document
func (idx *Index) Position(id string) (int, bool) {
	i, ok := idx.nodeMap[id]
	return i, ok
}

// Successors returns edge targets leaving id
func (idx *Index) Successors(id string) []string {
	return idx.out[id]
}

// Predecessors returns edge sources entering id
func (idx *Index) Predecessors(id string) []string {
	return idx.in[id]
}

// Neighbors returns the distinct nodes adjacent to id in either direction,
// successors first
func (idx *Index) Neighbors(id string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	result := make([]string, 0, len(idx.out[id])+len(idx.in[id]))
	for _, list := range [][]string{idx.out[id], idx.in[id]} {
		for _, n := range list {
			if seen.Add(n) {
				result = append(result, n)
			}
		}
	}
	return result
}

// Document returns the indexed document
func (idx *Index) Document() *Document {
	return idx.doc
}

// SetTrueDegrees overwrites in_degree and out_degree with counts taken from
// the document's edges
func SetTrueDegrees(doc *Document) {
	in := make(map[string]int, len(doc.Nodes))
	out := make(map[string]int, len(doc.Nodes))
	for _, e := range doc.Edges {
		out[e.Source]++
		in[e.Target]++
	}
	for i := range doc.Nodes {
		doc.Nodes[i].InDegree = in[doc.Nodes[i].ID]
		doc.Nodes[i].OutDegree = out[doc.Nodes[i].ID]
	}
}

// Validate checks the structural invariants of a document: unique node IDs,
// no self-loops and no edges pointing outside the node set
func (d *Document) Validate() error {
	ids := mapset.NewThreadUnsafeSet[string]()
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has an empty id", ErrInvalidDocument, i)
		}
		if !ids.Add(n.ID) {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidDocument, n.ID)
		}
	}
	for i, e := range d.Edges {
		if e.Source == e.Target {
			return fmt.Errorf("%w: edge %d is a self-loop on %q", ErrInvalidDocument, i, e.Source)
		}
		if !ids.Contains(e.Source) {
			return fmt.Errorf("%w: edge %d references unknown source %q", ErrInvalidDocument, i, e.Source)
		}
		if !ids.Contains(e.Target) {
			return fmt.Errorf("%w: edge %d references unknown target %q", ErrInvalidDocument, i, e.Target)
		}
	}
	return nil
}
