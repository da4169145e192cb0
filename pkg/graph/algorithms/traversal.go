package algorithms

import (
	"context"
	"fmt"

	"github.com/athapong/sample-graph/pkg/graph"
)

type TraversalType string

const (
	BFS TraversalType = "BFS"
	DFS TraversalType = "DFS"
)

// Direction selects which edges a traversal follows
type Direction string

const (
	Outgoing   Direction = "out"
	Incoming   Direction = "in"
	Undirected Direction = "both"
)

type GraphTraversal struct {
	index     *graph.Index
	direction Direction
}

func NewGraphTraversal(idx *graph.Index, direction Direction) *GraphTraversal {
	return &GraphTraversal{index: idx, direction: direction}
}

// Traverse visits nodes reachable from startID within maxDepth hops and
// returns them in visit order, startID first
func (t *GraphTraversal) Traverse(ctx context.Context, startID string, maxDepth int, traversalType TraversalType) ([]graph.Node, error) {
	if !t.index.Has(startID) {
		return nil, fmt.Errorf("node not found: %s", startID)
	}

	visited := make(map[string]bool)
	result := make([]graph.Node, 0)

	switch traversalType {
	case BFS:
		return t.bfs(ctx, startID, maxDepth, visited)
	case DFS:
		return t.dfs(ctx, startID, maxDepth, visited, &result)
	default:
		return nil, fmt.Errorf("unsupported traversal type: %s", traversalType)
	}
}

func (t *GraphTraversal) next(id string) []string {
	switch t.direction {
	case Incoming:
		return t.index.Predecessors(id)
	case Undirected:
		return t.index.Neighbors(id)
	default:
		return t.index.Successors(id)
	}
}

func (t *GraphTraversal) bfs(ctx context.Context, startID string, maxDepth int, visited map[string]bool) ([]graph.Node, error) {
	queue := []string{startID}
	visited[startID] = true
	result := make([]graph.Node, 0)
	depth := 0

	for len(queue) > 0 && depth <= maxDepth {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		levelSize := len(queue)
		for i := 0; i < levelSize; i++ {
			current := queue[0]
			queue = queue[1:]

			node, ok := t.index.Node(current)
			if !ok {
				continue
			}
			result = append(result, node)

			for _, r := range t.next(current) {
				if !visited[r] {
					visited[r] = true
					queue = append(queue, r)
				}
			}
		}
		depth++
	}

	return result, nil
}

func (t *GraphTraversal) dfs(ctx context.Context, currentID string, maxDepth int, visited map[string]bool, result *[]graph.Node) ([]graph.Node, error) {
	if maxDepth < 0 || visited[currentID] {
		return *result, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	visited[currentID] = true
	if node, ok := t.index.Node(currentID); ok {
		*result = append(*result, node)
	}

	for _, r := range t.next(currentID) {
		if !visited[r] {
			if _, err := t.dfs(ctx, r, maxDepth-1, visited, result); err != nil {
				return nil, err
			}
		}
	}

	return *result, nil
}

// Components returns the weakly connected components of the indexed
// document. Components are ordered by their first node in the document and
// list members in BFS order.
func Components(idx *graph.Index) [][]string {
	doc := idx.Document()
	visited := make(map[string]bool, len(doc.Nodes))
	components := make([][]string, 0)

	for _, n := range doc.Nodes {
		if visited[n.ID] {
			continue
		}
		visited[n.ID] = true
		component := []string{}
		queue := []string{n.ID}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			component = append(component, current)
			for _, r := range idx.Neighbors(current) {
				if !visited[r] && idx.Has(r) {
					visited[r] = true
					queue = append(queue, r)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// Induced returns the sub-document made of nodes and the edges of doc whose
// endpoints are both among them. Nodes keep the order given; edges keep the
// order of doc.
func Induced(doc *graph.Document, nodes []graph.Node) *graph.Document {
	out := &graph.Document{
		Nodes: append(make([]graph.Node, 0, len(nodes)), nodes...),
		Edges: make([]graph.Edge, 0),
	}
	kept := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		kept[n.ID] = true
	}
	for _, e := range doc.Edges {
		if kept[e.Source] && kept[e.Target] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
