package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// GraphStore defines an interface for persisting generated graphs
type GraphStore interface {
	// StoreGraph persists a graph document
	StoreGraph(ctx context.Context, doc *graph.Document) error

	// LoadGraph loads a graph document from storage
	LoadGraph(ctx context.Context) (*graph.Document, error)
}

// JSONGraphStore implements GraphStore using a JSON file
type JSONGraphStore struct {
	filePath string
}

// NewJSONGraphStore creates a new JSON graph store
func NewJSONGraphStore(filePath string) *JSONGraphStore {
	return &JSONGraphStore{
		filePath: filePath,
	}
}

// StoreGraph writes the document as indented JSON
func (s *JSONGraphStore) StoreGraph(ctx context.Context, doc *graph.Document) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create directory %s", dir)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode graph")
	}

	return errors.Wrapf(os.WriteFile(s.filePath, data, 0644), "write %s", s.filePath)
}

// LoadGraph reads a native or Cytoscape-element document from the file
func (s *JSONGraphStore) LoadGraph(ctx context.Context) (*graph.Document, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.filePath)
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", s.filePath)
	}
	return doc, nil
}

// DecodeDocument parses a graph document and validates it.
//
// Two layouts are accepted: the generator's own {"nodes":[{"id":...}],
// "edges":[{"source":...,"target":...}]} and the Cytoscape element layout in
// which every node and edge is wrapped in a "data" object.
func DecodeDocument(data []byte) (*graph.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(graph.ErrInvalidDocument, "malformed JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.Get("nodes").IsArray() {
		return nil, errors.Wrap(graph.ErrInvalidDocument, `missing "nodes" array`)
	}

	var doc *graph.Document
	if IsCytoscape(root) {
		doc = decodeCytoscape(root)
	} else {
		doc = &graph.Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, errors.Wrap(err, "decode graph")
		}
		if doc.Edges == nil {
			doc.Edges = []graph.Edge{}
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsCytoscape reports whether a parsed document uses the element layout
func IsCytoscape(root gjson.Result) bool {
	return root.Get("nodes.0.data").Exists() || root.Get("edges.0.data").Exists()
}

// decodeCytoscape imports element documents the way the schema dependency
// exports are read: ids of the form schema.object.type carry the node
// metadata, repeated nodes are merged and nodes seen only as edge endpoints
// are added with defaults.
func decodeCytoscape(root gjson.Result) *graph.Document {
	doc := &graph.Document{
		Nodes: make([]graph.Node, 0),
		Edges: make([]graph.Edge, 0),
	}
	seen := make(map[string]bool)

	root.Get("nodes").ForEach(func(_, v gjson.Result) bool {
		data := v.Get("data")
		id := data.Get("id").String()
		if id == "" || seen[id] {
			return true
		}
		seen[id] = true
		doc.Nodes = append(doc.Nodes, nodeFromElement(id, data))
		return true
	})

	root.Get("edges").ForEach(func(_, v gjson.Result) bool {
		data := v.Get("data")
		source := data.Get("source").String()
		target := data.Get("target").String()
		for _, id := range []string{source, target} {
			if id != "" && !seen[id] {
				seen[id] = true
				doc.Nodes = append(doc.Nodes, nodeFromElement(id, gjson.Result{}))
			}
		}
		doc.Edges = append(doc.Edges, graph.GenerateEdge(source, target))
		return true
	})

	return doc
}

func nodeFromElement(id string, data gjson.Result) graph.Node {
	n := graph.Node{ID: id, ObjectName: id}

	parts := strings.Split(id, ".")
	switch len(parts) {
	case 3:
		n.SchemaName, n.ObjectName, n.ObjectType = parts[0], parts[1], parts[2]
	case 2:
		n.SchemaName, n.ObjectName = parts[0], parts[1]
	}

	if v := data.Get("schema_name"); v.Exists() {
		n.SchemaName = v.String()
	}
	if v := data.Get("object_type"); v.Exists() {
		n.ObjectType = v.String()
	}
	switch {
	case data.Get("object_name").Exists():
		n.ObjectName = data.Get("object_name").String()
	case len(parts) < 2 && data.Get("name").Exists():
		n.ObjectName = data.Get("name").String()
	case len(parts) < 2 && data.Get("label").Exists():
		n.ObjectName = data.Get("label").String()
	}
	n.Level = int(data.Get("level").Int())
	n.Cluster = int(data.Get("cluster").Int())
	n.InDegree = int(data.Get("in_degree").Int())
	n.OutDegree = int(data.Get("out_degree").Int())
	return n
}
