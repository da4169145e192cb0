// Package export encodes graph documents for the browser graph libraries that
// draw them. The native format is the generator's own document; the
// Cytoscape and D3 formats reshape it into the element lists those libraries
// load directly. Layout and styling stay with the library.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/athapong/sample-graph/pkg/graph"
)

// Format names an output encoding
type Format string

const (
	FormatJSON      Format = "json"
	FormatCytoscape Format = "cytoscape"
	FormatD3        Format = "d3"
)

// Formats lists every supported format
func Formats() []Format {
	return []Format{FormatJSON, FormatCytoscape, FormatD3}
}

// ParseFormat resolves a user supplied format name
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// CytoscapeDocument is the {nodes, edges} element form accepted by
// cytoscape({elements: ...})
type CytoscapeDocument struct {
	Nodes []CytoscapeElement `json:"nodes"`
	Edges []CytoscapeElement `json:"edges"`
}

type CytoscapeElement struct {
	Data CytoscapeData `json:"data"`
}

type CytoscapeData struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
	SchemaName string `json:"schema_name,omitempty"`
	ObjectName string `json:"object_name,omitempty"`
	ObjectType string `json:"object_type,omitempty"`
	Level      *int   `json:"level,omitempty"`
	Cluster    *int   `json:"cluster,omitempty"`
	InDegree   *int   `json:"in_degree,omitempty"`
	OutDegree  *int   `json:"out_degree,omitempty"`
}

// D3Document is the node-link form used by d3.forceSimulation and d3.forceLink
type D3Document struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

type D3Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Group   string `json:"group"`
	Schema  string `json:"schema"`
	Level   int    `json:"level"`
	Cluster int    `json:"cluster"`
}

type D3Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ToCytoscape maps nodes to elements keyed by id and labelled with the object
// name, and edges to directed connectors with a stable edge id
func ToCytoscape(doc *graph.Document) CytoscapeDocument {
	out := CytoscapeDocument{
		Nodes: make([]CytoscapeElement, len(doc.Nodes)),
		Edges: make([]CytoscapeElement, len(doc.Edges)),
	}
	for i, n := range doc.Nodes {
		out.Nodes[i] = CytoscapeElement{Data: CytoscapeData{
			ID:         n.ID,
			Label:      n.ObjectName,
			SchemaName: n.SchemaName,
			ObjectName: n.ObjectName,
			ObjectType: n.ObjectType,
			Level:      &n.Level,
			Cluster:    &n.Cluster,
			InDegree:   &n.InDegree,
			OutDegree:  &n.OutDegree,
		}}
	}
	for i, e := range doc.Edges {
		out.Edges[i] = CytoscapeElement{Data: CytoscapeData{
			ID:     fmt.Sprintf("e%d", i),
			Source: e.Source,
			Target: e.Target,
		}}
	}
	return out
}

// ToD3 maps nodes to simulation nodes grouped by object type
func ToD3(doc *graph.Document) D3Document {
	out := D3Document{
		Nodes: make([]D3Node, len(doc.Nodes)),
		Links: make([]D3Link, len(doc.Edges)),
	}
	for i, n := range doc.Nodes {
		out.Nodes[i] = D3Node{
			ID:      n.ID,
			Label:   n.ObjectName,
			Group:   n.ObjectType,
			Schema:  n.SchemaName,
			Level:   n.Level,
			Cluster: n.Cluster,
		}
	}
	for i, e := range doc.Edges {
		out.Links[i] = D3Link{Source: e.Source, Target: e.Target}
	}
	return out
}

// Write encodes doc to w in the given format with two-space indentation
func Write(w io.Writer, doc *graph.Document, format Format) error {
	var payload interface{}
	switch format {
	case FormatJSON:
		payload = doc
	case FormatCytoscape:
		payload = ToCytoscape(doc)
	case FormatD3:
		payload = ToD3(doc)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s: %w", format, err)
	}
	return nil
}

// WriteFile writes doc to path, creating parent directories as needed
func WriteFile(path string, doc *graph.Document, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, doc, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
