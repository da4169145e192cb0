package tools

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/athapong/sample-graph/pkg/config"
	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/athapong/sample-graph/pkg/graph/export"
	"github.com/athapong/sample-graph/pkg/graph/metrics"
	"github.com/athapong/sample-graph/pkg/graph/processors"
	"github.com/athapong/sample-graph/pkg/graph/query"
	"github.com/athapong/sample-graph/pkg/graph/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterGraphTools registers the sample graph tools with the server
func RegisterGraphTools(s *server.MCPServer) {
	generateTool := mcp.NewTool("generate_sample_graph",
		mcp.WithDescription(`Generate a synthetic database dependency graph.
Nodes are database objects (tables, views, procedures, functions) spread over
schemas and levels; edges are random directed dependencies without self-loops.
The same seed and parameters always produce the same graph.`),
		mcp.WithNumber("nodes", mcp.Description("Number of nodes (default 50)")),
		mcp.WithNumber("edges", mcp.Description("Number of edges (default 100)")),
		mcp.WithNumber("seed", mcp.Description("Random seed (default 0)")),
		mcp.WithString("schemas", mcp.Description("Comma separated schema names")),
		mcp.WithString("object_types", mcp.Description("Comma separated object types")),
		mcp.WithNumber("level_min", mcp.Description("Lowest level (default 0)")),
		mcp.WithNumber("level_max", mcp.Description("Highest level (default 3)")),
		mcp.WithString("id_scheme", mcp.Description("Identifier scheme: random, counter or uuid")),
		mcp.WithString("degree_mode", mcp.Description("Degree fields: synthetic or computed")),
		mcp.WithBoolean("unique_edges", mcp.Description("Reject duplicate source/target pairs")),
		mcp.WithBoolean("annotate", mcp.Description("Run the degree, level and cluster processors on the result")),
		mcp.WithString("format", mcp.Description("Output format: json, cytoscape or d3")),
	)
	s.AddTool(generateTool, generateSampleGraphHandler)

	annotateTool := mcp.NewTool("annotate_graph",
		mcp.WithDescription("Recompute degrees, dependency levels and connected-component clusters of a graph document"),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Graph document as JSON (native or Cytoscape layout)")),
		mcp.WithString("format", mcp.Description("Output format: json, cytoscape or d3")),
	)
	s.AddTool(annotateTool, annotateGraphHandler)

	validateTool := mcp.NewTool("validate_graph",
		mcp.WithDescription("Check a graph document for duplicate ids, self-loops and dangling edges"),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Graph document as JSON (native or Cytoscape layout)")),
	)
	s.AddTool(validateTool, validateGraphHandler)

	filterTool := mcp.NewTool("filter_graph",
		mcp.WithDescription(`Select nodes by metadata and keep the edges between them.
Filters are separated by ';', for example "level>=1; schema_name in dbo,Sales".
Fields: schema_name, object_type, level, cluster.`),
		mcp.WithString("graph", mcp.Required(), mcp.Description("Graph document as JSON (native or Cytoscape layout)")),
		mcp.WithString("where", mcp.Required(), mcp.Description("Filter expressions separated by ';'")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of nodes to keep")),
		mcp.WithString("format", mcp.Description("Output format: json, cytoscape or d3")),
	)
	s.AddTool(filterTool, filterGraphHandler)
}

func generateSampleGraphHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	profile, err := profileFromArguments(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := formatArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	scheme := graph.IDScheme(profile.IDScheme)
	doc, err := profile.NewGenerator().GenerateGraph(profile.Spec())
	if err != nil {
		kind := metrics.ObserveError(err, scheme)
		return mcp.NewToolResultError(fmt.Sprintf("%s error: %v", kind, err)), nil
	}
	metrics.ObserveGraph(doc, scheme)

	if v, _ := arguments["annotate"].(bool); v {
		doc, err = annotateDocument(doc)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return encode(doc, format)
}

func annotateGraphHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, err := documentArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := formatArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err = annotateDocument(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return encode(doc, format)
}

func validateGraphHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, err := documentArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("valid graph: %d nodes, %d edges", len(doc.Nodes), len(doc.Edges))), nil
}

func filterGraphHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	doc, err := documentArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := formatArgument(arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	where, ok := arguments["where"].(string)
	if !ok || strings.TrimSpace(where) == "" {
		return mcp.NewToolResultError("where must be a non-empty string"), nil
	}

	q := query.New()
	for _, expr := range strings.Split(where, ";") {
		if strings.TrimSpace(expr) == "" {
			continue
		}
		f, err := query.Parse(expr)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q.AddFilter(f)
	}
	limit, ok, err := intArgument(arguments, "limit")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		q.SetLimit(limit)
	}

	out, err := q.Apply(doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return encode(out, format)
}

// profileFromArguments overlays tool arguments on the default profile
func profileFromArguments(arguments map[string]interface{}) (config.Profile, error) {
	p := config.DefaultProfile()

	for name, dst := range map[string]*int{
		"nodes":     &p.Nodes,
		"edges":     &p.Edges,
		"level_min": &p.Levels.Min,
		"level_max": &p.Levels.Max,
	} {
		v, ok, err := intArgument(arguments, name)
		if err != nil {
			return p, err
		}
		if ok {
			*dst = v
		}
	}
	if v, ok := arguments["seed"].(float64); ok {
		if v < 0 || v >= math.Exp2(64) || v != math.Trunc(v) {
			return p, &graph.ConfigurationError{Field: "seed", Reason: fmt.Sprintf("must be a non-negative integer below 2^64, got %v", v)}
		}
		p.Seed = uint64(v)
	}
	if v, ok := arguments["schemas"].(string); ok && v != "" {
		p.Schemas = splitList(v)
	}
	if v, ok := arguments["object_types"].(string); ok && v != "" {
		p.ObjectTypes = splitList(v)
	}
	if v, ok := arguments["id_scheme"].(string); ok && v != "" {
		p.IDScheme = v
	}
	if v, ok := arguments["degree_mode"].(string); ok && v != "" {
		p.DegreeMode = v
	}
	if v, ok := arguments["unique_edges"].(bool); ok {
		p.UniqueEdges = v
	}

	return p, p.Validate()
}

// intArgument reads a JSON number that must be a whole value within int range
func intArgument(arguments map[string]interface{}, name string) (int, bool, error) {
	v, ok := arguments[name].(float64)
	if !ok {
		return 0, false, nil
	}
	// float64(math.MaxInt) rounds up to 2^63, hence the exclusive bound
	if v != math.Trunc(v) || v < math.MinInt || v >= -float64(math.MinInt) {
		return 0, false, &graph.ConfigurationError{
			Field:  name,
			Reason: fmt.Sprintf("must be an integer in [%d, %d], got %v", math.MinInt, math.MaxInt, v),
		}
	}
	return int(v), true, nil
}

func documentArgument(arguments map[string]interface{}) (*graph.Document, error) {
	raw, ok := arguments["graph"].(string)
	if !ok || raw == "" {
		return nil, fmt.Errorf("graph must be a JSON string")
	}
	return storage.DecodeDocument([]byte(raw))
}

func formatArgument(arguments map[string]interface{}) (export.Format, error) {
	if v, ok := arguments["format"].(string); ok && v != "" {
		return export.ParseFormat(v)
	}
	return export.FormatJSON, nil
}

func annotateDocument(doc *graph.Document) (*graph.Document, error) {
	return graph.NewPipeline(processors.DefaultProcessors()...).Process(context.Background(), doc)
}

func encode(doc *graph.Document, format export.Format) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := export.Write(&buf, doc, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
