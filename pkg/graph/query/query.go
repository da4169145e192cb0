package query

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/athapong/sample-graph/pkg/graph"
	mapset "github.com/deckarep/golang-set/v2"
)

type Field string

const (
	FieldSchema     Field = "schema_name"
	FieldObjectType Field = "object_type"
	FieldLevel      Field = "level"
	FieldCluster    Field = "cluster"
)

type Operator string

const (
	OpEq  Operator = "="
	OpNe  Operator = "!="
	OpLt  Operator = "<"
	OpLte Operator = "<="
	OpGt  Operator = ">"
	OpGte Operator = ">="
	OpIn  Operator = "in"
)

type Filter struct {
	Field    Field    `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Query selects nodes by metadata and keeps the edges between them
type Query struct {
	Filters []Filter `json:"filters"`
	Limit   int      `json:"limit"`
}

func New() *Query {
	return &Query{
		Filters: make([]Filter, 0),
	}
}

func (q *Query) Where(field Field, op Operator, value string) *Query {
	q.Filters = append(q.Filters, Filter{Field: field, Operator: op, Value: value})
	return q
}

func (q *Query) AddFilter(filter Filter) *Query {
	q.Filters = append(q.Filters, filter)
	return q
}

func (q *Query) SetLimit(limit int) *Query {
	q.Limit = limit
	return q
}

func (q *Query) String() string {
	bytes, _ := json.MarshalIndent(q, "", "  ")
	return string(bytes)
}

// Parse reads a filter expression such as "level>=2" or "schema_name in dbo,Sales"
func Parse(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if field, value, ok := strings.Cut(expr, " in "); ok {
		return newFilter(field, OpIn, value)
	}
	// two-character operators first so "<=" is not read as "<"
	for _, op := range []Operator{OpNe, OpLte, OpGte, OpEq, OpLt, OpGt} {
		if field, value, ok := strings.Cut(expr, string(op)); ok {
			return newFilter(field, op, value)
		}
	}
	return Filter{}, fmt.Errorf("no operator in filter %q", expr)
}

func newFilter(field string, op Operator, value string) (Filter, error) {
	f := Filter{Field: Field(strings.TrimSpace(field)), Operator: op, Value: strings.TrimSpace(value)}
	return f, f.validate()
}

func (f Filter) validate() error {
	switch f.Field {
	case FieldSchema, FieldObjectType:
		switch f.Operator {
		case OpEq, OpNe, OpIn:
			return nil
		}
		return fmt.Errorf("operator %s not supported on %s", f.Operator, f.Field)
	case FieldLevel, FieldCluster:
		switch f.Operator {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte:
			if _, err := strconv.Atoi(f.Value); err != nil {
				return fmt.Errorf("%s expects an integer, got %q", f.Field, f.Value)
			}
			return nil
		case OpIn:
			for _, v := range splitList(f.Value) {
				if _, err := strconv.Atoi(v); err != nil {
					return fmt.Errorf("%s expects integers, got %q", f.Field, v)
				}
			}
			return nil
		}
		return fmt.Errorf("unknown operator %q", f.Operator)
	default:
		return fmt.Errorf("unknown field %q", f.Field)
	}
}

func (f Filter) matches(n graph.Node) bool {
	switch f.Field {
	case FieldSchema:
		return matchString(n.SchemaName, f.Operator, f.Value)
	case FieldObjectType:
		return matchString(n.ObjectType, f.Operator, f.Value)
	case FieldLevel:
		return matchInt(n.Level, f.Operator, f.Value)
	case FieldCluster:
		return matchInt(n.Cluster, f.Operator, f.Value)
	}
	return false
}

func matchString(actual string, op Operator, value string) bool {
	switch op {
	case OpEq:
		return actual == value
	case OpNe:
		return actual != value
	case OpIn:
		return mapset.NewThreadUnsafeSet(splitList(value)...).Contains(actual)
	}
	return false
}

func matchInt(actual int, op Operator, value string) bool {
	if op == OpIn {
		for _, v := range splitList(value) {
			if n, err := strconv.Atoi(v); err == nil && n == actual {
				return true
			}
		}
		return false
	}
	want, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	switch op {
	case OpEq:
		return actual == want
	case OpNe:
		return actual != want
	case OpLt:
		return actual < want
	case OpLte:
		return actual <= want
	case OpGt:
		return actual > want
	case OpGte:
		return actual >= want
	}
	return false
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

// Apply returns the sub-document induced by the nodes that pass every filter.
// Node and edge order follow doc.
func (q *Query) Apply(doc *graph.Document) (*graph.Document, error) {
	for _, f := range q.Filters {
		if err := f.validate(); err != nil {
			return nil, err
		}
	}

	out := &graph.Document{
		Nodes: make([]graph.Node, 0),
		Edges: make([]graph.Edge, 0),
	}
	kept := mapset.NewThreadUnsafeSet[string]()
	for _, n := range doc.Nodes {
		if q.Limit > 0 && len(out.Nodes) >= q.Limit {
			break
		}
		if q.matches(n) {
			out.Nodes = append(out.Nodes, n)
			kept.Add(n.ID)
		}
	}
	for _, e := range doc.Edges {
		if kept.Contains(e.Source) && kept.Contains(e.Target) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, nil
}

func (q *Query) matches(n graph.Node) bool {
	for _, f := range q.Filters {
		if !f.matches(n) {
			return false
		}
	}
	return true
}
