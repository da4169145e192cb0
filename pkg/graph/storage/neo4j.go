package storage

import (
	"context"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	cypherClearGraph = `
		MATCH (o:DbObject {graph: $graph})
		DETACH DELETE o
	`

	cypherCreateNodes = `
		UNWIND $nodes AS n
		CREATE (o:DbObject {
			graph: $graph,
			seq: n.seq,
			id: n.id,
			schema_name: n.schema_name,
			object_name: n.object_name,
			object_type: n.object_type,
			level: n.level,
			cluster: n.cluster,
			in_degree: n.in_degree,
			out_degree: n.out_degree
		})
	`

	cypherCreateEdges = `
		UNWIND $edges AS e
		MATCH (s:DbObject {graph: $graph, id: e.source})
		MATCH (t:DbObject {graph: $graph, id: e.target})
		CREATE (s)-[:DEPENDS_ON {seq: e.seq}]->(t)
	`

	cypherReadNodes = `
		MATCH (o:DbObject {graph: $graph})
		RETURN o.id AS id, o.schema_name AS schema_name, o.object_name AS object_name,
			o.object_type AS object_type, o.level AS level, o.cluster AS cluster,
			o.in_degree AS in_degree, o.out_degree AS out_degree
		ORDER BY o.seq
	`

	cypherReadEdges = `
		MATCH (s:DbObject {graph: $graph})-[r:DEPENDS_ON]->(t:DbObject {graph: $graph})
		RETURN s.id AS source, t.id AS target
		ORDER BY r.seq
	`
)

// Neo4jStorage implements GraphStore using Neo4j. Every node carries the
// graph name so several sample graphs can share one database.
type Neo4jStorage struct {
	driver neo4j.Driver
	graph  string
	logger *logrus.Logger
}

// NewNeo4jStorage creates a new Neo4j storage instance for the named graph
func NewNeo4jStorage(uri, username, password, graphName string) (*Neo4jStorage, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Neo4j driver")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Neo4jStorage{
		driver: driver,
		graph:  graphName,
		logger: logger,
	}, nil
}

// Connect verifies that the server is reachable
func (s *Neo4jStorage) Connect(ctx context.Context) error {
	return errors.Wrap(s.driver.VerifyConnectivity(), "neo4j connectivity")
}

// Close releases the driver
func (s *Neo4jStorage) Close() error {
	if s.driver != nil {
		return s.driver.Close()
	}
	return nil
}

// StoreGraph replaces the named graph with doc in a single write transaction
func (s *Neo4jStorage) StoreGraph(ctx context.Context, doc *graph.Document) error {
	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		if _, err := tx.Run(cypherClearGraph, map[string]interface{}{"graph": s.graph}); err != nil {
			return nil, errors.Wrap(err, "clear graph")
		}
		if _, err := tx.Run(cypherCreateNodes, map[string]interface{}{
			"graph": s.graph,
			"nodes": nodeParams(doc),
		}); err != nil {
			return nil, errors.Wrap(err, "create nodes")
		}
		if _, err := tx.Run(cypherCreateEdges, map[string]interface{}{
			"graph": s.graph,
			"edges": edgeParams(doc),
		}); err != nil {
			return nil, errors.Wrap(err, "create edges")
		}
		return nil, nil
	})
	if err != nil {
		return errors.Wrapf(err, "store graph %s", s.graph)
	}

	s.logger.WithFields(logrus.Fields{
		"graph": s.graph,
		"nodes": len(doc.Nodes),
		"edges": len(doc.Edges),
	}).Info("Stored graph in Neo4j")
	return nil
}

// LoadGraph reads the named graph back in insertion order
func (s *Neo4jStorage) LoadGraph(ctx context.Context) (*graph.Document, error) {
	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	out, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		params := map[string]interface{}{"graph": s.graph}
		doc := &graph.Document{
			Nodes: make([]graph.Node, 0),
			Edges: make([]graph.Edge, 0),
		}

		result, err := tx.Run(cypherReadNodes, params)
		if err != nil {
			return nil, err
		}
		for result.Next() {
			doc.Nodes = append(doc.Nodes, nodeFromRecord(result.Record().Get))
		}
		if err := result.Err(); err != nil {
			return nil, err
		}

		result, err = tx.Run(cypherReadEdges, params)
		if err != nil {
			return nil, err
		}
		for result.Next() {
			rec := result.Record()
			doc.Edges = append(doc.Edges, graph.GenerateEdge(stringValue(rec.Get, "source"), stringValue(rec.Get, "target")))
		}
		return doc, result.Err()
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load graph %s", s.graph)
	}

	return checkLoaded(s.graph, out.(*graph.Document))
}

// checkLoaded rejects empty reads as missing graphs and documents that
// break the structural invariants
func checkLoaded(name string, doc *graph.Document) (*graph.Document, error) {
	if len(doc.Nodes) == 0 {
		return nil, errors.Wrapf(ErrGraphNotFound, "%s", name)
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.Wrapf(err, "load graph %s", name)
	}
	return doc, nil
}

// DeleteGraph removes the named graph
func (s *Neo4jStorage) DeleteGraph(ctx context.Context) error {
	session := s.driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		return tx.Run(cypherClearGraph, map[string]interface{}{"graph": s.graph})
	})
	return errors.Wrapf(err, "delete graph %s", s.graph)
}

func nodeParams(doc *graph.Document) []interface{} {
	params := make([]interface{}, len(doc.Nodes))
	for i, n := range doc.Nodes {
		params[i] = map[string]interface{}{
			"seq":         int64(i),
			"id":          n.ID,
			"schema_name": n.SchemaName,
			"object_name": n.ObjectName,
			"object_type": n.ObjectType,
			"level":       int64(n.Level),
			"cluster":     int64(n.Cluster),
			"in_degree":   int64(n.InDegree),
			"out_degree":  int64(n.OutDegree),
		}
	}
	return params
}

func edgeParams(doc *graph.Document) []interface{} {
	params := make([]interface{}, len(doc.Edges))
	for i, e := range doc.Edges {
		params[i] = map[string]interface{}{
			"seq":    int64(i),
			"source": e.Source,
			"target": e.Target,
		}
	}
	return params
}

// recordGetter matches neo4j.Record.Get
type recordGetter func(key string) (interface{}, bool)

func nodeFromRecord(get recordGetter) graph.Node {
	return graph.Node{
		ID:         stringValue(get, "id"),
		SchemaName: stringValue(get, "schema_name"),
		ObjectName: stringValue(get, "object_name"),
		ObjectType: stringValue(get, "object_type"),
		Level:      intValue(get, "level"),
		Cluster:    intValue(get, "cluster"),
		InDegree:   intValue(get, "in_degree"),
		OutDegree:  intValue(get, "out_degree"),
	}
}

func stringValue(get recordGetter, key string) string {
	v, _ := get(key)
	s, _ := v.(string)
	return s
}

func intValue(get recordGetter, key string) int {
	v, _ := get(key)
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
