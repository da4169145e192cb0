package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrGraphNotFound is returned when a named graph does not exist
var ErrGraphNotFound = errors.New("graph not found")

const sqliteSchema = `CREATE TABLE IF NOT EXISTS graphs (
  name       TEXT PRIMARY KEY,
  seed       INTEGER NOT NULL,
  profile    TEXT NOT NULL,
  nodes      TEXT NOT NULL,
  edges      TEXT NOT NULL,
  node_count INTEGER NOT NULL,
  edge_count INTEGER NOT NULL,
  created_at TEXT NOT NULL
)`

// SavedGraph is a named graph with the parameters that produced it
type SavedGraph struct {
	Name      string
	Seed      uint64
	Profile   json.RawMessage
	Document  *graph.Document
	CreatedAt time.Time
}

// GraphSummary describes a saved graph without its contents
type GraphSummary struct {
	Name      string    `json:"name"`
	Seed      uint64    `json:"seed"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	CreatedAt time.Time `json:"created_at"`
}

// SQLiteStore keeps named graphs in a SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the database at path
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "create directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating graphs table")
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces the named graph
func (s *SQLiteStore) Save(ctx context.Context, saved SavedGraph) error {
	if saved.Name == "" {
		return errors.New("graph name is required")
	}
	if saved.Document == nil {
		return errors.New("graph document is required")
	}
	nodes, err := json.Marshal(saved.Document.Nodes)
	if err != nil {
		return errors.Wrap(err, "encode nodes")
	}
	edges, err := json.Marshal(saved.Document.Edges)
	if err != nil {
		return errors.Wrap(err, "encode edges")
	}
	profile := saved.Profile
	if len(profile) == 0 {
		profile = json.RawMessage("{}")
	}
	created := saved.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO graphs
  (name, seed, profile, nodes, edges, node_count, edge_count, created_at)
  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.Name, int64(saved.Seed), string(profile), string(nodes), string(edges),
		len(saved.Document.Nodes), len(saved.Document.Edges), created.UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "save graph %s", saved.Name)
}

// Load returns the named graph
func (s *SQLiteStore) Load(ctx context.Context, name string) (*SavedGraph, error) {
	var (
		seed                  int64
		profile, nodes, edges string
		created               string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT seed, profile, nodes, edges, created_at FROM graphs WHERE name = ?`, name,
	).Scan(&seed, &profile, &nodes, &edges, &created)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(ErrGraphNotFound, "%s", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load graph %s", name)
	}

	doc := &graph.Document{}
	if err := json.Unmarshal([]byte(nodes), &doc.Nodes); err != nil {
		return nil, errors.Wrapf(err, "decode nodes of %s", name)
	}
	if err := json.Unmarshal([]byte(edges), &doc.Edges); err != nil {
		return nil, errors.Wrapf(err, "decode edges of %s", name)
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.Wrapf(err, "load graph %s", name)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, errors.Wrapf(err, "parse created_at of %s", name)
	}

	return &SavedGraph{
		Name:      name,
		Seed:      uint64(seed),
		Profile:   json.RawMessage(profile),
		Document:  doc,
		CreatedAt: createdAt,
	}, nil
}

// List returns summaries of all saved graphs ordered by name
func (s *SQLiteStore) List(ctx context.Context) ([]GraphSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, seed, node_count, edge_count, created_at FROM graphs ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "list graphs")
	}
	defer rows.Close()

	summaries := make([]GraphSummary, 0)
	for rows.Next() {
		var (
			sum     GraphSummary
			seed    int64
			created string
		)
		if err := rows.Scan(&sum.Name, &seed, &sum.NodeCount, &sum.EdgeCount, &created); err != nil {
			return nil, errors.Wrap(err, "scan graph summary")
		}
		sum.Seed = uint64(seed)
		if sum.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, errors.Wrapf(err, "parse created_at of %s", sum.Name)
		}
		summaries = append(summaries, sum)
	}
	return summaries, errors.Wrap(rows.Err(), "iterate graphs")
}

// Delete removes the named graph
func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM graphs WHERE name = ?`, name)
	if err != nil {
		return errors.Wrapf(err, "delete graph %s", name)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(ErrGraphNotFound, "%s", name)
	}
	return nil
}

// Graph adapts one named entry to the GraphStore interface
func (s *SQLiteStore) Graph(name string) GraphStore {
	return &namedGraph{store: s, name: name}
}

type namedGraph struct {
	store *SQLiteStore
	name  string
}

func (g *namedGraph) StoreGraph(ctx context.Context, doc *graph.Document) error {
	return g.store.Save(ctx, SavedGraph{Name: g.name, Document: doc})
}

func (g *namedGraph) LoadGraph(ctx context.Context) (*graph.Document, error) {
	saved, err := g.store.Load(ctx, g.name)
	if err != nil {
		return nil, err
	}
	return saved.Document, nil
}
