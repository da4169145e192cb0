// Package config loads generation profiles and storage settings.
//
// A profile is a YAML file holding the generator parameters:
//
//	nodes: 50
//	edges: 100
//	seed: 42
//	schemas: [dbo, HumanResources, Sales, Finance, Inventory]
//	object_types: [USER_TABLE, SQL_STORED_PROCEDURE, VIEW, FUNCTION]
//	levels: {min: 0, max: 3}
//	id_scheme: random
//	degree_mode: synthetic
//
// Fields left out of the file keep the values of DefaultProfile. Storage
// settings come from the environment, optionally seeded from a .env file; the
// generator itself never reads the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/athapong/sample-graph/pkg/graph"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Profile holds every parameter of one generation run
type Profile struct {
	Nodes        int              `yaml:"nodes" json:"nodes" validate:"min=1"`
	Edges        int              `yaml:"edges" json:"edges" validate:"min=0"`
	Seed         uint64           `yaml:"seed" json:"seed"`
	Schemas      []string         `yaml:"schemas" json:"schemas" validate:"min=1,dive,required"`
	ObjectTypes  []string         `yaml:"object_types" json:"object_types" validate:"min=1,dive,required"`
	Levels       graph.LevelRange `yaml:"levels" json:"levels"`
	ClusterCount int              `yaml:"cluster_count" json:"cluster_count" validate:"min=1"`
	MaxDegree    int              `yaml:"max_degree" json:"max_degree" validate:"min=0"`
	IDScheme     string           `yaml:"id_scheme" json:"id_scheme" validate:"oneof=random counter uuid"`
	DegreeMode   string           `yaml:"degree_mode" json:"degree_mode" validate:"oneof=synthetic computed"`
	UniqueEdges  bool             `yaml:"unique_edges" json:"unique_edges"`
}

// DefaultProfile reproduces the original sample data set: 50 database
// objects over five schemas and four object types, 100 edges, levels 0-3
func DefaultProfile() Profile {
	return Profile{
		Nodes:        50,
		Edges:        100,
		Schemas:      []string{"dbo", "HumanResources", "Sales", "Finance", "Inventory"},
		ObjectTypes:  []string{"USER_TABLE", "SQL_STORED_PROCEDURE", "VIEW", "FUNCTION"},
		Levels:       graph.LevelRange{Min: 0, Max: 3},
		ClusterCount: graph.DefaultClusterCount,
		MaxDegree:    graph.DefaultMaxDegree,
		IDScheme:     string(graph.IDSchemeRandom),
		DegreeMode:   string(graph.DegreeSynthetic),
	}
}

// LoadProfile reads a YAML profile on top of DefaultProfile and validates it
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes YAML on top of DefaultProfile and validates it
func ParseProfile(data []byte) (Profile, error) {
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks the profile. Failures are *graph.ConfigurationError.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			reason := fe.Tag()
			if fe.Param() != "" {
				reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
			}
			return &graph.ConfigurationError{
				Field:  fe.Field(),
				Reason: fmt.Sprintf("failed %s, got %v", reason, fe.Value()),
			}
		}
		return &graph.ConfigurationError{Field: "profile", Reason: err.Error()}
	}
	if p.Levels.Min > p.Levels.Max {
		return &graph.ConfigurationError{
			Field:  "levels",
			Reason: fmt.Sprintf("min %d exceeds max %d", p.Levels.Min, p.Levels.Max),
		}
	}
	return nil
}

// Spec returns the graph shape described by the profile
func (p Profile) Spec() graph.GraphSpec {
	return graph.GraphSpec{
		NodeCount:   p.Nodes,
		EdgeCount:   p.Edges,
		Schemas:     append([]string(nil), p.Schemas...),
		ObjectTypes: append([]string(nil), p.ObjectTypes...),
		Levels:      p.Levels,
	}
}

// GeneratorOptions returns the generator options described by the profile
func (p Profile) GeneratorOptions() []graph.Option {
	return []graph.Option{
		graph.WithIDScheme(graph.IDScheme(p.IDScheme)),
		graph.WithDegreeMode(graph.DegreeMode(p.DegreeMode)),
		graph.WithUniqueEdges(p.UniqueEdges),
		graph.WithClusterCount(p.ClusterCount),
		graph.WithMaxDegree(p.MaxDegree),
	}
}

// NewGenerator builds a generator seeded from the profile
func (p Profile) NewGenerator() *graph.Generator {
	return graph.NewGenerator(graph.NewSeededSource(p.Seed), p.GeneratorOptions()...)
}

// JSON encodes the profile for storage alongside a saved graph
func (p Profile) JSON() json.RawMessage {
	data, _ := json.Marshal(p)
	return data
}

// Environment variables read by LoadStorageSettings
const (
	EnvNeo4jURI      = "NEO4J_URI"
	EnvNeo4jUsername = "NEO4J_USERNAME"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
	EnvDatabasePath  = "SAMPLE_GRAPH_DB"
)

// StorageSettings locates the optional graph stores
type StorageSettings struct {
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	DatabasePath  string
}

// LoadStorageSettings loads envFile when it exists and reads the storage
// variables, falling back to local defaults
func LoadStorageSettings(envFile string) (StorageSettings, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return StorageSettings{}, fmt.Errorf("loading env file %s: %w", envFile, err)
			}
		}
	}

	return StorageSettings{
		Neo4jURI:      getenv(EnvNeo4jURI, "bolt://localhost:7687"),
		Neo4jUsername: getenv(EnvNeo4jUsername, "neo4j"),
		Neo4jPassword: os.Getenv(EnvNeo4jPassword),
		DatabasePath:  getenv(EnvDatabasePath, filepath.Join(".sample-graph", "graphs.db")),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
