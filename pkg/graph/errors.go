package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError
	ErrConfiguration = errors.New("configuration error")

	// ErrInsufficientNodes is matched by every *InsufficientNodesError
	ErrInsufficientNodes = errors.New("insufficient nodes")

	// ErrIdentifierSpace is returned when the random identifier scheme keeps
	// drawing identifiers that are already taken
	ErrIdentifierSpace = errors.New("identifier space exhausted")

	// ErrInvalidDocument wraps every document validation failure
	ErrInvalidDocument = errors.New("invalid graph document")
)

// ConfigurationError reports a generation parameter that cannot be used
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// InsufficientNodesError is returned when edges are requested but fewer than
// two nodes exist to connect
type InsufficientNodesError struct {
	NodeCount int
	EdgeCount int
}

func (e *InsufficientNodesError) Error() string {
	return fmt.Sprintf("insufficient nodes: %d edge(s) requested but only %d node(s) available, need at least 2",
		e.EdgeCount, e.NodeCount)
}

func (e *InsufficientNodesError) Is(target error) bool {
	return target == ErrInsufficientNodes
}

func configError(field, format string, args ...interface{}) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
