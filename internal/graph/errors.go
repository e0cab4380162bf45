package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a node or edge id is not part of the graph.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateID is returned when an id is added twice.
	ErrDuplicateID = errors.New("duplicate id")
	// ErrSealed is returned when a sealed graph is asked to grow.
	ErrSealed = errors.New("graph is sealed")
)

func nodeNotFound(id string) error {
	return fmt.Errorf("node '%s': %w", id, ErrNotFound)
}

func edgeNotFound(id string) error {
	return fmt.Errorf("edge '%s': %w", id, ErrNotFound)
}
