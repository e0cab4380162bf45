package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths and translates it into
	// the format-agnostic model, starting from Default.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
