package app

import (
	"errors"
	"io"
)

// Config holds all the necessary configuration for an App instance to run.
// Fields other than ConfigPath override the configuration file when set.
type Config struct {
	ConfigPath string // .hcl file or directory, optional

	GraphPath  string
	EventsPath string
	Kind       string
	Layout     string
	Port       *int

	LogFormat string
	LogLevel  string
	NoColor   bool

	// Stdin backs an event source reading "-".
	Stdin io.Reader
}

// NewConfig validates a CLI-level configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" && cfg.GraphPath == "" {
		return nil, errors.New("either --config or --graph is required")
	}
	if cfg.Port != nil && (*cfg.Port < 0 || *cfg.Port > 65535) {
		return nil, errors.New("port must be between 0 and 65535")
	}
	return &cfg, nil
}
