package session

import (
	"fmt"
	"io"

	"github.com/vk/tracegraph/internal/config"
	"github.com/vk/tracegraph/internal/transport"
)

// NewSource builds the configured event source. stdin backs a file source
// whose path is "-".
func NewSource(cfg *config.Source, stdin io.Reader) (transport.Source, error) {
	if cfg == nil {
		return &transport.File{Path: "-", Stdin: stdin}, nil
	}
	switch cfg.Type {
	case config.SourceFile:
		return &transport.File{Path: cfg.Path, Stdin: stdin}, nil
	case config.SourceSocketIO:
		return &transport.SocketIO{
			URL:                cfg.URL,
			Namespace:          cfg.Namespace,
			Event:              cfg.Event,
			ConnectTimeout:     cfg.Timeout,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		}, nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
