package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Source types.
const (
	SourceFile     = "file"
	SourceSocketIO = "socketio"
)

// Model is the unified, format-agnostic representation of the entire
// application configuration.
type Model struct {
	Session Session
	Styles  Styles
	Source  *Source
	Server  Server
}

// Session describes what is visualized and how it is laid out.
type Session struct {
	Kind       string // "csp" or "search"
	Graph      string // path of the initial graph description
	Layout     string // "force", "fixed" or "tree"
	Width      float64
	Height     float64
	Iterations int
	Seed       uint64
}

// Styles holds the colours event handlers write.
type Styles struct {
	HighlightStroke string
	DefaultStroke   string
	ActiveStroke    string
}

// Source selects where trace events come from.
type Source struct {
	Type string

	// file
	Path string

	// socketio
	URL                string
	Namespace          string
	Event              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Server configures the view server. Port 0 disables it.
type Server struct {
	Port int
}

// Default returns the configuration used when nothing is configured.
func Default() *Model {
	return &Model{
		Session: Session{
			Kind:       "search",
			Layout:     "force",
			Width:      800,
			Height:     500,
			Iterations: 300,
			Seed:       1,
		},
		Styles: Styles{
			HighlightStroke: "pink",
			DefaultStroke:   "black",
			ActiveStroke:    "blue",
		},
	}
}

// Validate checks the model for errors a session cannot start with.
func (m *Model) Validate() error {
	var errs []string

	switch m.Session.Kind {
	case "csp", "search":
	default:
		errs = append(errs, fmt.Sprintf("session.kind must be 'csp' or 'search', got %q", m.Session.Kind))
	}
	if m.Session.Graph == "" {
		errs = append(errs, "session.graph is required")
	}
	switch m.Session.Layout {
	case "force", "fixed", "tree":
	default:
		errs = append(errs, fmt.Sprintf("session.layout must be 'force', 'fixed' or 'tree', got %q", m.Session.Layout))
	}
	if m.Session.Width <= 0 || m.Session.Height <= 0 {
		errs = append(errs, fmt.Sprintf("session width and height must be positive, got %gx%g", m.Session.Width, m.Session.Height))
	}
	if m.Session.Iterations < 0 {
		errs = append(errs, "session.iterations cannot be negative")
	}
	if m.Server.Port < 0 || m.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", m.Server.Port))
	}

	if s := m.Source; s != nil {
		switch s.Type {
		case SourceFile:
			if s.Path == "" {
				errs = append(errs, "source \"file\" requires path")
			}
		case SourceSocketIO:
			if s.URL == "" {
				errs = append(errs, "source \"socketio\" requires url")
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown source type %q", s.Type))
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid configuration:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
