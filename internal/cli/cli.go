package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/tracegraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Mode selects what the application does once configured.
type Mode string

const (
	// ModeRun consumes events until the source is exhausted.
	ModeRun Mode = "run"
	// ModeCheck validates the configuration and graph, then exits.
	ModeCheck Mode = "check"
)

// Invocation is the result of a successful parse.
type Invocation struct {
	Mode   Mode
	Config *app.Config
}

type flags struct {
	config    string
	graph     string
	events    string
	kind      string
	layout    string
	port      int
	logFormat string
	logLevel  string
	noColor   bool
}

// Parse processes command-line arguments. It returns the invocation, a
// boolean indicating if the program should exit cleanly (help was printed),
// or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")
	if args == nil {
		args = []string{}
	}

	var (
		f   flags
		inv *Invocation
		err error
	)
	build := func(mode Mode, cmd *cobra.Command, pos []string) error {
		inv, err = f.invocation(mode, cmd, pos)
		return err
	}

	root := &cobra.Command{
		Use:   "tracegraph [CONFIG_PATH]",
		Short: "Synchronize algorithm trace events onto a live graph view",
		Long: `tracegraph loads a problem graph, lays it out, and applies a stream of
algorithm trace events (CSP search or graph search) to it, publishing
every change to connected viewers.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, pos []string) error {
			return build(ModeRun, cmd, pos)
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "run [CONFIG_PATH]",
			Short: "Apply trace events to the graph until the source is exhausted",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, pos []string) error {
				return build(ModeRun, cmd, pos)
			},
		},
		&cobra.Command{
			Use:   "check [CONFIG_PATH]",
			Short: "Validate the configuration and graph without consuming events",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, pos []string) error {
				return build(ModeCheck, cmd, pos)
			},
		},
	)

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "", "Path to an .hcl file or a directory of .hcl files.")
	pf.StringVar(&f.graph, "graph", "", "Path to the graph description (JSON or YAML). Overrides session.graph.")
	pf.StringVar(&f.events, "events", "", "Path to a JSONL event trace, '-' for stdin. Overrides the source block.")
	pf.StringVar(&f.kind, "kind", "", "Session kind: 'csp' or 'search'. Overrides session.kind.")
	pf.StringVar(&f.layout, "layout", "", "Layout adapter: 'force', 'fixed' or 'tree'. Overrides session.layout.")
	pf.IntVar(&f.port, "port", 0, "Port for the view server. 0 is disabled. When set, run keeps serving after the trace ends until interrupted. Overrides server.port.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.BoolVar(&f.noColor, "no-color", false, "Disable colored console output.")

	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if execErr := root.Execute(); execErr != nil {
		if exitErr, ok := execErr.(*ExitError); ok {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: 2, Message: execErr.Error()}
	}
	if inv == nil {
		// Help or version output was printed.
		return nil, true, nil
	}
	slog.Debug("CLI parser finished successfully.", "mode", inv.Mode)
	return inv, false, nil
}

func (f *flags) invocation(mode Mode, cmd *cobra.Command, pos []string) (*Invocation, error) {
	path := f.config
	if path == "" && len(pos) > 0 {
		path = pos[0]
	}

	logFormat := strings.ToLower(f.logFormat)
	if logFormat != "text" && logFormat != "json" {
		return nil, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(f.logLevel)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	cfg := app.Config{
		ConfigPath: path,
		GraphPath:  f.graph,
		EventsPath: f.events,
		Kind:       strings.ToLower(f.kind),
		Layout:     strings.ToLower(f.layout),
		LogFormat:  logFormat,
		LogLevel:   logLevel,
		NoColor:    f.noColor,
	}
	if cmd.Flags().Changed("port") {
		port := f.port
		cfg.Port = &port
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return &Invocation{Mode: mode, Config: config}, nil
}
