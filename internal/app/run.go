package app

import (
	"context"
	"fmt"

	"github.com/vk/tracegraph/internal/console"
	"github.com/vk/tracegraph/internal/ctxlog"
	"github.com/vk/tracegraph/internal/session"
	"github.com/vk/tracegraph/internal/viewserver"
)

// Run builds a session and feeds it events until the source is exhausted or
// ctx is canceled. With the view server enabled, the final state stays
// served after the trace ends, until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	s, err := session.New(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.session = s
	defer s.Close(ctx)

	src, err := session.NewSource(a.config.Source, a.appCfg.Stdin)
	if err != nil {
		return err
	}

	var server *viewserver.Server
	if a.config.Server.Port > 0 {
		server = viewserver.New(s.Binding, s.Logger())
		if err := server.Start(a.config.Server.Port); err != nil {
			return err
		}
		defer server.Shutdown(context.WithoutCancel(ctx))
	} else {
		a.logger.Debug("View server not started: disabled")
	}

	s.Subscribe(a.printer)
	s.OnRejected(a.printer)
	a.printer.PrintSummary(a.summary(s, src.Describe(), server))

	stats, err := s.Run(ctx, src)
	a.printer.Finished(stats.Applied, stats.Rejected)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	if server != nil && ctx.Err() == nil {
		a.logger.Info("Trace finished; view server keeps serving the final state until interrupted.", "address", server.Addr())
		<-ctx.Done()
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Check builds a session without consuming events and prints its summary.
func (a *App) Check(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	s, err := session.New(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	a.session = s
	defer s.Close(ctx)

	src, err := session.NewSource(a.config.Source, a.appCfg.Stdin)
	if err != nil {
		return err
	}
	a.printer.PrintSummary(a.summary(s, src.Describe(), nil))
	return nil
}

func (a *App) summary(s *session.Session, source string, server *viewserver.Server) console.Summary {
	sum := console.Summary{
		Kind:     s.Model.Kind,
		Graph:    a.config.Session.Graph,
		Nodes:    len(s.Model.Graph.Nodes()),
		Edges:    len(s.Model.Graph.Edges()),
		Layout:   s.Layout,
		Source:   source,
		Handlers: len(a.registry.Actions()),
	}
	if server != nil {
		sum.ViewerURL = fmt.Sprintf("http://%s/ws", server.Addr())
	}
	return sum
}
