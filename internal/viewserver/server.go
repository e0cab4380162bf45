// Package viewserver exposes a session's visual state over HTTP: a health
// check, the current snapshot, Prometheus metrics and a WebSocket stream of
// updates.
package viewserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vk/tracegraph/internal/view"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	updateBuffer    = 64
)

// Message is one frame on the /ws stream.
type Message struct {
	Type string `json:"type"` // "snapshot" or "update"
	Data any    `json:"data"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server serves one binding.
type Server struct {
	binding    *view.Binding
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
}

// New creates a server for binding. Nothing listens until Start.
func New(binding *view.Binding, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{binding: binding, logger: logger}
}

// Handler returns the routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/snapshot", s.snapshotHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.wsHandler)
	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.binding.Snapshot()); err != nil {
		s.logger.Warn("Failed to write snapshot.", "error", err)
	}
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade the websocket.", "error", err)
		return
	}
	defer ws.Close()

	snap, updates, cancel := s.binding.Subscribe(updateBuffer)
	defer cancel()
	logger := s.logger.With("remote_addr", r.RemoteAddr)
	logger.Info("View client connected.", "version", snap.Version)

	// The stream is one-directional; reading only notices the client leaving.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.send(ws, Message{Type: "snapshot", Data: snap}); err != nil {
		return
	}
	for {
		select {
		case <-gone:
			logger.Info("View client disconnected.")
			return
		case u, ok := <-updates:
			if !ok {
				logger.Info("View stream closed.")
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"),
					time.Now().Add(writeTimeout))
				return
			}
			if err := s.send(ws, Message{Type: "update", Data: u}); err != nil {
				return
			}
		}
	}
}

func (s *Server) send(ws *websocket.Conn, m Message) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := ws.WriteJSON(m); err != nil {
		s.logger.Warn("Failed to write WebSocket JSON.", "error", err)
		return err
	}
	return nil
}

// Start listens on port and serves in the background. Port 0 picks a free
// port; Addr reports it.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Info("🩺 View server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("View server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		s.logger.Debug("View server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.logger.Info("🩺 Shutting down view server...")
	// Hijacked WebSocket connections are not tracked by Shutdown; closing
	// the binding's subscriptions ends their handlers.
	s.binding.Close()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("View server shutdown failed", "error", err)
		return err
	}
	s.logger.Debug("View server shut down gracefully.")
	return nil
}
