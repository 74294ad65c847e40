// Package bridge exposes the engine to out-of-process hosts over a local
// unix socket: JSON endpoints for snapshots and a websocket that streams
// session updates as they happen.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/models"
	"github.com/annolab/margin/pkg/panel"
	"github.com/annolab/margin/pkg/state"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server serves the bridge API over a unix socket.
type Server struct {
	logger   *logrus.Entry
	server   *http.Server
	panel    *panel.Panel
	upgrader websocket.Upgrader
}

// New creates a bridge server over a panel.
func New(p *panel.Panel) *Server {
	return &Server{
		logger: logging.NewLogger("bridge"),
		panel:  p,
		upgrader: websocket.Upgrader{
			// The socket is local and permission-guarded, origin checks
			// do not apply.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ListenAndServe starts the bridge on the given unix socket path. It blocks
// until the server stops or fails.
func (s *Server) ListenAndServe(socketPath string) error {
	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}

	if err := os.Chmod(socketPath, 0600); err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.server = &http.Server{Handler: s.handler()}

	s.logger.WithField("socket", socketPath).Info("Bridge listening")
	return s.server.Serve(listener)
}

// Serve runs the bridge on an existing listener. Used by tests.
func (s *Server) Serve(listener net.Listener) error {
	s.server = &http.Server{Handler: s.handler()}
	return s.server.Serve(listener)
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/threads", s.handleGetThreads)
	mux.HandleFunc("/api/persons", s.handleGetPersons)
	mux.HandleFunc("/api/targets", s.handleGetTargets)
	mux.HandleFunc("/ws", s.handleWebsocket)

	return h2c.NewHandler(mux, &http2.Server{})
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down bridge...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleGetState returns the current session snapshot as JSON.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.panel.Provider().Session())
}

// handleGetThreads returns threads for the target given in ?target=, or the
// whole document when no target is set.
func (s *Server) handleGetThreads(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		writeJSON(w, s.panel.Threads().Document().Comments)
		return
	}

	threads := s.panel.Threads().ThreadsByTarget(target)
	if threads == nil {
		threads = []models.Thread{}
	}
	writeJSON(w, threads)
}

// handleGetPersons returns the person registry as JSON.
func (s *Server) handleGetPersons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.panel.Threads().AllPersons())
}

// handleGetTargets returns all targets that have threads.
func (s *Server) handleGetTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.panel.Threads().Targets())
}

// sessionFrame is the websocket wire format: one frame per session change.
type sessionFrame struct {
	Type    string        `json:"type"`
	Session state.Session `json:"session"`
}

// handleWebsocket streams session snapshots. The first frame carries the
// current session so clients render immediately; subsequent frames follow
// state-store notifications.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.Debug("Websocket client connected")

	ch := s.panel.Provider().Subscribe()
	defer s.panel.Provider().Unsubscribe(ch)

	// Reader goroutine: its only job is to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(sessionFrame{Type: "initial", Session: s.panel.Provider().Session()}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			s.logger.Debug("Websocket client disconnected")
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			frame := sessionFrame{Type: "update", Session: s.panel.Provider().Session()}
			if err := conn.WriteJSON(frame); err != nil {
				s.logger.WithError(err).Debug("Websocket write failed")
				return
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
