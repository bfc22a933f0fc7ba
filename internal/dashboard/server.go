// Package dashboard is an optional, strictly one-directional enrichment:
// a small HTTP+WebSocket surface that re-runs validation on demand and
// streams the findings. It depends only on pkg/pgregistry's public
// Registry; nothing in pkg/ ever imports this package back.
//
// Grounded on the teacher's internal/api (chi routing, gorilla/websocket
// upgrade-then-read loop) and internal/reactive's mutex-guarded client
// bookkeeping, repurposed here for one-shot validation-result streaming
// instead of live row subscriptions.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/pgguard/pgguard/pkg/pgregistry"
	"github.com/pgguard/pgguard/pkg/pgtype"
)

// Server serves the dashboard's HTTP and WebSocket endpoints.
type Server struct {
	conn     *pgx.Conn
	catalog  *pgtype.Catalog
	registry *pgregistry.Registry
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// New builds a Server. conn is used only to re-run validation on request;
// the dashboard never mutates application data.
func New(conn *pgx.Conn, catalog *pgtype.Catalog, registry *pgregistry.Registry, log *zap.Logger) *Server {
	return &Server{
		conn:     conn,
		catalog:  catalog,
		registry: registry,
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// Routes returns the dashboard's HTTP handler, ready to mount or serve
// directly.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/queries", s.handleListQueries)
	r.Get("/api/ws", s.handleWS)
	return r
}

func (s *Server) handleListQueries(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0)
	for _, e := range s.registry.Snapshot() {
		names = append(names, e.Name)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"queries": names})
}

// handleWS upgrades the connection, then on every inbound message
// re-validates every registered query and pushes the findings back as one
// JSON frame per query. It never reads anything besides a trigger message:
// this is not a general RPC channel.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("dashboard: websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.log.Debug("dashboard: websocket closed", zap.Error(err))
			return
		}

		findings, err := pgregistry.Survey(context.Background(), s.conn, s.catalog, s.registry, s.log)
		if err != nil {
			_ = conn.WriteJSON(map[string]any{"type": "error", "error": err.Error()})
			continue
		}
		for _, f := range findings {
			_ = conn.WriteJSON(toMessage(f))
		}
	}
}
