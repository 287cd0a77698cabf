package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"enrollment-insights/internal/airtable"
	"enrollment-insights/internal/domain"
	"enrollment-insights/internal/httpx"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TableFetcher is the upstream the proxy pages through on behalf of clients.
// *airtable.Client satisfies it.
type TableFetcher interface {
	Configured() bool
	FetchAll(ctx context.Context, table string) ([]domain.RawRecord, error)
}

// Server exposes GET /api/{table} for the three tables, holding the upstream
// credentials so callers never see them.
type Server struct {
	Upstream TableFetcher
	// Tables maps the public table name to the upstream table name.
	Tables map[string]string
	Logger *zap.Logger
}

func NewServer(upstream TableFetcher, tables map[string]string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Upstream: upstream, Tables: tables, Logger: logger}
}

// NewAirtableServer serves the three tables of up under their public names.
func NewAirtableServer(up *airtable.Client, logger *zap.Logger) *Server {
	return NewServer(up, map[string]string{
		domain.TableLeaders:     up.Tables.Leaders,
		domain.TableCities:      up.Tables.Cities,
		domain.TableEnrollments: up.Tables.Enrollments,
	}, logger)
}

// Router registers the proxy routes on a new mux router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.Register(r)
	return r
}

// Register adds the proxy routes to r.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/api/{table}", s.handleTable)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		writeJSON(w, r, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	name := mux.Vars(r)["table"]
	upstreamTable, ok := s.Tables[name]
	if !ok {
		writeJSON(w, r, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown table %q", name)})
		return
	}

	if s.Upstream == nil || !s.Upstream.Configured() {
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "Airtable credentials not configured"})
		return
	}

	records, err := s.Upstream.FetchAll(r.Context(), upstreamTable)
	if err != nil {
		status := http.StatusInternalServerError
		msg := err.Error()
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			status = herr.StatusCode
			msg = "Airtable API error: " + http.StatusText(herr.StatusCode)
		}
		s.Logger.Warn("proxy fetch failed", zap.String("table", upstreamTable), zap.Int("status", status), zap.Error(err))
		writeJSON(w, r, status, map[string]string{"error": msg})
		return
	}

	s.Logger.Info("proxy served table", zap.String("table", upstreamTable), zap.Int("records", len(records)))
	writeJSON(w, r, http.StatusOK, map[string]any{"records": records})
}

// writeJSON encodes v, brotli-compressed when the client accepts br.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if !acceptsBrotli(r) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
		return
	}

	w.Header().Set("Content-Encoding", "br")
	w.Header().Add("Vary", "Accept-Encoding")
	w.WriteHeader(status)
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	_ = json.NewEncoder(bw).Encode(v)
	_ = bw.Close()
}

func acceptsBrotli(r *http.Request) bool {
	for _, part := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		enc, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		if strings.EqualFold(enc, "br") {
			return true
		}
	}
	return false
}
