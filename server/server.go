// Package server implements the taskbook sync server: an authenticated
// key-value HTTP API speaking the remote backend's protocol, with values
// persisted as flat files per namespace.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"time"
)

// Options configures the sync server.
type Options struct {
	Addr    string // listen address, e.g., ":9191"
	Token   string // bearer token every /api/{namespace}/{key} request must present
	DataDir string // directory values are persisted under
	Version string
}

// Server is the taskbook sync server.
type Server struct {
	opts    Options
	mux     *http.ServeMux
	httpSrv *http.Server
	logger  *slog.Logger
	store   *Store

	startTime time.Time
}

// New creates a Server with the given options and logger. A token is
// mandatory; running the sync service unauthenticated is refused outright.
func New(opts Options, logger *slog.Logger) (*Server, error) {
	if opts.Token == "" {
		return nil, errors.New("server: auth token must be configured")
	}
	if opts.Addr == "" {
		opts.Addr = ":9191"
	}
	if logger == nil {
		logger = slog.Default()
	}
	store, err := NewStore(opts.DataDir)
	if err != nil {
		return nil, err
	}
	return &Server{
		opts:      opts,
		mux:       http.NewServeMux(),
		logger:    logger,
		store:     store,
		startTime: time.Now(),
	}, nil
}

// Start registers routes and begins listening.
func (s *Server) Start() error {
	s.registerRoutes()

	s.httpSrv = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", s.opts.Addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	// Public route (no auth required)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Protected KV API — wrapped in auth middleware
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/{namespace}/{key}", s.handleGet)
	apiMux.HandleFunc("PUT /api/{namespace}/{key}", s.handlePut)
	s.mux.Handle("/api/", s.authMiddleware(apiMux))
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.opts.Version,
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	namespace, key, ok := pathNames(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid namespace or key")
		return
	}
	value, err := s.store.Get(namespace, key)
	if err != nil {
		s.logger.Error("read value", slog.String("namespace", namespace),
			slog.String("key", key), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	// A never-written key answers {"value":null}; clients treat it as empty.
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"value": value})
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	namespace, key, ok := pathNames(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid namespace or key")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body: "+err.Error())
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return
	}
	if err := s.store.Put(namespace, key, body); err != nil {
		s.logger.Error("write value", slog.String("namespace", namespace),
			slog.String("key", key), slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "write failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathNames extracts and validates the {namespace} and {key} path values.
func pathNames(r *http.Request) (namespace, key string, ok bool) {
	namespace, key = r.PathValue("namespace"), r.PathValue("key")
	return namespace, key, validName(namespace) && validName(key)
}

var nameRE = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// validName bounds namespace and key names to a safe charset and refuses
// the dot names that would walk out of the data directory.
func validName(name string) bool {
	return name != "." && name != ".." && nameRE.MatchString(name)
}
