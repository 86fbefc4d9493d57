package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/benaskins/socialhub/internal/credentials"
	"github.com/benaskins/socialhub/internal/hub"
	"github.com/benaskins/socialhub/internal/platform"
)

const maxRequestBody = 64 << 10

// Poster is the part of the hub the API drives.
type Poster interface {
	Post(ctx context.Context, name platform.Name, message string) (hub.Result, error)
	PostToAll(ctx context.Context, message string) []hub.Result
}

// CredentialStore is the credential surface exposed over the API.
type CredentialStore interface {
	Load(ctx context.Context) (credentials.Bundle, error)
	Save(ctx context.Context, b credentials.Bundle) error
	Exists(ctx context.Context) bool
	Delete(ctx context.Context) error
}

// LogTail returns recent daemon log lines.
type LogTail interface {
	Last(n int) []string
}

// PostRequest is the body of both post endpoints.
type PostRequest struct {
	Message string `json:"message"`
}

// Server serves the socialhub REST API over a Unix socket or TCP.
type Server struct {
	poster   Poster
	creds    CredentialStore
	gatherer prometheus.Gatherer
	logs     LogTail
	server   *http.Server
	tcp      *http.Server
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithGatherer serves metrics from g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogs serves recent log lines from t at /v1/logs.
func WithLogs(t LogTail) Option {
	return func(s *Server) { s.logs = t }
}

// NewServer creates an API server backed by the given hub and credential store.
func NewServer(p Poster, creds CredentialStore, opts ...Option) *Server {
	s := &Server{
		poster: p,
		creds:  creds,
		logger: slog.With("component", "api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{Handler: s.Handler()}
	s.tcp = &http.Server{Handler: s.TCPHandler()}
	return s
}

// Handler returns the full API, including credential reads and writes. It
// is served only on the Unix socket.
func (s *Server) Handler() http.Handler {
	return s.routes(true)
}

// TCPHandler returns the API without the credential read, write and delete
// routes. TCP has no file permissions to keep other users out.
func (s *Server) TCPHandler() http.Handler {
	return s.routes(false)
}

func (s *Server) routes(withSecrets bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/posts", s.postToAll)
		r.Post("/posts/{platform}", s.postToPlatform)

		if withSecrets {
			r.Get("/credentials", s.loadCredentials)
			r.Put("/credentials", s.saveCredentials)
			r.Delete("/credentials", s.deleteCredentials)
		}
		r.Get("/credentials/exists", s.credentialsExist)

		if s.logs != nil {
			r.Get("/logs", s.recentLogs)
		}
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ListenUnix starts the server on a Unix socket readable only by the
// current user.
func (s *Server) ListenUnix(path string) error {
	ln, err := listenUnix(path)
	if err != nil {
		return err
	}
	s.logger.Info("API listening", "socket", path)
	return s.server.Serve(ln)
}

// ListenTCP starts the server on a TCP address using TCPHandler.
func (s *Server) ListenTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.logger.Info("API listening", "addr", addr, "credential_routes", false)
	return s.tcp.Serve(ln)
}

// Shutdown gracefully shuts down both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	return errors.Join(s.server.Shutdown(ctx), s.tcp.Shutdown(ctx))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) postToAll(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.poster.PostToAll(r.Context(), req.Message))
}

func (s *Server) postToPlatform(w http.ResponseWriter, r *http.Request) {
	name, err := platform.ParseName(chi.URLParam(r, "platform"))
	if err != nil || name == platform.All {
		writeError(w, http.StatusNotFound, "unknown platform "+chi.URLParam(r, "platform"))
		return
	}
	req, ok := decodePost(w, r)
	if !ok {
		return
	}

	result, err := s.poster.Post(r.Context(), name, req.Message)
	if err != nil {
		writeError(w, http.StatusFailedDependency, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) loadCredentials(w http.ResponseWriter, r *http.Request) {
	b, err := s.creds.Load(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, credentials.ErrMissing) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	if r.URL.Query().Get("reveal") != "true" {
		b = b.Redacted()
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) saveCredentials(w http.ResponseWriter, r *http.Request) {
	var b credentials.Bundle
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		writeError(w, http.StatusBadRequest, "invalid credentials body: "+err.Error())
		return
	}
	if err := s.creds.Save(r.Context(), b); err != nil {
		s.logger.Error("saving credentials failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteCredentials(w http.ResponseWriter, r *http.Request) {
	if err := s.creds.Delete(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) credentialsExist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"exists": s.creds.Exists(r.Context())})
}

func (s *Server) recentLogs(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = parsed
	}
	writeJSON(w, http.StatusOK, map[string][]string{"lines": s.logs.Last(n)})
}

func decodePost(w http.ResponseWriter, r *http.Request) (PostRequest, bool) {
	var req PostRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return req, false
	}
	return req, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
