package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jembe/jembe-sub000"
	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/Jembe/jembe-sub000/internal/runtime"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Fetcher loads a full page by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Server exposes the sessions of a Manager as a headless driver API.
type Server struct {
	Sessions *session.Manager
	Fetcher  Fetcher
	Metrics  http.Handler
	Logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithFetcher lets /load accept a URL instead of markup.
func WithFetcher(f Fetcher) ServerOption {
	return func(s *Server) {
		s.Fetcher = f
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithServerLogger sets the request logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		s.Logger = l
	}
}

// NewHandler creates the HTTP handler of the driver API.
func NewHandler(sessions *session.Manager, opts ...ServerOption) http.Handler {
	s := &Server{Sessions: sessions, Logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Post("/load", s.Load)
		r.Post("/apply", s.Apply)
		r.Post("/init", s.Init)
		r.Post("/call", s.Call)
		r.Post("/emit", s.Emit)
		r.Post("/flush", s.Flush)
		r.Post("/back", s.Back)
		r.Get("/components", s.Components)
		r.Get("/document", s.Document)
		r.Get("/payload", s.Payload)
		r.Delete("/", s.Close)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ReportView is the JSON form of a reconciliation report.
type ReportView struct {
	Root     string            `json:"root"`
	Outcomes map[string]string `json:"outcomes"`
	Order    []string          `json:"order"`
	Dropped  []string          `json:"dropped,omitempty"`
	Removed  []string          `json:"removed,omitempty"`
	Orphans  []string          `json:"orphans,omitempty"`
}

func viewReport(r *runtime.Report) *ReportView {
	if r == nil {
		return nil
	}
	v := &ReportView{
		Root:     r.Root,
		Outcomes: make(map[string]string, len(r.Outcomes)),
		Order:    r.Order,
		Dropped:  r.Dropped,
		Removed:  r.Removed,
		Orphans:  r.Orphans,
	}
	for name, o := range r.Outcomes {
		v.Outcomes[name] = string(o)
	}
	return v
}

// ComponentView is the JSON form of a registered component.
type ComponentView struct {
	ExecName   string         `json:"execName"`
	State      map[string]any `json:"state"`
	URL        string         `json:"url,omitempty"`
	ChangesURL bool           `json:"changesUrl"`
	Actions    []string       `json:"actions"`
	Mounted    bool           `json:"mounted"`
	Children   []string       `json:"children,omitempty"`
}

type loadRequest struct {
	Markup string `json:"markup"`
	URL    string `json:"url"`
}

type initRequest struct {
	ExecName      string         `json:"execName"`
	Params        map[string]any `json:"params"`
	MergeExisting bool           `json:"mergeExisting"`
}

type callRequest struct {
	ExecName string         `json:"execName"`
	Action   string         `json:"action"`
	Args     []any          `json:"args"`
	Kwargs   map[string]any `json:"kwargs"`
}

type emitRequest struct {
	ExecName string         `json:"execName"`
	Event    string         `json:"event"`
	Params   map[string]any `json:"params"`
	To       string         `json:"to"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": strings.TrimSpace(jembe.Version),
	})
}

// Load handles POST /sessions/{id}/load.
func (s *Server) Load(w http.ResponseWriter, r *http.Request) {
	var body loadRequest
	if !s.decode(w, r, &body) {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")

	markup := body.Markup
	if markup == "" && body.URL != "" {
		if s.Fetcher == nil {
			http.Error(w, "Loading by URL is not enabled", http.StatusBadRequest)
			return
		}
		var err error
		if markup, err = s.Fetcher.Fetch(r.Context(), body.URL); err != nil {
			s.fail(w, "Load", err)
			return
		}
	}

	client, err := s.Sessions.Open(sessionID)
	if err != nil {
		s.fail(w, "Load", err)
		return
	}
	err = s.Sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		return client.Load(ctx, markup)
	})
	if err != nil {
		s.fail(w, "Load", err)
		return
	}
	writeJSON(w, http.StatusOK, components(client))
}

// Apply handles POST /sessions/{id}/apply with a raw response body.
func (s *Server) Apply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s.withClient(w, r, "Apply", func(ctx context.Context, c *jembe.Client) (any, error) {
		report, err := c.Apply(ctx, body)
		return viewReport(report), err
	})
}

// Init handles POST /sessions/{id}/init.
func (s *Server) Init(w http.ResponseWriter, r *http.Request) {
	var body initRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withClient(w, r, "Init", func(ctx context.Context, c *jembe.Client) (any, error) {
		err := c.Init(body.ExecName, body.Params, body.MergeExisting)
		return c.Payload(), err
	})
}

// Call handles POST /sessions/{id}/call.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	var body callRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withClient(w, r, "Call", func(ctx context.Context, c *jembe.Client) (any, error) {
		c.Call(body.ExecName, body.Action, body.Args, body.Kwargs)
		return c.Payload(), nil
	})
}

// Emit handles POST /sessions/{id}/emit.
func (s *Server) Emit(w http.ResponseWriter, r *http.Request) {
	var body emitRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.withClient(w, r, "Emit", func(ctx context.Context, c *jembe.Client) (any, error) {
		c.Emit(body.ExecName, body.Event, body.Params, body.To)
		return c.Payload(), nil
	})
}

// Flush handles POST /sessions/{id}/flush.
func (s *Server) Flush(w http.ResponseWriter, r *http.Request) {
	s.withClient(w, r, "Flush", func(ctx context.Context, c *jembe.Client) (any, error) {
		report, err := c.Flush(ctx)
		return viewReport(report), err
	})
}

// Back handles POST /sessions/{id}/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.withClient(w, r, "Back", func(ctx context.Context, c *jembe.Client) (any, error) {
		report, err := c.Back(ctx)
		return viewReport(report), err
	})
}

// Components handles GET /sessions/{id}/components.
func (s *Server) Components(w http.ResponseWriter, r *http.Request) {
	client, err := s.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "Components", err)
		return
	}
	writeJSON(w, http.StatusOK, components(client))
}

// Document handles GET /sessions/{id}/document.
func (s *Server) Document(w http.ResponseWriter, r *http.Request) {
	client, err := s.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "Document", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, client.Document())
}

// Payload handles GET /sessions/{id}/payload.
func (s *Server) Payload(w http.ResponseWriter, r *http.Request) {
	client, err := s.Sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, "Payload", err)
		return
	}
	writeJSON(w, http.StatusOK, client.Payload())
}

// Close handles DELETE /sessions/{id}.
func (s *Server) Close(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, "Close", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) withClient(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *jembe.Client) (any, error)) {
	sessionID := chi.URLParam(r, "sessionID")
	client, err := s.Sessions.Get(sessionID)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	var out any
	err = s.Sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx, client)
		return err
	})
	if err != nil {
		s.fail(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.Logger.Warn("invalid request body", "path", r.URL.Path, "error", err)
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	var mergeErr *domain.MergeError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedParamPath),
		errors.Is(err, domain.ErrMalformedResponse),
		errors.Is(err, domain.ErrInvalidExecName):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrHistoryEmpty):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTransport), errors.Is(err, jembe.ErrNoTransport):
		status = http.StatusBadGateway
	case errors.As(err, &mergeErr):
		status = http.StatusUnprocessableEntity
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "error", err)
	} else {
		s.Logger.Warn(op+" rejected", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func components(c *jembe.Client) []ComponentView {
	reg := c.Registry()
	out := make([]ComponentView, 0, len(reg))
	for _, name := range reg.Names() {
		comp := reg[name]
		out = append(out, ComponentView{
			ExecName:   comp.ExecName,
			State:      comp.State,
			URL:        comp.URL,
			ChangesURL: comp.ChangesURL,
			Actions:    comp.ActionNames(),
			Mounted:    comp.Mounted,
			Children:   comp.ChildNames(),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
