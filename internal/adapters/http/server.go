package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ownerscope/internal/domain"
	"ownerscope/internal/logging"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/contacts"
	"ownerscope/internal/services/ownership"
)

// Server is the admin and observability surface over the core services.
type Server struct {
	health   ports.HealthAdmin
	resolver ports.OwnershipResolver
	audit    ports.AuditReader
	contacts ports.ContactLookup
	log      zerolog.Logger
	now      func() time.Time
	timeout  time.Duration
}

type Option func(*Server)

// WithAuditReader enables GET /audit.
func WithAuditReader(a ports.AuditReader) Option { return func(s *Server) { s.audit = a } }

// WithContactLookup enables POST /contacts/lookup.
func WithContactLookup(c ports.ContactLookup) Option { return func(s *Server) { s.contacts = c } }

// WithRequestTimeout bounds every request's context.
func WithRequestTimeout(d time.Duration) Option { return func(s *Server) { s.timeout = d } }

func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

func New(health ports.HealthAdmin, resolver ports.OwnershipResolver, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{
		health:   health,
		resolver: resolver,
		log:      log.With().Str("component", "http").Logger(),
		now:      time.Now,
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.getHealthz)
	r.Route("/providers", func(r chi.Router) {
		r.Get("/", s.listProviders)
		r.Get("/{key}", s.getProvider)
		r.Post("/{key}/reset", s.resetProvider)
	})
	r.Post("/ownership/resolve", s.postResolve)
	r.Get("/ownership/display", s.getDisplay)
	r.Post("/contacts/merge", s.postMerge)
	if s.contacts != nil {
		r.Post("/contacts/lookup", s.postLookup)
	}
	if s.audit != nil {
		r.Get("/audit", s.getAudit)
	}
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listProviders(w http.ResponseWriter, r *http.Request) {
	recs, err := s.health.GetAll(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getProvider(w http.ResponseWriter, r *http.Request) {
	rec, found, err := s.health.GetByKey(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !found {
		s.fail(w, r, domain.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) resetProvider(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := s.health.Reset(r.Context(), key); err != nil {
		s.fail(w, r, err)
		return
	}
	rec, _, err := s.health.GetByKey(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type resolveRequest struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction"`
}

func (s *Server) postResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.fail(w, r, invalid("name is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.resolver.Resolve(r.Context(), req.Name, req.Jurisdiction))
}

func (s *Server) getDisplay(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		s.fail(w, r, invalid("name is required"))
		return
	}
	chain := s.resolver.Resolve(r.Context(), name, r.URL.Query().Get("jurisdiction"))
	writeJSON(w, http.StatusOK, ownership.FormatForDisplay(chain))
}

type mergeRequest struct {
	Query ports.ContactQuery    `json:"query"`
	Raw   contacts.RawResponses `json:"raw"`
}

// postMerge scores candidates the caller already fetched.
func (s *Server) postMerge(w http.ResponseWriter, r *http.Request) {
	var req mergeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts.Merge(req.Query, req.Raw, s.now()))
}

func (s *Server) postLookup(w http.ResponseWriter, r *http.Request) {
	var q ports.ContactQuery
	if err := decodeJSON(w, r, &q); err != nil {
		s.fail(w, r, err)
		return
	}
	if strings.TrimSpace(q.Name) == "" {
		s.fail(w, r, invalid("name is required"))
		return
	}
	writeJSON(w, http.StatusOK, s.contacts.Lookup(r.Context(), q))
}

func (s *Server) getAudit(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			s.fail(w, r, invalid("limit must be between 1 and 1000"))
			return
		}
		limit = n
	}
	events, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func invalid(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return domain.ErrInvalidInput }

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	}
	if code >= 500 {
		l := logging.FromContext(r.Context(), s.log)
		l.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &requestError{msg: "invalid request body: " + err.Error()}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
