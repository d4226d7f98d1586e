package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/alibi/internal/excuse"
	"github.com/MikeSquared-Agency/alibi/internal/generator"
	"github.com/MikeSquared-Agency/alibi/internal/store"
)

// maxBodyBytes caps request bodies; a full request is well under 1KB.
const maxBodyBytes = 64 << 10

// SessionHeader carries the caller's session id for analytics.
const SessionHeader = "X-Session-ID"

type Generator interface {
	GenerateJSON(ctx context.Context, body []byte, meta excuse.ClientMeta) (*generator.Result, error)
}

type Tracker interface {
	RecordInteraction(ctx context.Context, in excuse.Interaction)
	PopularScenarios(ctx context.Context, limit int) []store.ScenarioPopularity
}

// Pinger reports whether the analytics database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router  *chi.Mux
	port    int
	gen     Generator
	tracker Tracker
	db      Pinger
	logger  *slog.Logger
	httpSrv *http.Server
}

// NewServer wires the HTTP routes. tracker may be nil.
func NewServer(port int, gen Generator, tracker Tracker, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:  router,
		port:    port,
		gen:     gen,
		tracker: tracker,
		logger:  logger,
	}

	router.Get("/health", s.health)
	router.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Post("/track", s.track)
		r.Get("/scenarios", s.scenarios)
		r.Get("/scenarios/popular", s.popularScenarios)
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called, after which it returns nil.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// SetDatabase adds a database check to /health.
func (s *Server) SetDatabase(db Pinger) {
	s.db = db
}

const healthPingTimeout = 2 * time.Second

// health always answers 200: analytics are optional, so an unreachable
// database degrades the report without failing the liveness check.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.Warn("health: database ping failed", "error", err)
			resp["status"] = "degraded"
			resp["database"] = "unavailable"
		} else {
			resp["database"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request data", Details: err.Error()})
		return
	}

	res, err := s.gen.GenerateJSON(r.Context(), body, clientMeta(r))
	if err != nil {
		var genErr *generator.Error
		if errors.As(err, &genErr) {
			s.logger.Warn("generation failed",
				"kind", genErr.Kind, "reason", genErr.Reason, "error", err,
				"request_id", middleware.GetReqID(r.Context()))
			writeJSON(w, genErr.HTTPStatus(), errorBody{Error: genErr.Message, Details: genErr.Details})
			return
		}
		s.logger.Error("generation failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// track records a copy, tweak or regenerate action. It reports success even
// when the body is invalid or recording fails.
func (s *Server) track(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		var in excuse.Interaction
		in, err = excuse.DecodeInteraction(body)
		if err == nil && s.tracker != nil {
			s.tracker.RecordInteraction(r.Context(), in)
		}
	}
	if err != nil {
		s.logger.Warn("ignoring tracking request", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) scenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, excuse.ScenarioDefinitions)
}

func (s *Server) popularScenarios(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	out := []store.ScenarioPopularity{}
	if s.tracker != nil {
		out = s.tracker.PopularScenarios(r.Context(), limit)
	}
	writeJSON(w, http.StatusOK, out)
}

func clientMeta(r *http.Request) excuse.ClientMeta {
	return excuse.ClientMeta{
		SessionID: r.Header.Get(SessionHeader),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
