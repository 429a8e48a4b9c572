package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/presentation/graph"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/runner"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes sessions of an Engine over HTTP.
// Every session operation runs under the Manager's per-session lock.
type Server struct {
	Engine   *botflow.Engine
	Sessions *session.Manager
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// StartRequest is the body of POST /flows/{flowID}/sessions.
type StartRequest struct {
	StartBlock string            `json:"start_block,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// AdvanceRequest is the body of POST /sessions/{sessionID}/advance.
// Exactly one of the fields may be set. An empty request follows no edge,
// which resumes queued continuations or completes the session.
type AdvanceRequest struct {
	EdgeID  string `json:"edge_id,omitempty"`
	BlockID string `json:"block_id,omitempty"`
}

// CompleteRequest is the optional body of POST /sessions/{sessionID}/steps/{stepID}/complete.
// Value answers an input step before it completes.
type CompleteRequest struct {
	Value *string `json:"value,omitempty"`
}

// BindRequest is the body of PUT /sessions/{sessionID}/variables/{name}.
type BindRequest struct {
	Value string `json:"value"`
}

// SessionResponse is the body of GET /sessions/{sessionID}.
type SessionResponse struct {
	domain.SessionSnapshot
	View runner.View `json:"view"`
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine *botflow.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.ListFlows)
		r.Get("/{flowID}/graph", s.GetGraph)
		r.Post("/{flowID}/sessions", s.StartSession)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/advance", s.Advance)
			r.Post("/steps/{stepID}/complete", s.CompleteStep)
			r.Put("/variables/{name}", s.BindVariable)
		})
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "botflow-http",
		"version": botflow.Version,
		"repo":    s.Engine.Name,
	})
}

// GetOpenAPI handles the GET /openapi.yaml request.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(openAPIDocument); err != nil {
		s.Logger.Error("GetOpenAPI response write failed", "err", err)
	}
}

// ListFlows handles the GET /flows request.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.Engine.Flows(r.Context())
	if err != nil {
		s.writeError(w, "ListFlows", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"flows": flows})
}

// GetGraph handles the GET /flows/{flowID}/graph request.
// With ?session_id= the diagram highlights the blocks that session displayed.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	g, err := s.Engine.Flow(r.Context(), flowID)
	if err != nil {
		s.writeError(w, "GetGraph", err)
		return
	}

	var overlay *graph.GraphOverlay
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		err := s.Sessions.WithLock(r.Context(), sessionID, func(_ context.Context, sess *botflow.Session) error {
			overlay = graph.OverlayFromHistory(sess.History(), flowID)
			return nil
		})
		if err != nil {
			s.writeError(w, "GetGraph", err)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(graph.GenerateMermaid(g, overlay))); err != nil {
		s.Logger.Error("GetGraph response write failed", "err", err)
	}
}

// StartSession handles the POST /flows/{flowID}/sessions request.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if !s.decode(w, r, "StartSession", &body, true) {
		return
	}

	predefined := make(map[string]string, len(body.Variables))
	for name, value := range body.Variables {
		clean, err := runner.SanitizeInput(value)
		if err != nil {
			s.Logger.Warn("StartSession: variable rejected", "err", err, "variable", name, "size", len(value))
			http.Error(w, fmt.Sprintf("Invalid variable %q: %v", name, err), http.StatusBadRequest)
			return
		}
		predefined[name] = clean
	}

	ctx := r.Context()
	sess, outcome, err := s.Engine.Start(ctx, chi.URLParam(r, "flowID"), domain.StartOptions{
		StartBlockID: body.StartBlock,
		Predefined:   predefined,
	})
	if err != nil {
		s.writeError(w, "StartSession", err)
		return
	}
	if err := s.Sessions.Add(ctx, sess); err != nil {
		s.writeError(w, "StartSession", err)
		return
	}

	s.Logger.Info("session started", "session_id", sess.ID(), "flow_id", sess.RootGraph().ID, "outcome", outcome)
	w.Header().Set("Location", "/sessions/"+sess.ID())
	s.writeJSON(w, http.StatusCreated, runner.ViewAfter(sess, outcome))
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, "ListSessions", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles the GET /sessions/{sessionID} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	var resp SessionResponse
	err := s.Sessions.WithLock(r.Context(), chi.URLParam(r, "sessionID"), func(_ context.Context, sess *botflow.Session) error {
		resp = SessionResponse{SessionSnapshot: sess.Snapshot(), View: runner.CurrentView(sess)}
		return nil
	})
	if err != nil {
		s.writeError(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles the DELETE /sessions/{sessionID} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Advance handles the POST /sessions/{sessionID}/advance request.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if !s.decode(w, r, "Advance", &body, true) {
		return
	}
	if body.EdgeID != "" && body.BlockID != "" {
		http.Error(w, "Specify either edge_id or block_id, not both", http.StatusBadRequest)
		return
	}

	s.mutate(w, r, "Advance", func(ctx context.Context, sess *botflow.Session) (domain.Outcome, error) {
		if body.BlockID != "" {
			return s.Engine.AdvanceBlock(ctx, sess, body.BlockID)
		}
		return s.Engine.AdvanceEdge(ctx, sess, body.EdgeID)
	})
}

// CompleteStep handles the POST /sessions/{sessionID}/steps/{stepID}/complete request.
func (s *Server) CompleteStep(w http.ResponseWriter, r *http.Request) {
	var body CompleteRequest
	if !s.decode(w, r, "CompleteStep", &body, true) {
		return
	}

	stepID := chi.URLParam(r, "stepID")
	s.mutate(w, r, "CompleteStep", func(ctx context.Context, sess *botflow.Session) (domain.Outcome, error) {
		if body.Value != nil {
			if err := runner.Answer(ctx, s.Engine, sess, stepID, *body.Value); err != nil {
				return "", err
			}
		}
		return s.Engine.CompleteStep(ctx, sess, stepID)
	})
}

// BindVariable handles the PUT /sessions/{sessionID}/variables/{name} request.
func (s *Server) BindVariable(w http.ResponseWriter, r *http.Request) {
	var body BindRequest
	if !s.decode(w, r, "BindVariable", &body, false) {
		return
	}
	value, err := runner.SanitizeInput(body.Value)
	if err != nil {
		s.Logger.Warn("BindVariable: value rejected", "err", err, "size", len(body.Value))
		http.Error(w, fmt.Sprintf("Invalid value: %v", err), http.StatusBadRequest)
		return
	}

	name := chi.URLParam(r, "name")
	var snap domain.SessionSnapshot
	err = s.Sessions.WithLock(r.Context(), chi.URLParam(r, "sessionID"), func(ctx context.Context, sess *botflow.Session) error {
		if err := s.Engine.Bind(ctx, sess, name, value); err != nil {
			return err
		}
		snap = sess.Snapshot()
		return nil
	})
	if err != nil {
		s.writeError(w, "BindVariable", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// SubscribeEvents handles the GET /events request (SSE).
// Each event carries the ID of a flow that changed in the backing repository.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	events, err := s.Engine.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch unavailable: %v", err), http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected")
			return
		case flowID, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: flow_changed\ndata: %s\n\n", flowID)
			flusher.Flush()
		}
	}
}

// -- Helpers --

// mutate runs an advance under the session lock and writes the resulting view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, *botflow.Session) (domain.Outcome, error)) {
	sessionID := chi.URLParam(r, "sessionID")
	var view runner.View
	err := s.Sessions.WithLock(r.Context(), sessionID, func(ctx context.Context, sess *botflow.Session) error {
		outcome, err := fn(ctx, sess)
		if err != nil {
			return err
		}
		view = runner.ViewAfter(sess, outcome)
		return nil
	})
	if err != nil {
		s.writeError(w, op, err)
		return
	}
	s.Logger.Debug(op, "session_id", sessionID, "outcome", view.Outcome, "block_id", view.BlockID)
	s.writeJSON(w, http.StatusOK, view)
}

// decode reads a JSON body into dst. With optional set, an empty body is accepted.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	s.Logger.Warn(op+": invalid request body", "err", err)
	http.Error(w, "Invalid request body", http.StatusBadRequest)
	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlowNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrVariableNotFound),
		errors.Is(err, domain.ErrStepNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrSessionStarted),
		errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidGraph),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err)
	} else {
		s.Logger.Debug(op+" rejected", "err", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "err", err)
	}
}
