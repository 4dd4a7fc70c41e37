package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/ports"
	"github.com/aretw0/planflow/pkg/schema"
	"github.com/aretw0/planflow/pkg/session"
)

// Server exposes navigation sessions over JSON. Every mutating request
// resumes the stored snapshot, applies one engine operation and saves the
// result under the session lock.
type Server struct {
	manager    *session.Manager
	loader     ports.FlowLoader
	engineOpts []planflow.Option
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEngineOptions are applied to every engine the server builds.
func WithEngineOptions(opts ...planflow.Option) Option {
	return func(s *Server) {
		s.engineOpts = append(s.engineOpts, opts...)
	}
}

// NewServer creates a server over sessions in manager and flows in loader.
func NewServer(manager *session.Manager, loader ports.FlowLoader, opts ...Option) *Server {
	s := &Server{
		manager: manager,
		loader:  loader,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler builds the router.
func NewHandler(manager *session.Manager, loader ports.FlowLoader, opts ...Option) http.Handler {
	return NewServer(manager, loader, opts...).Routes()
}

// Routes returns the chi router serving the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.health)
	r.Get("/flows", s.listFlows)

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.listSessions)
		r.Post("/", s.start)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.snapshot)
			r.Delete("/", s.delete)
			r.Get("/upcoming", s.upcoming)
			r.Get("/passport", s.passport)
			r.Get("/result", s.result)
			r.Post("/record", s.record)
			r.Post("/advance", s.advance)
			r.Post("/back", s.back)
			r.Post("/change", s.change)
			r.Post("/override", s.override)
		})
	})
	return r
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

// View is the navigation state returned after every operation.
type View struct {
	SessionID   string           `json:"sessionId"`
	Flow        string           `json:"flow"`
	CurrentCard string           `json:"currentCard,omitempty"`
	Upcoming    []string         `json:"upcoming"`
	Final       bool             `json:"final"`
	Complete    bool             `json:"complete"`
	CanGoBack   bool             `json:"canGoBack"`
	PendingEdit []string         `json:"nodesPendingEdit,omitempty"`
	Section     *SectionView     `json:"section,omitempty"`
	Progress    *domain.Progress `json:"progress,omitempty"`
	// Changes lists the breadcrumbs the operation touched.
	Changes *domain.BreadcrumbDiff `json:"changes,omitempty"`
}

// SectionView names the section the current card belongs to.
type SectionView struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

func newView(eng *planflow.Engine, snap *domain.Snapshot) View {
	current := eng.CurrentCard()
	v := View{
		SessionID:   eng.SessionID(),
		Flow:        snap.Flow,
		CurrentCard: current,
		Upcoming:    eng.UpcomingCardIds(),
		Final:       eng.IsFinalCard(),
		Complete:    eng.IsComplete(),
		CanGoBack:   eng.CanGoBack(current),
		PendingEdit: snap.PendingEdit,
	}
	if p, ok := eng.Progress(); ok {
		idx, title := eng.CurrentSection()
		v.Section = &SectionView{Index: idx, Title: title}
		v.Progress = &p
	}
	return v
}

type startRequest struct {
	Flow      string `json:"flow"`
	SessionID string `json:"sessionId,omitempty"`
}

type recordRequest struct {
	NodeID   string         `json:"nodeId"`
	Answers  []string       `json:"answers,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Override map[string]any `json:"override,omitempty"`
	// Retreat records no payload, going back to NodeID.
	Retreat bool `json:"retreat,omitempty"`
	// Advance auto-answers every inferable card after recording.
	Advance bool `json:"advance,omitempty"`
}

type nodeRequest struct {
	NodeID string `json:"nodeId"`
}

type overrideRequest struct {
	Fn string `json:"fn"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listFlows(w http.ResponseWriter, r *http.Request) {
	names, err := s.loader.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"flows": names})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) start(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Flow == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "flow is required"})
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	// Fail before reserving the id when the flow does not exist.
	if _, err := s.loader.Load(r.Context(), body.Flow); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.manager.LoadOrStart(r.Context(), body.SessionID, body.Flow); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, body.SessionID, http.StatusCreated, func(ctx context.Context, eng *planflow.Engine) error {
		return nil
	})
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) upcoming(w http.ResponseWriter, r *http.Request) {
	s.read(w, r, func(eng *planflow.Engine, snap *domain.Snapshot) any {
		return newView(eng, snap)
	})
}

func (s *Server) passport(w http.ResponseWriter, r *http.Request) {
	s.read(w, r, func(eng *planflow.Engine, _ *domain.Snapshot) any {
		return eng.ComputePassport()
	})
}

func (s *Server) result(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	s.read(w, r, func(eng *planflow.Engine, _ *domain.Snapshot) any {
		return eng.ResultData(category, nil)
	})
}

func (s *Server) record(w http.ResponseWriter, r *http.Request) {
	var body recordRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.mutate(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, eng *planflow.Engine) error {
		var ud *domain.UserData
		if !body.Retreat {
			ud = &domain.UserData{Answers: body.Answers, Data: body.Data, Override: body.Override}
			if node, ok := eng.Graph().Node(body.NodeID); ok {
				if err := schema.ValidateRecord(node, ud); err != nil {
					return err
				}
			}
		}
		if err := eng.Record(ctx, body.NodeID, ud); err != nil {
			return err
		}
		if body.Advance {
			_, err := eng.Advance(ctx)
			return err
		}
		return nil
	})
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, eng *planflow.Engine) error {
		_, err := eng.Advance(ctx)
		return err
	})
}

func (s *Server) back(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, eng *planflow.Engine) error {
		_, err := eng.Back(ctx, eng.CurrentCard())
		return err
	})
}

func (s *Server) change(w http.ResponseWriter, r *http.Request) {
	var body nodeRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.mutate(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, eng *planflow.Engine) error {
		return eng.ChangeAnswer(ctx, body.NodeID)
	})
}

func (s *Server) override(w http.ResponseWriter, r *http.Request) {
	var body overrideRequest
	if !s.decode(w, r, &body) {
		return
	}
	s.mutate(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, eng *planflow.Engine) error {
		return eng.OverrideAnswer(ctx, body.Fn)
	})
}

func (s *Server) resume(ctx context.Context, snap *domain.Snapshot) (*planflow.Engine, error) {
	opts := append([]planflow.Option{
		planflow.WithLoader(s.loader),
		planflow.WithLogger(s.logger),
	}, s.engineOpts...)
	return planflow.Resume(ctx, snap, opts...)
}

// read resumes the session without saving it.
func (s *Server) read(w http.ResponseWriter, r *http.Request, fn func(*planflow.Engine, *domain.Snapshot) any) {
	snap, err := s.manager.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	eng, err := s.resume(r.Context(), snap)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, fn(eng, snap))
}

// mutate applies op under the session lock and responds with the new view.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, id string, status int, op func(context.Context, *planflow.Engine) error) {
	var (
		eng    *planflow.Engine
		before *domain.Breadcrumbs
	)
	snap, err := s.manager.Update(r.Context(), id, func(ctx context.Context, snap *domain.Snapshot) (*domain.Snapshot, error) {
		before = snap.Breadcrumbs.Clone()
		var err error
		eng, err = s.resume(ctx, snap)
		if err != nil {
			return nil, err
		}
		if err := op(ctx, eng); err != nil {
			return nil, err
		}
		return eng.Snapshot(), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v := newView(eng, snap)
	v.Changes = domain.Diff(before, snap.Breadcrumbs)
	s.writeJSON(w, status, v)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

type errorBody struct {
	Error string `json:"error"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrFlowNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNodeNotFound), errors.Is(err, domain.ErrOverrideTargetNotFound),
		errors.Is(err, schema.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBackNavigationLocked):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
