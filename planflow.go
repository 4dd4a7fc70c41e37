package planflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/planflow/internal/runtime"
	"github.com/aretw0/planflow/pkg/adapters/file"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/flags"
	"github.com/aretw0/planflow/pkg/ports"
)

type (
	// Result is the outcome of one flag category.
	Result = runtime.Result
	// DisplayText replaces the heading and description of a result.
	DisplayText = runtime.DisplayText
	// Response is a decision that contributed to a result.
	Response = runtime.Response
	// RequestedFiles lists the uploads a flow asks for.
	RequestedFiles = runtime.RequestedFiles
)

// Engine is the high-level entry point of the library. It drives one
// session over one flow and is not safe for concurrent use.
type Engine struct {
	runtime *runtime.Engine
	loader  ports.FlowLoader
	Name    string
}

type config struct {
	loader    ports.FlowLoader
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	now       func() time.Time
	flags     *flags.Registry
	sessionID string
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLoader injects the flow loader. The default reads flow documents
// from the working directory.
func WithLoader(l ports.FlowLoader) Option {
	return func(c *config) {
		c.loader = l
	}
}

// WithClock overrides the time source used for breadcrumb timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithFlags replaces the built-in flag registry.
func WithFlags(reg *flags.Registry) Option {
	return func(c *config) {
		c.flags = reg
	}
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(c *config) {
		c.sessionID = id
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = file.NewLoader(".")
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	return c
}

// New loads flowName and starts a fresh session on it.
func New(ctx context.Context, flowName string, opts ...Option) (*Engine, error) {
	c := newConfig(opts)
	g, err := c.loader.Load(ctx, flowName)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow %s: %w", flowName, err)
	}
	return build(c, flowName, g)
}

// NewFromGraph starts a session on an already loaded graph.
func NewFromGraph(g *domain.Graph, opts ...Option) (*Engine, error) {
	return build(newConfig(opts), "", g)
}

// Resume loads the flow named by snap and adopts its breadcrumbs.
func Resume(ctx context.Context, snap *domain.Snapshot, opts ...Option) (*Engine, error) {
	if snap == nil {
		return nil, domain.ErrSessionNotFound
	}
	eng, err := New(ctx, snap.Flow, append(opts, WithSessionID(snap.SessionID))...)
	if err != nil {
		return nil, err
	}
	eng.runtime.ResumeSession(snap)
	return eng, nil
}

func build(c *config, name string, g *domain.Graph) (*Engine, error) {
	logger := c.logger
	if name != "" {
		logger = logger.With("flow", name)
	}

	rtOpts := []runtime.EngineOption{
		runtime.WithLogger(logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithSessionID(c.sessionID),
		runtime.WithFlowName(name),
		runtime.WithClock(c.now),
		runtime.WithFlags(c.flags),
	}
	rt, err := runtime.NewEngine(g, rtOpts...)
	if err != nil {
		return nil, err
	}
	return &Engine{runtime: rt, loader: c.loader, Name: name}, nil
}

// SessionID returns the id of the running session.
func (e *Engine) SessionID() string { return e.runtime.SessionID() }

// Graph returns the flow graph snapshot.
func (e *Engine) Graph() *domain.Graph { return e.runtime.Graph() }

// Loader returns the flow loader the engine was built with.
func (e *Engine) Loader() ports.FlowLoader { return e.loader }

// UpcomingCardIds returns every node still to be visited in canonical order.
func (e *Engine) UpcomingCardIds() []string { return e.runtime.UpcomingCardIds() }

// CurrentCard returns the node to show next, or "" once complete.
func (e *Engine) CurrentCard() string { return e.runtime.CurrentCard() }

// IsFinalCard reports whether exactly one card remains.
func (e *Engine) IsFinalCard() bool { return e.runtime.IsFinalCard() }

// IsComplete reports whether nothing remains to be visited.
func (e *Engine) IsComplete() bool { return e.runtime.IsComplete() }

// Record answers id. A nil ud goes back to id instead.
func (e *Engine) Record(ctx context.Context, id string, ud *domain.UserData) error {
	return e.runtime.Record(ctx, id, ud)
}

// ChangeAnswer reopens id for editing.
func (e *Engine) ChangeAnswer(ctx context.Context, id string) error {
	return e.runtime.ChangeAnswer(ctx, id)
}

// OverrideAnswer discards the stored value of fn and reopens the node that asked for it.
func (e *Engine) OverrideAnswer(ctx context.Context, fn string) error {
	return e.runtime.OverrideAnswer(ctx, fn)
}

// Advance records every auto-answerable card and returns the first card
// that needs the user, or "" when the flow is complete.
func (e *Engine) Advance(ctx context.Context) (string, error) { return e.runtime.Advance(ctx) }

// AutoAnswerable reports the answer that would be inferred for id.
func (e *Engine) AutoAnswerable(id string) (domain.UserData, bool) {
	return e.runtime.AutoAnswerable(id)
}

// PreviousCard returns the manually answered card before current.
func (e *Engine) PreviousCard(current string) string { return e.runtime.PreviousCard(current) }

// CanGoBack reports whether back navigation is possible from current.
func (e *Engine) CanGoBack(current string) bool { return e.runtime.CanGoBack(current) }

// Back moves to the previous card and returns its id.
func (e *Engine) Back(ctx context.Context, current string) (string, error) {
	return e.runtime.Back(ctx, current)
}

// HasPaid reports whether a payment has been made by the user.
func (e *Engine) HasPaid() bool { return e.runtime.HasPaid() }

// Breadcrumbs returns the live ledger in canonical order.
func (e *Engine) Breadcrumbs() *domain.Breadcrumbs { return e.runtime.Breadcrumbs() }

// ComputePassport derives the passport from the breadcrumbs.
func (e *Engine) ComputePassport() domain.Passport { return e.runtime.ComputePassport() }

// ResultData returns the outcome for category, the default category when empty.
func (e *Engine) ResultData(category string, overrides map[string]DisplayText) map[string]Result {
	return e.runtime.ResultData(category, overrides)
}

// CollectedFlags returns the collected flags per category in priority order.
func (e *Engine) CollectedFlags() map[string][]flags.Flag { return e.runtime.CollectedFlags() }

// RequestedFiles returns the uploads requested by the flow so far.
func (e *Engine) RequestedFiles() RequestedFiles { return e.runtime.RequestedFiles() }

// Progress returns weighted section progress, false when the flow has no sections.
func (e *Engine) Progress() (domain.Progress, bool) { return e.runtime.Progress() }

// CurrentSection returns the 1-based index and title of the current section.
func (e *Engine) CurrentSection() (int, string) { return e.runtime.CurrentSection() }

// ResumeSession adopts snap on the current flow.
func (e *Engine) ResumeSession(snap *domain.Snapshot) { e.runtime.ResumeSession(snap) }

// Snapshot returns the persistable state of the session.
func (e *Engine) Snapshot() *domain.Snapshot { return e.runtime.Snapshot() }
