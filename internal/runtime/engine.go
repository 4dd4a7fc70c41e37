package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/planflow/internal/autoanswer"
	"github.com/aretw0/planflow/internal/ledger"
	"github.com/aretw0/planflow/internal/passport"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/flags"
)

// Engine is the navigation state machine for one session over one graph
// snapshot. It is synchronous and not safe for concurrent use; callers
// serialise access per session (see pkg/session).
type Engine struct {
	graph     *domain.Graph
	ledger    *ledger.Ledger
	resolver  *autoanswer.Resolver
	sections  *Sections
	flags     *flags.Registry
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	sessionID string
	flowName  string

	currentCard  string
	sectionIndex int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithFlags replaces the built-in flag registry.
func WithFlags(reg *flags.Registry) EngineOption {
	return func(e *Engine) {
		if reg != nil {
			e.flags = reg
		}
	}
}

// WithSessionID sets the session the engine records for.
func WithSessionID(id string) EngineOption {
	return func(e *Engine) {
		e.sessionID = id
	}
}

// WithFlowName labels snapshots with the flow they belong to.
func WithFlowName(name string) EngineOption {
	return func(e *Engine) {
		e.flowName = name
	}
}

// NewEngine creates an engine over g with an empty ledger.
// It fails with domain.ErrRootNotFound when g has no root.
func NewEngine(g *domain.Graph, opts ...EngineOption) (*Engine, error) {
	if !g.HasRoot() {
		return nil, domain.ErrRootNotFound
	}

	e := &Engine{
		graph:  g,
		flags:  flags.Default(),
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionID != "" {
		e.logger = e.logger.With("session_id", e.sessionID)
	}

	e.ledger = ledger.New(g,
		ledger.WithLogger(e.logger),
		ledger.WithLifecycleHooks(e.hooks),
		ledger.WithClock(e.now),
		ledger.WithSessionID(e.sessionID),
	)
	e.resolver = autoanswer.New(g,
		autoanswer.WithLogger(e.logger),
		autoanswer.WithFlags(e.flags),
	)
	e.sections = NewSections(g)
	e.refresh()
	return e, nil
}

// Graph returns the graph snapshot the engine operates on.
func (e *Engine) Graph() *domain.Graph { return e.graph }

// SessionID returns the session identifier.
func (e *Engine) SessionID() string { return e.sessionID }

// Breadcrumbs returns the live ledger. Callers must not mutate it.
func (e *Engine) Breadcrumbs() *domain.Breadcrumbs { return e.ledger.Breadcrumbs() }

// CachedBreadcrumbs returns the breadcrumbs kept for returning forward.
func (e *Engine) CachedBreadcrumbs() *domain.Breadcrumbs { return e.ledger.Cached() }

// PendingEdit returns the ids that must be re-answered after an upstream change.
func (e *Engine) PendingEdit() []string { return e.ledger.Pending() }

// ChangedNode returns the node whose answer is being changed, if any.
func (e *Engine) ChangedNode() string { return e.ledger.ChangedNode() }

// CurrentCard returns the first upcoming node, or "" once the flow is complete.
func (e *Engine) CurrentCard() string { return e.currentCard }

// Record stores ud as the answer to id. A nil ud removes id and everything
// recorded after it, keeping them cached for when the user returns.
func (e *Engine) Record(ctx context.Context, id string, ud *domain.UserData) error {
	var err error
	if ud == nil {
		err = e.ledger.Retreat(ctx, id)
	} else {
		err = e.ledger.Append(ctx, id, *ud)
	}
	if err != nil {
		return err
	}
	e.refresh()
	return nil
}

// ChangeAnswer moves back to id so it can be answered again. Answers to
// unrelated nodes are spliced back in once id is re-recorded.
func (e *Engine) ChangeAnswer(ctx context.Context, id string) error {
	if err := e.ledger.ChangeAnswer(ctx, id); err != nil {
		return err
	}
	e.refresh()
	return nil
}

// ComputePassport derives the passport from the live ledger.
func (e *Engine) ComputePassport() domain.Passport {
	return passport.Compile(e.graph, e.ledger.Breadcrumbs())
}

// ResumeSession adopts a persisted snapshot. Breadcrumbs are re-sorted
// canonically because stores do not guarantee key order. The stored
// passport and progress are ignored and recomputed.
func (e *Engine) ResumeSession(s *domain.Snapshot) {
	if s == nil {
		return
	}
	if s.SessionID != "" && s.SessionID != e.sessionID {
		e.sessionID = s.SessionID
		e.ledger = ledger.New(e.graph,
			ledger.WithLogger(e.logger.With("session_id", s.SessionID)),
			ledger.WithLifecycleHooks(e.hooks),
			ledger.WithClock(e.now),
			ledger.WithSessionID(s.SessionID),
		)
	}
	if s.Flow != "" {
		e.flowName = s.Flow
	}
	e.ledger.Load(s)
	e.refresh()
}

// Snapshot returns the persistable state of the session.
func (e *Engine) Snapshot() *domain.Snapshot {
	s := domain.NewSnapshot(e.sessionID)
	s.Flow = e.flowName
	e.ledger.Save(s)
	p := e.ComputePassport()
	s.Passport = &p
	if prog, ok := e.Progress(); ok {
		s.Progress = &prog
	}
	s.UpdatedAt = e.now()
	return s
}

// refresh recomputes the current card and section position.
func (e *Engine) refresh() {
	e.currentCard = ""
	if upcoming := e.UpcomingCardIds(); len(upcoming) > 0 {
		e.currentCard = upcoming[0]
	}
	e.sectionIndex = e.sections.indexFor(e.ledger.Breadcrumbs(), e.currentCard)
}
