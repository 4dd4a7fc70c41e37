// Package cli drives an interactive navigation session in the terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/planflow"
	"github.com/aretw0/planflow/internal/autoanswer"
	"github.com/aretw0/planflow/internal/presentation/tui"
	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/ports"
	"github.com/aretw0/planflow/pkg/schema"
	"github.com/aretw0/planflow/pkg/session"
)

// RunOptions configures an interactive session.
type RunOptions struct {
	// Flow names the flow to start. It may be empty when resuming.
	Flow string
	// SessionID resumes or creates the given session. Empty generates one.
	SessionID string
	// Fresh discards a stored session with the same id first.
	Fresh bool
	// Styled enables colour and markdown rendering.
	Styled bool
	Width  int

	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger

	EngineOptions []planflow.Option
}

// Session is one interactive navigation bound to a stored snapshot.
type Session struct {
	id      string
	engine  *planflow.Engine
	manager *session.Manager
	prompt  *Prompter
	render  tui.Renderer
	pal     *tui.Palette
	out     io.Writer
	logger  *slog.Logger
}

// Start loads or creates the session described by opts.
func Start(ctx context.Context, manager *session.Manager, loader ports.FlowLoader, opts RunOptions) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	if opts.Fresh {
		if err := manager.Delete(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to reset session %s: %w", id, err)
		}
	}

	snap, err := manager.LoadOrStart(ctx, id, opts.Flow)
	if err != nil {
		return nil, err
	}
	switch {
	case snap.Flow == "":
		return nil, fmt.Errorf("session %s has no flow: %w", id, domain.ErrFlowNotFound)
	case opts.Flow != "" && snap.Flow != opts.Flow:
		return nil, fmt.Errorf("session %s belongs to flow %q, not %q", id, snap.Flow, opts.Flow)
	}

	engineOpts := append([]planflow.Option{
		planflow.WithLoader(loader),
		planflow.WithLogger(opts.Logger),
	}, opts.EngineOptions...)
	eng, err := planflow.Resume(ctx, snap, engineOpts...)
	if err != nil {
		return nil, err
	}

	pal := tui.NewPalette(opts.Out, opts.Styled)
	return &Session{
		id:      id,
		engine:  eng,
		manager: manager,
		prompt:  NewPrompter(opts.In, opts.Out, pal),
		render:  tui.NewRenderer(opts.Styled, opts.Width),
		pal:     pal,
		out:     opts.Out,
		logger:  opts.Logger.With("session_id", id),
	}, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Engine returns the engine driving the session.
func (s *Session) Engine() *planflow.Engine { return s.engine }

// Run asks for cards until the flow is complete or the user quits. The
// snapshot is saved after every step.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return s.save(context.WithoutCancel(ctx))
		}

		card, err := s.engine.Advance(ctx)
		if err != nil {
			return err
		}
		if err := s.save(ctx); err != nil {
			return err
		}
		if card == "" {
			s.finish()
			return nil
		}

		ud, err := s.ask(card)
		switch {
		case errors.Is(err, ErrBack):
			s.back(ctx, card)
			continue
		case errors.Is(err, ErrQuit):
			fmt.Fprintf(s.out, "\nSession %s saved.\n", s.id)
			return nil
		case err != nil:
			return err
		}

		if node, ok := s.engine.Graph().Node(card); ok {
			if err := schema.ValidateRecord(node, ud); err != nil {
				for _, e := range schema.ValidationErrors(err) {
					fmt.Fprintln(s.out, s.pal.Warn(e.Error()))
				}
				continue
			}
		}
		if err := s.engine.Record(ctx, card, ud); err != nil {
			return err
		}
	}
}

func (s *Session) save(ctx context.Context) error {
	if err := s.manager.Save(ctx, s.id, s.engine.Snapshot()); err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) back(ctx context.Context, card string) {
	if !s.engine.CanGoBack(card) {
		msg := "There is no previous question."
		if s.engine.HasPaid() {
			msg = "Answers cannot be changed after payment."
		}
		fmt.Fprintln(s.out, s.pal.Warn(msg))
		return
	}
	if _, err := s.engine.Back(ctx, card); err != nil {
		fmt.Fprintln(s.out, s.pal.Warn(err.Error()))
	}
}

// ask renders card and collects the reply.
func (s *Session) ask(card string) (*domain.UserData, error) {
	node, ok := s.engine.Graph().Node(card)
	if !ok {
		return nil, &domain.NodeNotFoundError{ID: card}
	}
	s.header(node)

	switch {
	case node.Type.IsDecision(), node.Type == domain.TypeFilter:
		return s.decide(node)
	case node.Type.IsAutoAnswerableInput():
		return s.input(node)
	}

	switch node.Type {
	case domain.TypeFindProperty:
		addr, err := s.prompt.Line("Site address")
		if err != nil {
			return nil, err
		}
		return &domain.UserData{Data: map[string]any{"_address": map[string]any{"title": addr}}}, nil
	case domain.TypeDrawBoundary, domain.TypeMapAndLabel, domain.TypePlanningConstraints, domain.TypePropertyInformation:
		return s.property(node)
	case domain.TypePay:
		for {
			ok, err := s.prompt.Confirm("Pay now?")
			if err != nil {
				return nil, err
			}
			if ok {
				return &domain.UserData{}, nil
			}
			fmt.Fprintln(s.out, s.pal.Warn("Payment is required to continue."))
		}
	case domain.TypeResult:
		s.results()
	case domain.TypeReview:
		s.review()
	}

	if _, err := s.prompt.Line("Press enter to continue"); err != nil {
		return nil, err
	}
	return &domain.UserData{}, nil
}

func (s *Session) header(node *domain.Node) {
	fmt.Fprintln(s.out)
	if idx, title := s.engine.CurrentSection(); title != "" {
		line := fmt.Sprintf("Section %d: %s", idx, title)
		if p, ok := s.engine.Progress(); ok {
			line += fmt.Sprintf(" (%.0f%% complete)", p.Completed)
		}
		fmt.Fprintln(s.out, s.pal.Muted(line))
	}
	if title := node.Title(); title != "" {
		fmt.Fprintln(s.out, s.pal.Heading(title))
	}
	if c, ok := node.Data.(*domain.ContentData); ok && c.Text != "" && c.Text != node.Title() {
		s.markdown(c.Text)
	}
}

func (s *Session) markdown(text string) {
	out, err := s.render(text)
	if err != nil {
		s.logger.Debug("markdown rendering failed", "err", err)
		out, _ = tui.Plain(text)
	}
	fmt.Fprint(s.out, out)
}

func (s *Session) decide(node *domain.Node) (*domain.UserData, error) {
	g := s.engine.Graph()
	var ids []string
	for _, id := range node.Edges {
		opt, ok := g.Node(id)
		if !ok || opt.Type != domain.TypeAnswer {
			continue
		}
		ids = append(ids, id)
		fmt.Fprintf(s.out, "  %s %s\n", s.pal.Option(strconv.Itoa(len(ids))+"."), opt.Title())
	}
	if len(ids) == 0 {
		if _, err := s.prompt.Line("Press enter to continue"); err != nil {
			return nil, err
		}
		return &domain.UserData{}, nil
	}

	picked, err := s.prompt.Choose(len(ids), node.Type == domain.TypeChecklist)
	if err != nil {
		return nil, err
	}
	answers := make([]string, 0, len(picked))
	for _, i := range picked {
		answers = append(answers, ids[i])
	}
	return &domain.UserData{Answers: answers}, nil
}

func (s *Session) input(node *domain.Node) (*domain.UserData, error) {
	key := node.Fn()
	if key == "" {
		key = node.ID
	}

	var value any
	switch node.Type {
	case domain.TypeContactInput:
		contact := map[string]any{}
		for _, field := range []string{"name", "email", "phone"} {
			v, err := s.prompt.Line(strings.ToUpper(field[:1]) + field[1:])
			if err != nil {
				return nil, err
			}
			if v != "" {
				contact[field] = v
			}
		}
		return &domain.UserData{Data: map[string]any{
			autoanswer.ContactKey(key): map[string]any{key: contact},
		}}, nil
	case domain.TypeNumberInput:
		for value == nil {
			line, err := s.prompt.Line("Number")
			if err != nil {
				return nil, err
			}
			n, err := strconv.ParseFloat(line, 64)
			if err != nil {
				fmt.Fprintln(s.out, s.pal.Warn(fmt.Sprintf("%q is not a number", line)))
				continue
			}
			value = n
		}
	case domain.TypeDateInput:
		for value == nil {
			line, err := s.prompt.Line("Date (YYYY-MM-DD)")
			if err != nil {
				return nil, err
			}
			if _, err := time.Parse(time.DateOnly, line); err != nil {
				fmt.Fprintln(s.out, s.pal.Warn(fmt.Sprintf("%q is not a date", line)))
				continue
			}
			value = line
		}
	default:
		line, err := s.prompt.Line("")
		if err != nil {
			return nil, err
		}
		value = line
	}
	return &domain.UserData{Data: map[string]any{key: value}}, nil
}

func (s *Session) property(node *domain.Node) (*domain.UserData, error) {
	fn := node.Fn()
	if fn == "" {
		if _, err := s.prompt.Line("Press enter to continue"); err != nil {
			return nil, err
		}
		return &domain.UserData{}, nil
	}
	line, err := s.prompt.Line("Values for " + fn + " (comma separated)")
	if err != nil {
		return nil, err
	}
	var vals []string
	for v := range strings.SplitSeq(line, ",") {
		if v = strings.TrimSpace(v); v != "" {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return &domain.UserData{}, nil
	}
	return &domain.UserData{Data: map[string]any{fn: vals}}, nil
}

func (s *Session) results() {
	for _, res := range s.engine.ResultData("", nil) {
		heading := res.DisplayText.Heading
		if heading == "" {
			heading = res.Flag.Text
		}
		fmt.Fprintln(s.out, s.pal.Heading(heading))
		if res.DisplayText.Description != "" {
			s.markdown(res.DisplayText.Description)
		}
		for _, r := range res.Responses {
			if r.Hidden {
				continue
			}
			var picked []string
			for _, sel := range r.Selections {
				picked = append(picked, sel.Title())
			}
			fmt.Fprintf(s.out, "  %s: %s\n", r.Question.Title(), strings.Join(picked, ", "))
		}
	}
}

func (s *Session) review() {
	g := s.engine.Graph()
	for id, b := range s.engine.Breadcrumbs().All() {
		node, ok := g.Node(id)
		if !ok || b.Auto || !node.Type.IsDecision() {
			continue
		}
		var picked []string
		for _, a := range b.Answers {
			if opt, ok := g.Node(a); ok {
				picked = append(picked, opt.Title())
			}
		}
		fmt.Fprintf(s.out, "  %s %s\n", s.pal.Muted(node.Title()+":"), strings.Join(picked, ", "))
	}
}

func (s *Session) finish() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, s.pal.Heading("Flow complete."))
	collected := s.engine.CollectedFlags()
	for _, category := range slices.Sorted(maps.Keys(collected)) {
		flags := collected[category]
		if len(flags) == 0 {
			continue
		}
		fmt.Fprintf(s.out, "  %s: %s\n", category, flags[0].Text)
	}
	s.logger.Info("session complete")
}
