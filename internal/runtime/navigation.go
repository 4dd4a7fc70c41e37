package runtime

import (
	"context"
	"slices"

	"github.com/aretw0/planflow/pkg/domain"
)

// UpcomingCardIds returns every unvisited node reachable from the root or
// from a selected answer, in canonical order. Internal portals are expanded
// transparently.
func (e *Engine) UpcomingCardIds() []string {
	live := e.ledger.Breadcrumbs()

	var seeds []string
	for _, b := range live.All() {
		seeds = append(seeds, b.Answers...)
	}
	slices.Reverse(seeds)
	seeds = append(seeds, domain.RootID)

	upcoming := make(map[string]struct{})
	expanded := make(map[string]struct{})
	var walk func(source string)
	walk = func(source string) {
		if _, ok := expanded[source]; ok {
			return
		}
		expanded[source] = struct{}{}

		node, ok := e.graph.Node(source)
		if !ok {
			return
		}
		for _, id := range node.Edges {
			child, ok := e.graph.Node(id)
			if !ok {
				e.corrupted(source, id)
				continue
			}
			if live.Has(id) {
				continue
			}
			if child.Type == domain.TypeInternalPortal {
				walk(id)
				continue
			}
			upcoming[id] = struct{}{}
		}
	}
	for _, seed := range seeds {
		walk(seed)
	}

	ids := make([]string, 0, len(upcoming))
	for id := range upcoming {
		ids = append(ids, id)
	}
	return e.graph.Sequence(ids)
}

// IsFinalCard reports whether exactly one card remains.
func (e *Engine) IsFinalCard() bool {
	return len(e.UpcomingCardIds()) == 1
}

// IsComplete reports whether no card remains.
func (e *Engine) IsComplete() bool {
	return len(e.UpcomingCardIds()) == 0
}

// HasPaid reports whether a payment was made by the user. Once it has,
// going back is no longer allowed.
func (e *Engine) HasPaid() bool {
	for id, b := range e.ledger.Breadcrumbs().All() {
		if e.graph.TypeOf(id) == domain.TypePay && !b.Auto {
			return true
		}
	}
	return false
}

// PreviousCard returns the manually answered card preceding current, or ""
// at the start. current may be "" once the flow is complete.
func (e *Engine) PreviousCard(current string) string {
	var goBackable []string
	for id, b := range e.ledger.Breadcrumbs().All() {
		if !b.Auto {
			goBackable = append(goBackable, id)
		}
	}

	if changed := e.ledger.ChangedNode(); changed != "" && changed == current {
		return ""
	}
	if len(goBackable) == 0 {
		return ""
	}
	if current == "" || len(e.ledger.Pending()) > 0 || len(goBackable) == 1 {
		return goBackable[len(goBackable)-1]
	}

	sorted := e.graph.Sequence(append(goBackable, current))
	if idx := slices.Index(sorted, current); idx > 0 {
		return sorted[idx-1]
	}
	return ""
}

// CanGoBack reports whether the user may navigate back from current.
func (e *Engine) CanGoBack(current string) bool {
	return current != "" && e.graph.Has(current) && e.PreviousCard(current) != "" && !e.HasPaid()
}

// Back retreats from current to the previous card and returns its id.
func (e *Engine) Back(ctx context.Context, current string) (string, error) {
	if e.HasPaid() {
		return "", domain.ErrBackNavigationLocked
	}
	prev := e.PreviousCard(current)
	if prev == "" {
		return "", nil
	}
	if err := e.Record(ctx, prev, nil); err != nil {
		return "", err
	}
	return prev, nil
}

// AutoAnswerable returns the answer the engine can record for id without
// asking the user. Nodes pending edit are never inferred; they must be
// confirmed again.
func (e *Engine) AutoAnswerable(id string) (domain.UserData, bool) {
	node, ok := e.graph.Node(id)
	if !ok || slices.Contains(e.ledger.Pending(), id) {
		return domain.UserData{}, false
	}
	live := e.ledger.Breadcrumbs()

	switch {
	case node.Type.IsDecision():
		if answers := e.resolver.Options(id, live, e.ComputePassport()); len(answers) > 0 {
			return domain.UserData{Answers: answers, Auto: true}, true
		}
	case node.Type == domain.TypeFilter:
		if answer, ok := e.resolver.Filter(id, live); ok {
			return domain.UserData{Answers: []string{answer}, Auto: true}, true
		}
	case node.Type.IsAutoAnswerableInput():
		if data, ok := e.resolver.Input(id, live); ok {
			return domain.UserData{Data: data, Auto: true}, true
		}
	case node.Type == domain.TypeSetValue:
		return domain.UserData{Auto: true}, true
	}
	return domain.UserData{}, false
}

// Advance auto-answers upcoming cards until one needs the user, and returns
// its id ("" once the flow is complete).
func (e *Engine) Advance(ctx context.Context) (string, error) {
	for {
		id := e.currentCard
		if id == "" {
			return "", nil
		}
		ud, ok := e.AutoAnswerable(id)
		if !ok {
			return id, nil
		}
		if err := e.Record(ctx, id, &ud); err != nil {
			return "", err
		}
	}
}

func (e *Engine) corrupted(nodeID, ref string) {
	e.logger.Warn("skipping corrupted graph reference", "node_id", nodeID, "ref", ref)
	if e.hooks.OnCorruptedReference != nil {
		e.hooks.OnCorruptedReference(context.Background(), &domain.ReferenceEvent{
			EventBase: domain.EventBase{
				Timestamp: e.now(),
				Type:      domain.EventCorruptedReference,
				SessionID: e.sessionID,
			},
			NodeID: nodeID,
			Ref:    ref,
		})
	}
}
