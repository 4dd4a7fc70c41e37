package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/planflow/pkg/domain"
)

// Loader implements ports.FlowLoader over graphs registered in memory.
type Loader struct {
	mu    sync.RWMutex
	flows map[string]*domain.Graph
}

// NewLoader creates a loader seeded with flows.
func NewLoader(flows map[string]*domain.Graph) *Loader {
	l := &Loader{flows: make(map[string]*domain.Graph, len(flows))}
	for name, g := range flows {
		l.flows[name] = g
	}
	return l
}

// NewFromDocuments decodes serialised flow documents, keyed by document name.
func NewFromDocuments(docs ...domain.Document) (*Loader, error) {
	l := NewLoader(nil)
	for _, doc := range docs {
		if doc.Name == "" {
			return nil, fmt.Errorf("flow document missing name")
		}
		g, err := doc.Graph()
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", doc.Name, err)
		}
		l.Add(doc.Name, g)
	}
	return l, nil
}

// Add registers or replaces a flow.
func (l *Loader) Add(name string, g *domain.Graph) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flows[name] = g
}

// Load returns the named graph.
func (l *Loader) Load(_ context.Context, name string) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.flows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, name)
	}
	return g, nil
}

// List returns every flow name in lexical order.
func (l *Loader) List(_ context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.flows))
	for name := range l.flows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
