package testutils

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/planflow/pkg/domain"
)

// Flow is a small builder for flow graphs used across tests.
type Flow struct {
	nodes []domain.Node
}

// NewFlow starts a flow whose root points at edges.
func NewFlow(edges ...string) *Flow {
	f := &Flow{}
	return f.Add(domain.RootID, domain.TypeRoot, &domain.ContentData{}, edges...)
}

// Add appends an arbitrary node.
func (f *Flow) Add(id string, t domain.NodeType, data domain.Payload, edges ...string) *Flow {
	f.nodes = append(f.nodes, domain.Node{ID: id, Type: t, Data: data, Edges: edges})
	return f
}

// Question adds a single select node reading fn.
func (f *Flow) Question(id, fn string, edges ...string) *Flow {
	return f.Add(id, domain.TypeQuestion, &domain.DecisionData{Fn: fn, Text: id}, edges...)
}

// Checklist adds a multi select node reading fn.
func (f *Flow) Checklist(id, fn string, edges ...string) *Flow {
	return f.Add(id, domain.TypeChecklist, &domain.DecisionData{Fn: fn, Text: id}, edges...)
}

// Decision adds a decision node with explicit options.
func (f *Flow) Decision(id string, t domain.NodeType, d domain.DecisionData, edges ...string) *Flow {
	return f.Add(id, t, &d, edges...)
}

// Answer adds an option contributing val.
func (f *Flow) Answer(id, val string, edges ...string) *Flow {
	return f.Add(id, domain.TypeAnswer, &domain.AnswerData{Val: val, Text: id}, edges...)
}

// Flagged adds an option carrying flags.
func (f *Flow) Flagged(id, val string, flags []string, edges ...string) *Flow {
	return f.Add(id, domain.TypeAnswer, &domain.AnswerData{Val: val, Text: id, Flags: flags}, edges...)
}

// Input adds a plain input node of type t.
func (f *Flow) Input(id string, t domain.NodeType, fn string, edges ...string) *Flow {
	return f.Add(id, t, &domain.InputData{Fn: fn, Title: id}, edges...)
}

// Content adds a presentational node of type t.
func (f *Flow) Content(id string, t domain.NodeType, edges ...string) *Flow {
	return f.Add(id, t, &domain.ContentData{Title: id}, edges...)
}

// Graph builds the graph.
func (f *Flow) Graph() *domain.Graph {
	return domain.NewGraph(f.nodes...)
}

// Clock returns a deterministic clock that advances one second per call.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

// SetupTestDir creates a temporary directory and returns its absolute path.
// It fails the test immediately on error.
func SetupTestDir(t *testing.T) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")
	return absPath
}
