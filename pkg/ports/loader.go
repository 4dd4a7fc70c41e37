package ports

import (
	"context"

	"github.com/aretw0/planflow/pkg/domain"
)

// FlowLoader defines how the engine retrieves flow graphs.
// This allows the storage layer (files, memory, a remote editor) to be decoupled.
type FlowLoader interface {
	// Load returns the graph of the named flow.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, name string) (*domain.Graph, error)

	// List returns the names of every available flow.
	List(ctx context.Context) ([]string, error)
}
