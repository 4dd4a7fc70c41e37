package runtime

import (
	"slices"

	"github.com/aretw0/planflow/pkg/domain"
)

// Sections is the ordered list of Section nodes of a flow: those on the
// root and those directly inside an internal portal on the root.
type Sections struct {
	graph *domain.Graph
	ids   []string
}

// NewSections collects the sections of g.
func NewSections(g *domain.Graph) *Sections {
	s := &Sections{graph: g}
	root, ok := g.Node(domain.RootID)
	if !ok {
		return s
	}
	for _, id := range root.Edges {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		switch node.Type {
		case domain.TypeSection:
			s.ids = append(s.ids, id)
		case domain.TypeInternalPortal:
			for _, child := range node.Edges {
				if g.TypeOf(child) == domain.TypeSection {
					s.ids = append(s.ids, child)
				}
			}
		}
	}
	return s
}

// IDs returns the section ids in flow order.
func (s *Sections) IDs() []string { return slices.Clone(s.ids) }

// Count returns the number of sections.
func (s *Sections) Count() int { return len(s.ids) }

// Title returns the title of the section at the 1-based index.
func (s *Sections) Title(index int) string {
	if index < 1 || index > len(s.ids) {
		return ""
	}
	node, _ := s.graph.Node(s.ids[index-1])
	return node.Title()
}

func (s *Sections) weight(id string) float64 {
	node, ok := s.graph.Node(id)
	if !ok {
		return domain.SectionMedium.Weight()
	}
	if d, ok := node.Data.(*domain.SectionData); ok {
		return d.Length.Weight()
	}
	return domain.SectionMedium.Weight()
}

// Progress computes weighted completion for the 1-based section index:
// Completed is the share of every earlier section, Current the share of
// the section at index.
func (s *Sections) Progress(index int) (domain.Progress, bool) {
	if len(s.ids) == 0 || index < 1 || index > len(s.ids) {
		return domain.Progress{}, false
	}
	var total, completed float64
	for i, id := range s.ids {
		w := s.weight(id)
		total += w
		if i < index-1 {
			completed += w
		}
	}
	return domain.Progress{
		Completed: completed / total * 100,
		Current:   s.weight(s.ids[index-1]) / total * 100,
	}, true
}

// indexFor returns the 1-based index of the most recently reached section.
// A section that is the current card counts as reached.
func (s *Sections) indexFor(bc *domain.Breadcrumbs, current string) int {
	if len(s.ids) == 0 {
		return 0
	}
	ids := bc.IDs()
	if current != "" && s.graph.TypeOf(current) == domain.TypeSection {
		ids = append(ids, current)
	}
	for i := len(ids) - 1; i >= 0; i-- {
		if idx := slices.Index(s.ids, ids[i]); idx >= 0 {
			return idx + 1
		}
	}
	return 1
}

// SectionNodes returns the ordered section ids.
func (e *Engine) SectionNodes() []string { return e.sections.IDs() }

// HasSections reports whether the flow is divided into sections.
func (e *Engine) HasSections() bool { return e.sections.Count() > 0 }

// SectionCount returns the number of sections.
func (e *Engine) SectionCount() int { return e.sections.Count() }

// CurrentSection returns the 1-based index and title of the section the
// user is in, or 0 when the flow has no sections.
func (e *Engine) CurrentSection() (int, string) {
	return e.sectionIndex, e.sections.Title(e.sectionIndex)
}

// Progress returns the weighted section progress.
func (e *Engine) Progress() (domain.Progress, bool) {
	return e.sections.Progress(e.sectionIndex)
}

// BreadcrumbsBySection splits the live ledger into one chunk per section,
// each starting at its Section breadcrumb. Sections not yet reached yield
// empty chunks.
func (e *Engine) BreadcrumbsBySection() []*domain.Breadcrumbs {
	if !e.HasSections() {
		return nil
	}
	live := e.ledger.Breadcrumbs()
	ids := live.IDs()

	chunks := make([]*domain.Breadcrumbs, 0, e.sections.Count())
	for i, sid := range e.sections.ids {
		chunk := &domain.Breadcrumbs{}
		start := slices.Index(ids, sid)
		if start >= 0 {
			end := len(ids)
			if i+1 < len(e.sections.ids) {
				if next := slices.Index(ids, e.sections.ids[i+1]); next >= 0 {
					end = next
				}
			}
			for _, id := range ids[start:end] {
				b, _ := live.Get(id)
				chunk.Set(id, b)
			}
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// SectionForNode returns the id of the section whose breadcrumbs include id.
func (e *Engine) SectionForNode(id string) (string, bool) {
	for i, chunk := range e.BreadcrumbsBySection() {
		if chunk.Has(id) {
			return e.sections.ids[i], true
		}
	}
	return "", false
}
