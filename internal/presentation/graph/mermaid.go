package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/planflow/pkg/domain"
)

// Overlay marks session state on the rendered flow.
type Overlay struct {
	Visited     []string
	Auto        []string
	CurrentNode string
}

// GenerateMermaid renders g as a Mermaid flowchart in canonical order.
// Shapes follow the node role:
//   - Root: ((circle))
//   - Question and Checklist: {rhombus}
//   - Answer: ([stadium])
//   - Property lookups: [[subroutine]]
//   - Section: [/parallelogram/]
//   - Everything else: [rectangle]
//
// Edges to missing nodes are drawn dashed to a "missing" marker.
func GenerateMermaid(g *domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := g.Order()
	ids = append(ids, g.Unreachable(g.IDs())...)

	for _, id := range ids {
		node, ok := g.Node(id)
		if !ok {
			continue
		}
		safeID := sanitizeMermaidID(id)
		opener, closer := shape(node.Type)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(node), closer)

		for _, ref := range node.Edges {
			if !g.Has(ref) {
				fmt.Fprintf(&sb, "    %s -.-> %s_missing[\"missing: %s\"]\n", safeID, sanitizeMermaidID(ref), escape(ref))
				continue
			}
			arrow := "-->"
			if g.TypeOf(ref) == domain.TypeInternalPortal {
				arrow = "==>"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(ref))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef auto fill:#f1f8e9,stroke:#33691e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, g, overlay.Visited, "visited")
		writeClass(&sb, g, overlay.Auto, "auto")
		if overlay.CurrentNode != "" && g.Has(overlay.CurrentNode) {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}
	return sb.String()
}

// OverlayFrom builds an overlay from a live ledger.
func OverlayFrom(bc *domain.Breadcrumbs, current string) *Overlay {
	o := &Overlay{CurrentNode: current}
	for id, b := range bc.All() {
		if b.Auto {
			o.Auto = append(o.Auto, id)
		} else {
			o.Visited = append(o.Visited, id)
		}
		o.Visited = append(o.Visited, b.Answers...)
	}
	return o
}

func writeClass(sb *strings.Builder, g *domain.Graph, ids []string, class string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] || !g.Has(id) {
			continue
		}
		seen[id] = true
		fmt.Fprintf(sb, "    class %s %s;\n", sanitizeMermaidID(id), class)
	}
}

func shape(t domain.NodeType) (string, string) {
	switch t {
	case domain.TypeRoot:
		return "((", "))"
	case domain.TypeQuestion, domain.TypeChecklist, domain.TypeFilter:
		return "{", "}"
	case domain.TypeAnswer:
		return "([", "])"
	case domain.TypeFindProperty, domain.TypeDrawBoundary, domain.TypePlanningConstraints,
		domain.TypePropertyInformation, domain.TypeMapAndLabel:
		return "[[", "]]"
	case domain.TypeSection:
		return "[/", "/]"
	}
	return "[", "]"
}

func label(n *domain.Node) string {
	text := n.Title()
	if text == "" {
		text = n.ID
	}
	if v := n.Val(); v != "" && n.Type == domain.TypeAnswer {
		text += " <br/> " + v
	}
	return escape(text)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
