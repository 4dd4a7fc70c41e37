package autoanswer

import "github.com/aretw0/planflow/pkg/domain"

// ContactKey is the data key under which a ContactInput stores its value.
func ContactKey(fn string) string {
	return "_contact." + fn
}

// Input returns the data to record for a plain input node when an earlier,
// manually answered node of the same type and fn already holds a value.
func (r *Resolver) Input(id string, bc *domain.Breadcrumbs) (map[string]any, bool) {
	node, ok := r.graph.Node(id)
	if !ok || !node.Type.IsAutoAnswerableInput() {
		return nil, false
	}
	fn := node.Fn()
	if fn == "" {
		return nil, false
	}

	for _, prevID := range r.graph.Sequence(bc.IDs()) {
		if prevID == id {
			continue
		}
		prev, ok := r.graph.Node(prevID)
		if !ok || prev.Type != node.Type || prev.Fn() != fn {
			continue
		}
		crumb, _ := bc.Get(prevID)
		if crumb.Auto {
			continue
		}

		if node.Type == domain.TypeContactInput {
			key := ContactKey(fn)
			contact, ok := crumb.Data[key].(map[string]any)
			if !ok || contact[fn] == nil {
				continue
			}
			return map[string]any{key: map[string]any{fn: contact[fn]}}, true
		}
		val, ok := crumb.Data[fn]
		if !ok || val == nil {
			continue
		}
		return map[string]any{fn: val}, true
	}
	return nil, false
}
