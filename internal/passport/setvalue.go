package passport

import (
	"slices"

	"github.com/aretw0/planflow/pkg/domain"
)

// ApplySetValue mutates data[sv.Fn] according to the node's operation.
// An empty operation means replace.
func ApplySetValue(data map[string]any, sv domain.SetValueData) {
	if sv.Fn == "" {
		return
	}
	previous := domain.StringsOf(data[sv.Fn])

	var next []string
	switch sv.Operation {
	case domain.OpAppend:
		next = slices.Clone(previous)
		if sv.Val != "" && !slices.Contains(next, sv.Val) {
			next = append(next, sv.Val)
		}
	case domain.OpRemoveOne:
		next = slices.DeleteFunc(slices.Clone(previous), func(v string) bool { return v == sv.Val })
	case domain.OpRemoveAll:
		next = nil
	default:
		if sv.Val != "" {
			next = []string{sv.Val}
		}
	}

	if len(next) == 0 {
		delete(data, sv.Fn)
		return
	}
	data[sv.Fn] = next
}
