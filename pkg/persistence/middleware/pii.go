package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/planflow/pkg/domain"
	"github.com/aretw0/planflow/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

// DefaultPIIPatterns match the passport and input keys that carry personal
// data in planning flows.
var DefaultPIIPatterns = []string{`^_contact`, `(?i)email`, `(?i)phone`, `(?i)address`, `^applicant\.`}

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks breadcrumb data whose keys match patterns before
// saving. Masked snapshots cannot be resumed faithfully, so this belongs in
// front of audit or export stores rather than the primary one.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := compile(patternStrings)
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func compile(patternStrings []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return patterns
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	return m.next.Save(ctx, sessionID, maskSnapshot(snap, m.patterns))
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// MaskSnapshot returns a copy of snap with personal data masked in the live
// and cached breadcrumbs and the passport. snap itself is left untouched.
func MaskSnapshot(snap *domain.Snapshot, patternStrings []string) *domain.Snapshot {
	return maskSnapshot(snap, compile(patternStrings))
}

func maskSnapshot(snap *domain.Snapshot, patterns []*regexp.Regexp) *domain.Snapshot {
	if snap == nil {
		return nil
	}
	out := *snap
	out.Breadcrumbs = maskBreadcrumbs(snap.Breadcrumbs, patterns)
	out.CachedBreadcrumbs = maskBreadcrumbs(snap.CachedBreadcrumbs, patterns)
	if snap.Passport != nil {
		p := domain.Passport{Data: deepCopyMap(snap.Passport.Data)}
		maskMap(p.Data, patterns)
		out.Passport = &p
	}
	return &out
}

func maskBreadcrumbs(bc *domain.Breadcrumbs, patterns []*regexp.Regexp) *domain.Breadcrumbs {
	if bc == nil {
		return nil
	}
	out := &domain.Breadcrumbs{}
	for id, b := range bc.All() {
		b = b.Clone()
		if b.Data != nil {
			b.Data = deepCopyMap(b.Data)
			maskMap(b.Data, patterns)
		}
		if b.Override != nil {
			b.Override = deepCopyMap(b.Override)
			maskMap(b.Override, patterns)
		}
		out.Set(id, b)
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchAny(k, patterns) {
			m[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			maskMap(sub, patterns)
		}
	}
}

func matchAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
