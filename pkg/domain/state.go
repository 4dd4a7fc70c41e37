package domain

import "time"

// Snapshot is the persisted form of a navigation session. It is plain,
// JSON-serializable data; breadcrumb key order is preserved.
type Snapshot struct {
	SessionID         string       `json:"sessionId"`
	Flow              string       `json:"flow,omitempty"`
	Breadcrumbs       *Breadcrumbs `json:"breadcrumbs"`
	CachedBreadcrumbs *Breadcrumbs `json:"cachedBreadcrumbs,omitempty"`
	PendingEdit       []string     `json:"nodesPendingEdit,omitempty"`
	ChangedNode       string       `json:"changedNode,omitempty"`
	Restore           bool         `json:"restore,omitempty"`
	Passport          *Passport    `json:"passport,omitempty"`
	Progress          *Progress    `json:"progress,omitempty"`
	UpdatedAt         time.Time    `json:"updatedAt"`

	// Sealed holds the whole snapshot encrypted when the store encrypts at
	// rest. Every other field except SessionID, Flow and UpdatedAt is empty then.
	Sealed string `json:"sealed,omitempty"`
}

// NewSnapshot returns an empty snapshot for sessionID.
func NewSnapshot(sessionID string) *Snapshot {
	return &Snapshot{
		SessionID:         sessionID,
		Breadcrumbs:       &Breadcrumbs{},
		CachedBreadcrumbs: &Breadcrumbs{},
	}
}
