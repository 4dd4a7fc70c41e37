package domain

// BreadcrumbDiff lists the breadcrumbs an operation recorded or removed.
// Clients use it to patch a local copy of the ledger instead of refetching it.
type BreadcrumbDiff struct {
	// Recorded holds breadcrumbs that are new or whose answer changed.
	Recorded map[string]Breadcrumb `json:"recorded,omitempty"`
	// Removed lists ids that are no longer answered, in their old order.
	Removed []string `json:"removed,omitempty"`
}

// Diff compares two ledgers. A nil old ledger yields every breadcrumb of
// newer as recorded. It returns nil when nothing changed.
func Diff(old, newer *Breadcrumbs) *BreadcrumbDiff {
	d := &BreadcrumbDiff{}
	for id, b := range newer.All() {
		prev, ok := old.Get(id)
		if ok && prev.SameAnswer(b) {
			continue
		}
		if d.Recorded == nil {
			d.Recorded = make(map[string]Breadcrumb)
		}
		d.Recorded[id] = b
	}
	for id := range old.All() {
		if !newer.Has(id) {
			d.Removed = append(d.Removed, id)
		}
	}
	if d.IsEmpty() {
		return nil
	}
	return d
}

// IsEmpty reports whether the diff carries any change.
func (d *BreadcrumbDiff) IsEmpty() bool {
	return d == nil || (len(d.Recorded) == 0 && len(d.Removed) == 0)
}
