package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"
)

// Breadcrumb records that a node has been answered.
type Breadcrumb struct {
	// Answers holds the selected option ids of a decision node.
	Answers []string `json:"answers,omitempty"`
	// Data is the free-form payload written by input nodes.
	Data map[string]any `json:"data,omitempty"`
	// Override keeps the values a user replaced through an override.
	Override map[string]any `json:"override,omitempty"`
	// Auto is true when the answer was inferred rather than shown.
	Auto bool `json:"auto"`
	// CreatedAt and Seq let consumers reconstruct recording order after
	// the ledger has been pruned and re-populated.
	CreatedAt time.Time `json:"createdAt"`
	Seq       int       `json:"seq"`
}

// SameAnswer reports whether b and other hold the same user supplied content,
// ignoring CreatedAt and Seq.
func (b Breadcrumb) SameAnswer(other Breadcrumb) bool {
	if b.Auto != other.Auto || !slices.Equal(b.Answers, other.Answers) {
		return false
	}
	return sameMap(b.Data, other.Data) && sameMap(b.Override, other.Override)
}

func sameMap(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize round-trips through JSON so that values decoded from a store
// ([]any, float64) compare equal to freshly recorded ones ([]string, int).
func normalize(m map[string]any) any {
	raw, err := json.Marshal(m)
	if err != nil {
		return m
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return m
	}
	return out
}

// Clone returns a copy that shares no slices or top level maps with b.
func (b Breadcrumb) Clone() Breadcrumb {
	b.Answers = slices.Clone(b.Answers)
	if b.Data != nil {
		b.Data = maps.Clone(b.Data)
	}
	if b.Override != nil {
		b.Override = maps.Clone(b.Override)
	}
	return b
}

// UserData is the payload submitted for a node.
type UserData struct {
	Answers  []string       `json:"answers,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Override map[string]any `json:"override,omitempty"`
	Auto     bool           `json:"auto,omitempty"`
}

// Breadcrumbs maps node ids to breadcrumbs while remembering insertion
// order. Canonical order is recomputed from the graph; insertion order only
// matters while nodes are pending edit. The zero value is ready to use.
type Breadcrumbs struct {
	order []string
	items map[string]Breadcrumb
}

// NewBreadcrumbs builds a ledger from ids in the given order.
func NewBreadcrumbs(ids []string, items map[string]Breadcrumb) *Breadcrumbs {
	bc := &Breadcrumbs{}
	for _, id := range ids {
		if b, ok := items[id]; ok {
			bc.Set(id, b)
		}
	}
	return bc
}

// Len returns the number of breadcrumbs.
func (bc *Breadcrumbs) Len() int {
	if bc == nil {
		return 0
	}
	return len(bc.order)
}

// Get returns the breadcrumb for id.
func (bc *Breadcrumbs) Get(id string) (Breadcrumb, bool) {
	if bc == nil || bc.items == nil {
		return Breadcrumb{}, false
	}
	b, ok := bc.items[id]
	return b, ok
}

// Has reports whether id has a breadcrumb.
func (bc *Breadcrumbs) Has(id string) bool {
	_, ok := bc.Get(id)
	return ok
}

// Set stores b under id. A new id is appended; an existing id keeps its position.
func (bc *Breadcrumbs) Set(id string, b Breadcrumb) {
	if bc.items == nil {
		bc.items = make(map[string]Breadcrumb)
	}
	if _, ok := bc.items[id]; !ok {
		bc.order = append(bc.order, id)
	}
	bc.items[id] = b
}

// Delete removes id and reports whether it was present.
func (bc *Breadcrumbs) Delete(id string) bool {
	if bc == nil || bc.items == nil {
		return false
	}
	if _, ok := bc.items[id]; !ok {
		return false
	}
	delete(bc.items, id)
	bc.order = slices.DeleteFunc(bc.order, func(s string) bool { return s == id })
	return true
}

// IDs returns ids in insertion order.
func (bc *Breadcrumbs) IDs() []string {
	if bc == nil {
		return nil
	}
	return slices.Clone(bc.order)
}

// All iterates in insertion order.
func (bc *Breadcrumbs) All() func(yield func(string, Breadcrumb) bool) {
	return func(yield func(string, Breadcrumb) bool) {
		if bc == nil {
			return
		}
		for _, id := range bc.order {
			if !yield(id, bc.items[id]) {
				return
			}
		}
	}
}

// Clone returns a deep enough copy for independent mutation.
func (bc *Breadcrumbs) Clone() *Breadcrumbs {
	out := &Breadcrumbs{}
	for id, b := range bc.All() {
		out.Set(id, b.Clone())
	}
	return out
}

// Merge copies every entry of other into bc, other winning on conflicts.
func (bc *Breadcrumbs) Merge(other *Breadcrumbs) {
	for id, b := range other.All() {
		bc.Set(id, b)
	}
}

// Sorted returns a copy ordered canonically against g.
func (bc *Breadcrumbs) Sorted(g *Graph) *Breadcrumbs {
	out := &Breadcrumbs{}
	for _, id := range g.Sequence(bc.IDs()) {
		b, _ := bc.Get(id)
		out.Set(id, b)
	}
	return out
}

// MarshalJSON encodes an object whose key order is the insertion order.
func (bc *Breadcrumbs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for id, b := range bc.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("breadcrumb %s: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the key order of the document.
func (bc *Breadcrumbs) UnmarshalJSON(data []byte) error {
	*bc = Breadcrumbs{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("breadcrumbs: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		id, ok := tok.(string)
		if !ok {
			return fmt.Errorf("breadcrumbs: expected key, got %v", tok)
		}
		var b Breadcrumb
		if err := dec.Decode(&b); err != nil {
			return fmt.Errorf("breadcrumb %s: %w", id, err)
		}
		bc.Set(id, b)
	}
	_, err = dec.Token()
	return err
}
