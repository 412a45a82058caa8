package process

import (
	"fmt"
	"sync"
)

// Table is the in-memory registry of declared descriptors, keyed by id
// (spec §4.2). Diagnostics iterate in declaration order; graph walks use
// the Parents/Children edges, not this order.
type Table struct {
	mu    sync.Mutex
	byID  map[string]*Descriptor
	order []string
}

func NewTable() *Table {
	return &Table{byID: make(map[string]*Descriptor)}
}

// Add registers d, failing if its id is already present or empty.
func (t *Table) Add(d *Descriptor) error {
	if d.Spec.ID == "" {
		return &ConfigError{Reason: "missing id"}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byID[d.Spec.ID]; exists {
		return fmt.Errorf("config: duplicate id %q", d.Spec.ID)
	}
	t.byID[d.Spec.ID] = d
	t.order = append(t.order, d.Spec.ID)
	return nil
}

func (t *Table) Get(id string) (*Descriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.byID[id]
	return d, ok
}

// All returns every descriptor in declaration order.
func (t *Table) All() []*Descriptor {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Descriptor, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byID)
}
