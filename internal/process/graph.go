package process

import "fmt"

// LinkDependencies resolves every descriptor's declared Depends ids into
// Parents/Children edges (spec §4.3). It fails closed: a missing parent or
// a self-dependency aborts linking for the whole table rather than silently
// dropping an edge.
func LinkDependencies(t *Table) error {
	for _, d := range t.All() {
		for _, parentID := range d.Spec.Depends {
			if parentID == d.Spec.ID {
				return &ConfigError{Descriptor: d.Spec.ID, Reason: "self-dependency"}
			}
			parent, ok := t.Get(parentID)
			if !ok {
				return &ConfigError{Descriptor: d.Spec.ID, Parent: parentID, Reason: "parent not found"}
			}
			d.Parents = append(d.Parents, parent)
			parent.Children = append(parent.Children, d)
		}
	}
	return nil
}

// DetectCycles rejects configurations whose dependency graph is not a DAG,
// per spec §9's recommendation (the original procmon has no such check and
// silently stalls on a cycle). Uses Kahn's algorithm so the diagnostic can
// name every descriptor left unresolved.
func DetectCycles(t *Table) error {
	indegree := make(map[string]int)
	for _, d := range t.All() {
		if _, ok := indegree[d.Spec.ID]; !ok {
			indegree[d.Spec.ID] = 0
		}
		for range d.Parents {
			indegree[d.Spec.ID]++
		}
	}

	queue := make([]*Descriptor, 0)
	for _, d := range t.All() {
		if indegree[d.Spec.ID] == 0 {
			queue = append(queue, d)
		}
	}

	visited := 0
	for len(queue) > 0 {
		d := queue[0]
		queue = queue[1:]
		visited++
		for _, c := range d.Children {
			indegree[c.Spec.ID]--
			if indegree[c.Spec.ID] == 0 {
				queue = append(queue, c)
			}
		}
	}

	if visited != t.Len() {
		var remaining []string
		for _, d := range t.All() {
			if indegree[d.Spec.ID] > 0 {
				remaining = append(remaining, d.Spec.ID)
			}
		}
		return fmt.Errorf("config: dependency cycle detected among: %v", remaining)
	}
	return nil
}

// Runnable reports whether d has not yet been launched and every parent is
// in state RUNNING (spec §4.3, the corrected definition — the original C's
// Runnable() lacks the launched guard and would re-invoke InitProcess on an
// already-started root descriptor every sweep; see DESIGN.md).
func Runnable(d *Descriptor) bool {
	if d.Launched() {
		return false
	}
	for _, p := range d.Parents {
		if p.State() != Running {
			return false
		}
	}
	return true
}

// MaxParentRuncount returns the largest RunCount among d's parents, or 0 if
// d has no parents.
func MaxParentRuncount(d *Descriptor) uint64 {
	var max uint64
	for _, p := range d.Parents {
		if rc := p.RunCount(); rc > max {
			max = rc
		}
	}
	return max
}
