package process

import (
	"strings"
	"testing"
)

func buildTable(t *testing.T, specs ...Spec) *Table {
	t.Helper()
	tbl := NewTable()
	for _, s := range specs {
		if err := tbl.Add(NewDescriptor(s)); err != nil {
			t.Fatalf("Add(%s): %v", s.ID, err)
		}
	}
	return tbl
}

func TestLinkDependenciesBuildsBidirectionalEdges(t *testing.T) {
	tbl := buildTable(t,
		Spec{ID: "A", Exec: "/bin/true"},
		Spec{ID: "B", Exec: "/bin/true", Depends: []string{"A"}},
	)
	if err := LinkDependencies(tbl); err != nil {
		t.Fatalf("LinkDependencies: %v", err)
	}
	a, _ := tbl.Get("A")
	b, _ := tbl.Get("B")
	if len(b.Parents) != 1 || b.Parents[0] != a {
		t.Fatalf("B.Parents = %v, want [A]", b.Parents)
	}
	if len(a.Children) != 1 || a.Children[0] != b {
		t.Fatalf("A.Children = %v, want [B]", a.Children)
	}
}

func TestLinkDependenciesRejectsSelfLoop(t *testing.T) {
	tbl := buildTable(t, Spec{ID: "A", Exec: "/bin/true", Depends: []string{"A"}})
	if err := LinkDependencies(tbl); err == nil {
		t.Fatal("expected error for self-dependency")
	}
}

func TestLinkDependenciesRejectsMissingParent(t *testing.T) {
	tbl := buildTable(t, Spec{ID: "A", Exec: "/bin/true", Depends: []string{"ghost"}})
	err := LinkDependencies(tbl)
	if err == nil {
		t.Fatal("expected error for missing parent")
	}
	// spec §4.3 step 1: the diagnostic must name both the descriptor and
	// the missing parent.
	if !strings.Contains(err.Error(), "A") || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("error = %q, want it to name both descriptor %q and parent %q", err.Error(), "A", "ghost")
	}
}

func TestDetectCyclesRejectsCycle(t *testing.T) {
	tbl := buildTable(t,
		Spec{ID: "A", Exec: "/bin/true", Depends: []string{"B"}},
		Spec{ID: "B", Exec: "/bin/true", Depends: []string{"A"}},
	)
	a, _ := tbl.Get("A")
	b, _ := tbl.Get("B")
	a.Parents = append(a.Parents, b)
	b.Children = append(b.Children, a)
	b.Parents = append(b.Parents, a)
	a.Children = append(a.Children, b)

	if err := DetectCycles(tbl); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestRunnableRequiresParentsRunningAndNotLaunched(t *testing.T) {
	tbl := buildTable(t,
		Spec{ID: "A", Exec: "/bin/true"},
		Spec{ID: "B", Exec: "/bin/true", Depends: []string{"A"}},
	)
	if err := LinkDependencies(tbl); err != nil {
		t.Fatalf("LinkDependencies: %v", err)
	}
	a, _ := tbl.Get("A")
	b, _ := tbl.Get("B")

	if !Runnable(a) {
		t.Fatal("A should be runnable: no parents, not launched")
	}
	if Runnable(b) {
		t.Fatal("B should not be runnable: parent A not RUNNING")
	}

	a.SetState(Running)
	if !Runnable(b) {
		t.Fatal("B should be runnable once A is RUNNING")
	}

	b.MarkLaunched()
	if Runnable(b) {
		t.Fatal("B should not be runnable once launched")
	}
}

func TestMaxParentRuncount(t *testing.T) {
	tbl := buildTable(t,
		Spec{ID: "A", Exec: "/bin/true"},
		Spec{ID: "B", Exec: "/bin/true"},
		Spec{ID: "C", Exec: "/bin/true", Depends: []string{"A", "B"}},
	)
	if err := LinkDependencies(tbl); err != nil {
		t.Fatalf("LinkDependencies: %v", err)
	}
	a, _ := tbl.Get("A")
	b, _ := tbl.Get("B")
	c, _ := tbl.Get("C")

	if got := MaxParentRuncount(c); got != 0 {
		t.Fatalf("MaxParentRuncount = %d, want 0", got)
	}
	a.SetRunCount(2)
	b.SetRunCount(5)
	if got := MaxParentRuncount(c); got != 5 {
		t.Fatalf("MaxParentRuncount = %d, want 5", got)
	}
}
