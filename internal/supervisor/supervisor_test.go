package supervisor

import (
	"testing"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/manager"
)

func TestRoleIDsMatchReservedNames(t *testing.T) {
	if Primary.String() != manager.PrimaryID {
		t.Fatalf("Primary.String() = %q, want %q", Primary.String(), manager.PrimaryID)
	}
	if Secondary.String() != manager.SecondaryID {
		t.Fatalf("Secondary.String() = %q, want %q", Secondary.String(), manager.SecondaryID)
	}
}

func TestRolePeerIsTheOppositeReservedID(t *testing.T) {
	if Primary.peer() != manager.SecondaryID {
		t.Fatalf("Primary.peer() = %q, want %q", Primary.peer(), manager.SecondaryID)
	}
	if Secondary.peer() != manager.PrimaryID {
		t.Fatalf("Secondary.peer() = %q, want %q", Secondary.peer(), manager.PrimaryID)
	}
}

func TestRegisterSelfWritesLockfileUnderOwnRole(t *testing.T) {
	dir := t.TempDir()
	p := New(Primary, dir, nil)
	if err := p.RegisterSelf(); err != nil {
		t.Fatalf("RegisterSelf: %v", err)
	}

	st, err := lockfile.PIDStatus(dir, manager.PrimaryID)
	if err != nil {
		t.Fatalf("PIDStatus: %v", err)
	}
	// The recorded PID is this test binary's own PID, which is alive, so
	// the probe must report running rather than absent.
	if st.Kind != lockfile.StatusRunning {
		t.Fatalf("status = %v, want running", st.Kind)
	}
}

func TestOppositeRoleFlip(t *testing.T) {
	if opposite(Primary) != Secondary {
		t.Fatalf("opposite(Primary) = %v, want Secondary", opposite(Primary))
	}
	if opposite(Secondary) != Primary {
		t.Fatalf("opposite(Secondary) = %v, want Primary", opposite(Secondary))
	}
}
