package supervisor

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// singletonGuard prevents two instances of the same role (two primaries, or
// two secondaries) from racing to register themselves against the same
// lockfile directory. It is distinct from the per-descriptor fcntl beacon
// in internal/lockfile: that lock is the liveness signal peers watch for;
// this one only ever guards this process's own startup and is released when
// the process exits, by the OS, exactly like the flock-as-liveness-beacon
// pattern in other daemon supervisors (grounded on
// other_examples/042c7454_ztbrown-gastown__internal-daemon-daemon.go.go and
// other_examples/995c36de_leonletto-thrum__internal-daemon-lifecycle.go.go).
type singletonGuard struct {
	fl *flock.Flock
}

func newSingletonGuard(dir string, role Role) *singletonGuard {
	path := filepath.Join(dir, "procmon."+role.String()+".guard")
	return &singletonGuard{fl: flock.New(path)}
}

// acquire takes a non-blocking guard lock, failing if another process
// already holds it (i.e. this role is already running against dir).
func (g *singletonGuard) acquire() error {
	ok, err := g.fl.TryLock()
	if err != nil {
		return fmt.Errorf("supervisor: guard lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("supervisor: another instance already holds the %s guard", filepath.Base(g.fl.Path()))
	}
	return nil
}
