package manager

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/loykin/procmon/internal/lockfile"
)

// LockExecMarker is a hidden argv[1] cmd/procmon recognizes to dispatch into
// RunLockExec instead of the normal CLI. spawn uses it to re-exec the
// procmon binary itself as a trampoline: the forked child process opens its
// own lockfile and takes the write-lock beacon on itself, immediately
// before replacing its image with the real command (spec §4.5 step 3's
// "child path calls setsid ... and execvp's exec").
//
// This exists because Go's os/exec forks a new process and execs inside it
// with no hook for caller code to run in between; a lock taken by the
// parent goroutine before Start() belongs to the parent's pid and is
// dropped the moment the parent closes its descriptor, not transferred to
// the child by fork(). Only a lock taken by the same process that then
// calls execve keeps the POSIX "lock survives exec, dies with the process"
// property the liveness beacon depends on (see DESIGN.md).
const LockExecMarker = "__procmon_lockexec__"

// RunLockExec implements the trampoline. argv is [dir, id, prog, progArgs...].
// On success it never returns: syscall.Exec replaces this process's image,
// carrying the fcntl lock taken just before into the new program.
func RunLockExec(argv []string) error {
	if len(argv) < 3 {
		return fmt.Errorf("lockexec: need dir, id, prog [args...]")
	}
	dir, id := argv[0], argv[1]
	progArgv := argv[2:] // progArgv[0] is the program name execve expects as argv[0]

	f, err := lockfile.Open(dir, id)
	if err != nil {
		return fmt.Errorf("lockexec: open %s: %w", id, err)
	}
	if err := f.SetWriteLock(lockfile.TryNow); err != nil {
		return fmt.Errorf("lockexec: lock %s: %w", id, err)
	}
	// Deliberately not closed: the lock must outlive this function, carried
	// across execve by the descriptor remaining open in this process.

	path, err := exec.LookPath(progArgv[0])
	if err != nil {
		return fmt.Errorf("lockexec: %w", err)
	}
	if err := syscall.Exec(path, progArgv, os.Environ()); err != nil {
		return fmt.Errorf("execvp %s: %w", progArgv[0], err)
	}
	return nil // unreachable on success
}
