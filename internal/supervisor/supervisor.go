// Package supervisor implements the supervisor-of-supervisor pairing (C6):
// on startup, a procmon instance writes its own lockfile under one of the
// two reserved ids (procmon1/procmon2), spawns a child invocation of
// itself with the opposite role flag, and hands that peer id to a normal
// manager.Monitor so the same C5 loop that watches a declared process also
// watches the sibling supervisor (spec §4.7).
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/manager"
	"github.com/loykin/procmon/internal/process"
)

// Role is which half of the mutually-monitoring pair this instance plays.
type Role int

const (
	Primary Role = iota
	Secondary
)

func (r Role) String() string {
	if r == Primary {
		return manager.PrimaryID
	}
	return manager.SecondaryID
}

// id returns this role's own reserved lockfile id, and peer returns the
// other's.
func (r Role) id() string { return r.String() }

func (r Role) peer() string {
	if r == Primary {
		return manager.SecondaryID
	}
	return manager.PrimaryID
}

func (r Role) flag() string {
	if r == Primary {
		return "-F"
	}
	return "-f"
}

// Pair owns one instance's half of the supervisor-of-supervisor wiring:
// its own lockfile registration, the spawned peer process, and the
// manager.Monitor task watching that peer.
type Pair struct {
	Role   Role
	Dir    string
	Logger *slog.Logger

	guard *singletonGuard
}

// New builds a Pair for the given role.
func New(role Role, dir string, logger *slog.Logger) *Pair {
	return &Pair{Role: role, Dir: dir, Logger: logger, guard: newSingletonGuard(dir, role)}
}

// RegisterSelf first takes this role's singleton guard (refusing to start a
// second primary or secondary against the same lockfile directory), then
// writes this instance's own lockfile under its reserved id, recording its
// own PID so the peer's monitor can probe liveness the same way it would
// for any declared process.
func (p *Pair) RegisterSelf() error {
	if err := p.guard.acquire(); err != nil {
		return err
	}
	lf, _, err := lockfile.MakeLock(p.Dir, p.Role.id(), int32(os.Getpid()), []byte(selfExec()))
	if err != nil {
		return fmt.Errorf("supervisor: register self (%s): %w", p.Role.id(), err)
	}
	defer lf.Close()
	if err := lf.SetWriteLock(lockfile.TryNow); err != nil {
		return fmt.Errorf("supervisor: lock self (%s): %w", p.Role.id(), err)
	}
	return nil
}

// SpawnPeer launches a child invocation of this same binary with the
// opposite role flag and the same config path, detached into its own
// session exactly as manager.Monitor.spawn starts a declared child.
func (p *Pair) SpawnPeer(configPath string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("supervisor: executable path: %w", err)
	}
	role := opposite(p.Role)
	cmd := exec.Command(executable, role.flag(), configPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("supervisor: spawn peer: %w", err)
	}
	// The peer writes its own lockfile via its own RegisterSelf call on
	// startup; this instance does not wait on it directly — the watch
	// monitor below tolerates the lockfile not existing yet via the
	// retrying Open it shares with every other descriptor.
	go func() { _, _ = cmd.Process.Wait() }()
	return nil
}

// WatchPeer starts this instance's C5 monitor task against the peer's
// reserved id, using the ordinary manager.Monitor/Descriptor machinery so
// a dead peer is restarted exactly the way any monitored process would be.
// The watch descriptor is synthetic: it has no config-file entry, carries
// no dependents, and is always Monitored so its own-restart path spawns a
// fresh peer invocation on death.
func (p *Pair) WatchPeer(ctx context.Context, configPath string) *process.Descriptor {
	executable, _ := os.Executable()
	role := opposite(p.Role)
	watchExec := fmt.Sprintf("%s %s %s", executable, role.flag(), configPath)
	d := process.NewDescriptor(process.Spec{
		ID:        p.Role.peer(),
		Exec:      watchExec,
		Monitored: true,
		Verbose:   p.Logger != nil,
	})
	m := manager.NewMonitor(p.Dir, p.Logger)
	m.Launch(ctx, d)
	return d
}

// InstallTerminationHandler logs "abnormal termination" and exits 1 on
// SIGTERM/SIGINT, per spec §7: the supervisor attempts no graceful shutdown
// of its children from the signal path, relying on the peer supervisor to
// restart this instance (spec.md "Fatal signals", SPEC_FULL.md C.3).
func InstallTerminationHandler(logger *slog.Logger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-ch
		if logger != nil {
			logger.Error("abnormal termination", "signal", sig.String())
		}
		os.Exit(1)
	}()
}

func opposite(r Role) Role {
	if r == Primary {
		return Secondary
	}
	return Primary
}

func selfExec() string {
	exe, err := os.Executable()
	if err != nil {
		return "procmon"
	}
	return exe
}
