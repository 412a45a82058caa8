package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/logger"
	"github.com/loykin/procmon/internal/metrics"
	"github.com/loykin/procmon/internal/process"
)

// postSpawnSettle is the delay the parent task sleeps after spawning a
// monitored child, giving the child time to install its own lockfile write
// lock before the parent starts waiting on it (spec §4.5 step 4).
const postSpawnSettle = 500 * time.Millisecond

// deadlockPollInterval is the fallback poll period when the kernel reports
// EDEADLK while waiting on a peer's lock (spec §4.1).
const deadlockPollInterval = time.Second

// suspendPollInterval is the poll period while a descriptor's lockfile
// reports `suspended` (spec §4.5 step 2).
const suspendPollInterval = time.Second

// Monitor runs the per-descriptor monitor task (C5): spawn, death
// detection via the lockfile advisory lock, restart, and dependent-restart
// propagation.
type Monitor struct {
	Dir    string
	Logger *slog.Logger

	// LogDir, when set, routes each child's stdout/stderr through a
	// rotated per-process file (internal/logger.Config.Writers) instead of
	// the supervisor's own stdout/stderr. Empty means "inherit."
	LogDir string

	selfOnce sync.Once
	selfExe  string
	selfErr  error
}

func NewMonitor(dir string, log *slog.Logger) *Monitor {
	return &Monitor{Dir: dir, Logger: log}
}

// selfExecutable resolves and caches the path to this procmon binary, used
// to re-exec it as the lockexec trampoline for monitored spawns.
func (m *Monitor) selfExecutable() (string, error) {
	m.selfOnce.Do(func() {
		m.selfExe, m.selfErr = os.Executable()
	})
	return m.selfExe, m.selfErr
}

// Launch spawns a descriptor's monitor task (InitProcess, spec §4.4/§4.5).
// It is used both by the start engine's initial sweep and by dependent-
// restart propagation re-initializing a one-shot descriptor.
func (m *Monitor) Launch(ctx context.Context, d *process.Descriptor) {
	d.MarkLaunched()
	d.SetState(process.Started)
	go m.loop(ctx, d)
}

func (m *Monitor) log(d *process.Descriptor, msg string, args ...any) {
	if m.Logger == nil {
		return
	}
	level := slog.LevelInfo
	if d.Spec.Verbose {
		level = slog.LevelDebug
	}
	m.Logger.Log(context.Background(), level, msg, append([]any{"id", d.Spec.ID}, args...)...)
}

func (m *Monitor) loop(ctx context.Context, d *process.Descriptor) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Step 1: suppression check for run-to-exit descriptors.
		if !d.Spec.Monitored && d.RunCount() >= process.MaxParentRuncount(d) {
			return
		}

		// Step 2: liveness/control poll (only monitored descriptors carry
		// a lockfile at all, per the §3 invariant).
		if d.Spec.Monitored {
			st, err := lockfile.PIDStatus(m.Dir, d.Spec.ID)
			if err != nil {
				m.log(d, "pid status probe failed", "error", err)
			} else {
				switch st.Kind {
				case lockfile.StatusAborted:
					_ = lockfile.Remove(m.Dir, d.Spec.ID)
					return
				case lockfile.StatusSuspended:
					time.Sleep(suspendPollInterval)
					continue
				case lockfile.StatusRunning:
					d.SetPID(st.PID)
					m.awaitLockRelease(d)
					continue
				}
			}
		}

		// Step 3: spawn.
		if delay := d.RestartDelay(); delay > 0 {
			time.Sleep(delay)
		}
		proc, err := m.spawn(d)
		if err != nil {
			m.log(d, "spawn failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		d.IncRunCount()
		metrics.IncStart(d.Spec.ID)
		m.log(d, "spawned", "pid", proc.Pid, "runcount", d.RunCount())

		// Step 4: parent path.
		if d.Spec.Monitored {
			m.propagateDependents(ctx, d)
			time.Sleep(postSpawnSettle)
			m.awaitLockRelease(d)
			_, _ = proc.Wait()
			continue
		}

		_, _ = proc.Wait()
		m.propagateDependents(ctx, d)
		return
	}
}

// spawn fork+execs the descriptor's command. For a monitored descriptor the
// lockfile header is created/updated first (spec §4.5.1), then the process
// is started via the lockexec trampoline (trampoline.go) rather than
// directly: the trampoline is what actually becomes the exec'd program (via
// syscall.Exec, same pid), and it is the one that takes the write-lock
// beacon on itself immediately before that final execve, so the lock is
// owned by the long-lived child's own process for its whole lifetime — not
// by this monitor goroutine, which fork() would not transfer it from
// anyway (see DESIGN.md and trampoline.go's doc comment). The real PID is
// only known after Start() returns, so the positional PID update happens
// after spawn.
func (m *Monitor) spawn(d *process.Descriptor) (*os.Process, error) {
	args := strings.Fields(d.Spec.Exec)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty exec for %s", d.Spec.ID)
	}

	var cmd *exec.Cmd
	if d.Spec.Monitored {
		// Disk runcount tracks d.RunCount()+1; kept in sync via the
		// caller's IncRunCount after a successful spawn.
		lf, _, err := lockfile.MakeLock(m.Dir, d.Spec.ID, 0, []byte(d.Spec.Exec))
		if err != nil {
			return nil, fmt.Errorf("makelock %s: %w", d.Spec.ID, err)
		}
		lf.Close()

		exe, err := m.selfExecutable()
		if err != nil {
			return nil, fmt.Errorf("resolve self exe for %s: %w", d.Spec.ID, err)
		}
		trampolineArgv := append([]string{LockExecMarker, m.Dir, d.Spec.ID}, args...)
		cmd = exec.Command(exe, trampolineArgv...)
	} else {
		cmd = exec.Command(args[0], args[1:]...)
	}

	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if m.LogDir != "" {
		outW, errW, err := (logger.Config{Dir: m.LogDir}).Writers(d.Spec.ID)
		if err != nil {
			return nil, fmt.Errorf("child logs %s: %w", d.Spec.ID, err)
		}
		cmd.Stdout = outW
		cmd.Stderr = errW
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	if d.Spec.Monitored {
		if lf, err := lockfile.Open(m.Dir, d.Spec.ID); err == nil {
			_ = lf.SetPID(int32(cmd.Process.Pid))
			_ = lf.Close()
		} else {
			m.log(d, "pid update after spawn failed", "error", err)
		}
	}
	d.SetPID(int32(cmd.Process.Pid))
	return cmd.Process, nil
}

// awaitLockRelease implements Monitor(id): block on the lockfile's
// advisory write lock until the owning child dies and the OS releases it,
// falling back to a poll on kernel-detected deadlock (spec §4.1).
func (m *Monitor) awaitLockRelease(d *process.Descriptor) {
	f, err := lockfile.Open(m.Dir, d.Spec.ID)
	if err != nil {
		m.log(d, "open for monitor failed", "error", err)
		return
	}
	defer f.Close()

	for {
		err := f.SetWriteLock(lockfile.WaitBlocking)
		if err == nil {
			_ = f.SetWriteLock(lockfile.Release)
			return
		}
		if errors.Is(err, lockfile.ErrDeadlock) {
			time.Sleep(deadlockPollInterval)
			continue
		}
		m.log(d, "monitor wait failed", "error", err)
		return
	}
}

// propagateDependents implements spec §4.6: after a monitored process has
// just (re)started, or a non-monitored process has just exited, restart
// every eligible child.
func (m *Monitor) propagateDependents(ctx context.Context, d *process.Descriptor) {
	for _, c := range d.Children {
		if !c.Spec.RestartOnParentDeath || c.Spec.Skip || c.State() == process.Init {
			continue
		}
		c.SetRestartDelay(d.Spec.Wait)
		if c.Spec.Monitored {
			if err := Restart(m.Dir, c.Spec.ID); err != nil {
				m.log(c, "dependent restart failed", "error", err)
			}
			metrics.IncRestart(c.Spec.ID)
			continue
		}
		m.Launch(ctx, c)
		metrics.IncRestart(c.Spec.ID)
	}
}
