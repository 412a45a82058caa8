// Control implements the CLI control plane (C7): short-lived operations
// that never attach to the running supervisor, acting purely through
// lockfile reads/writes/unlinks (spec §4.8). The same functions back both
// the cobra CLI verbs and the per-process monitor's dependent-restart
// propagation (spec §4.6), so a propagated restart and an operator-issued
// `-r` are indistinguishable to the target descriptor.
package manager

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/metrics"
)

// SupervisorIDs are the two reserved lockfile ids for the mutually
// monitoring pair (spec §6).
const (
	PrimaryID   = "procmon1"
	SecondaryID = "procmon2"
)

// Entry is one row of the `list` operation's output.
type Entry struct {
	ID        string
	PID       int32
	RunCount  uint64
	StartTime int64
	Status    lockfile.StatusKind
	Exec      string
}

// List enumerates every lockfile under dir and reports its decoded status.
func List(dir string) ([]Entry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "procmon.*"))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(matches))
	for _, path := range matches {
		id := strings.TrimPrefix(filepath.Base(path), "procmon.")
		if strings.HasSuffix(id, ".guard") {
			continue
		}
		f, err := lockfile.Open(dir, id)
		if err != nil {
			continue
		}
		rec, rerr := f.ReadRecord()
		trailer, _ := f.ReadTrailer()
		f.Close()
		if rerr != nil {
			continue
		}
		st, err := lockfile.PIDStatus(dir, id)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			ID:        id,
			PID:       rec.PID,
			RunCount:  rec.RunCount,
			StartTime: rec.StartTime,
			Status:    st.Kind,
			Exec:      string(trailer),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Start clears the terminate field, letting a suspended monitor loop
// proceed to spawn on its next poll.
func Start(dir, id string) error {
	f, err := lockfile.Open(dir, id)
	if err != nil {
		return fmt.Errorf("start %s: %w", id, err)
	}
	defer f.Close()
	return f.SetTerminate(0)
}

// Restart reads the lockfile's current PID and kills it; the owning
// monitor loop observes the death and respawns.
func Restart(dir, id string) error {
	f, err := lockfile.Open(dir, id)
	if err != nil {
		return fmt.Errorf("restart %s: %w", id, err)
	}
	rec, err := f.ReadRecord()
	f.Close()
	if err != nil {
		return fmt.Errorf("restart %s: %w", id, err)
	}
	if rec.PID <= 0 {
		return nil
	}
	if err := syscall.Kill(int(rec.PID), syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("restart %s: %w", id, err)
	}
	return nil
}

// Terminate suspends monitoring: writes the SUSPEND sentinel, resets
// starttime, and kills the current child. The monitor loop observes
// `suspended` and enters poll-sleep without spawning a replacement.
func Terminate(dir, id string) error {
	if err := terminateWith(dir, id, lockfile.Suspend); err != nil {
		return err
	}
	metrics.IncTerminate(id, "suspend")
	return nil
}

// TerminateAndDelete aborts monitoring entirely: writes the ABORT
// sentinel, kills the current child, and the monitor loop removes the
// lockfile and exits its task.
func TerminateAndDelete(dir, id string) error {
	if err := terminateWith(dir, id, lockfile.Abort); err != nil {
		return err
	}
	metrics.IncTerminate(id, "abort")
	return nil
}

func terminateWith(dir, id string, word uint32) error {
	f, err := lockfile.Open(dir, id)
	if err != nil {
		return fmt.Errorf("terminate %s: %w", id, err)
	}
	rec, rerr := f.ReadRecord()
	if err := f.SetTerminate(word); err != nil {
		f.Close()
		return fmt.Errorf("terminate %s: %w", id, err)
	}
	if err := f.ResetStartTime(); err != nil {
		f.Close()
		return fmt.Errorf("terminate %s: %w", id, err)
	}
	f.Close()
	if rerr == nil && rec.PID > 0 {
		_ = syscall.Kill(int(rec.PID), syscall.SIGKILL)
	}
	return nil
}

// ShutdownAll terminates every non-supervisor process, then the primary
// and the secondary supervisor lockfiles in turn, then unlinks both. The
// original procmon.c issues the terminate for procmon1 twice; this is the
// corrected sequence (spec §9).
func ShutdownAll(dir string) error {
	entries, err := List(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == PrimaryID || e.ID == SecondaryID {
			continue
		}
		if err := TerminateAndDelete(dir, e.ID); err != nil {
			_ = lockfile.Remove(dir, e.ID)
		}
	}
	time.Sleep(time.Second)

	_ = TerminateAndDelete(dir, PrimaryID)
	_ = TerminateAndDelete(dir, SecondaryID)
	time.Sleep(time.Second)

	_ = lockfile.Remove(dir, PrimaryID)
	_ = lockfile.Remove(dir, SecondaryID)
	return nil
}
