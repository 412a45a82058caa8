package process

import (
	"sync"
	"time"
)

// Descriptor is the runtime record for one declared process (spec §3). Its
// identity (id, exec, dependency shape) comes from Spec; its mutable fields
// are guarded by mu, mirroring the teacher's Process type's
// mutex-per-struct convention rather than one lock per field.
type Descriptor struct {
	Spec Spec

	Parents  []*Descriptor
	Children []*Descriptor

	mu       sync.Mutex
	state    State
	pid      int32
	runCount uint64
	launched bool
}

// NewDescriptor builds a Descriptor in state INIT from a validated Spec.
func NewDescriptor(spec Spec) *Descriptor {
	return &Descriptor{Spec: spec, state: Init}
}

// Snapshot is a point-in-time, lock-free copy of a Descriptor's mutable
// fields, safe to pass to display/list code.
type Snapshot struct {
	ID       string
	Exec     string
	State    State
	PID      int32
	RunCount uint64
	Launched bool
}

func (d *Descriptor) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		ID:       d.Spec.ID,
		Exec:     d.Spec.Exec,
		State:    d.state,
		PID:      d.pid,
		RunCount: d.runCount,
		Launched: d.launched,
	}
}

func (d *Descriptor) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Descriptor) SetState(s State) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = s
}

func (d *Descriptor) PID() int32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pid
}

func (d *Descriptor) SetPID(pid int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pid = pid
}

func (d *Descriptor) RunCount() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runCount
}

func (d *Descriptor) SetRunCount(n uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runCount = n
}

// IncRunCount bumps runCount and returns the new value, mirroring the
// teacher's IncRestarts.
func (d *Descriptor) IncRunCount() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.runCount++
	return d.runCount
}

// MarkLaunched records that the start engine has called InitProcess on this
// descriptor at least once; Runnable consults this so a later sweep never
// re-launches it.
func (d *Descriptor) MarkLaunched() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.launched = true
}

func (d *Descriptor) Launched() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.launched
}

// RestartDelay reads the current restart delay. It may have been rewritten
// by a parent's dependent-restart propagation (spec §4.6).
func (d *Descriptor) RestartDelay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Spec.RestartDelay
}

// SetRestartDelay overwrites RestartDelay with a parent's Wait, propagating
// settle time to a dependent restart.
func (d *Descriptor) SetRestartDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Spec.RestartDelay = delay
}
