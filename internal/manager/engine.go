package manager

import (
	"context"
	"log/slog"
	"time"

	"github.com/loykin/procmon/internal/metrics"
	"github.com/loykin/procmon/internal/process"
)

// Engine is the dependency-ordered start engine (C4): it repeatedly sweeps
// the process table, launching every runnable, not-yet-launched
// descriptor, until a full sweep makes no progress.
type Engine struct {
	Monitor *Monitor
	Logger  *slog.Logger
}

func NewEngine(m *Monitor, logger *slog.Logger) *Engine {
	return &Engine{Monitor: m, Logger: logger}
}

// Run walks table to a fixpoint. Because the graph is assumed acyclic
// (cycles are rejected earlier by process.DetectCycles), this always
// terminates within (graph depth) sweeps.
func (e *Engine) Run(ctx context.Context, table *process.Table) {
	for {
		progressed := false
		for _, d := range table.All() {
			if !process.Runnable(d) {
				continue
			}
			e.start(ctx, d)
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

// start launches d (InitProcess) and, if it defines a settle wait, blocks
// the engine's own sweep until it elapses before considering d RUNNING and
// moving on to descriptors that depend on it (spec §4.4).
func (e *Engine) start(ctx context.Context, d *process.Descriptor) {
	if e.Logger != nil {
		e.Logger.Info("starting", "id", d.Spec.ID, "monitored", d.Spec.Monitored,
			"wait", d.Spec.Wait, "skip", d.Spec.Skip)
	}

	// A skipped descriptor is recognized and linked into the graph, and
	// still reaches RUNNING so its dependents can proceed, but its
	// monitor task is never spawned (spec §3).
	if d.Spec.Skip {
		d.MarkLaunched()
		d.SetState(process.Running)
		metrics.SetCurrentState(d.Spec.ID, process.Running.String(), true)
		return
	}

	e.Monitor.Launch(ctx, d)
	metrics.SetCurrentState(d.Spec.ID, process.Started.String(), true)

	if d.Spec.Wait > 0 && (d.Spec.Monitored || d.RunCount() < process.MaxParentRuncount(d)) {
		d.SetState(process.Waiting)
		metrics.SetCurrentState(d.Spec.ID, process.Waiting.String(), true)
		time.Sleep(d.Spec.Wait)
		metrics.SetCurrentState(d.Spec.ID, process.Waiting.String(), false)
	}
	d.SetState(process.Running)
	metrics.SetCurrentState(d.Spec.ID, process.Running.String(), true)
}
