package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/loykin/procmon/internal/config"
	"github.com/loykin/procmon/internal/display"
	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/logger"
	"github.com/loykin/procmon/internal/manager"
	"github.com/loykin/procmon/internal/metrics"
	"github.com/loykin/procmon/internal/process"
	"github.com/loykin/procmon/internal/supervisor"
)

// runSupervise loads the config, builds the process table/graph, runs the
// dependency-ordered start engine, spawns and watches the peer supervisor
// instance, and blocks forever — the supervisor never returns on its own
// (spec §6, -F/-f "never" exit).
func runSupervise(configPath string, role supervisor.Role, verbose bool, metricsListen, logDir string) error {
	log := logger.New(verbose, false)
	supervisor.InstallTerminationHandler(log)

	if metricsListen != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			log.Warn("metrics registration failed", "error", err)
		} else {
			go serveMetrics(metricsListen, log)
		}
	}

	specs, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("procmon: %w", err)
	}

	tbl := process.NewTable()
	for _, s := range specs {
		if err := tbl.Add(process.NewDescriptor(s)); err != nil {
			return fmt.Errorf("procmon: %w", err)
		}
	}
	if err := process.LinkDependencies(tbl); err != nil {
		return fmt.Errorf("procmon: %w", err)
	}
	if err := process.DetectCycles(tbl); err != nil {
		return fmt.Errorf("procmon: %w", err)
	}

	if verbose {
		displayConfig(log, tbl)
	}

	dir := lockfile.Dir()
	pair := supervisor.New(role, dir, log)
	if err := pair.RegisterSelf(); err != nil {
		return fmt.Errorf("procmon: %w", err)
	}
	if err := pair.SpawnPeer(configPath); err != nil {
		log.Warn("spawn peer failed", "error", err)
	}

	ctx := context.Background()
	pair.WatchPeer(ctx, configPath)

	m := manager.NewMonitor(dir, log)
	m.LogDir = logDir
	e := manager.NewEngine(m, log)
	e.Run(ctx, tbl)

	select {}
}

// displayConfig logs the resolved process table once before the start
// engine begins, mirroring the original's DisplayConfig diagnostic dump
// (SPEC_FULL.md §C.4), gated on -v.
func displayConfig(log *slog.Logger, tbl *process.Table) {
	for _, d := range tbl.All() {
		parents := make([]string, 0, len(d.Parents))
		for _, p := range d.Parents {
			parents = append(parents, p.Spec.ID)
		}
		children := make([]string, 0, len(d.Children))
		for _, c := range d.Children {
			children = append(children, c.Spec.ID)
		}
		log.Info("process",
			"id", d.Spec.ID,
			"exec", d.Spec.Exec,
			"wait", d.Spec.Wait,
			"monitored", d.Spec.Monitored,
			"skip", d.Spec.Skip,
			"parents", parents,
			"children", children,
		)
	}
}

func runList(format string, out io.Writer) error {
	entries, err := manager.List(lockfile.Dir())
	if err != nil {
		return fmt.Errorf("procmon: list: %w", err)
	}
	rows := display.Rows(entries, time.Now())
	if format == "json" {
		return display.WriteJSON(out, rows)
	}
	return display.WriteTable(out, rows)
}

func runStart(id string) error     { return manager.Start(lockfile.Dir(), id) }
func runRestart(id string) error   { return manager.Restart(lockfile.Dir(), id) }
func runTerminate(id string) error { return manager.Terminate(lockfile.Dir(), id) }
func runDelete(id string) error    { return manager.TerminateAndDelete(lockfile.Dir(), id) }
func runShutdownAll() error        { return manager.ShutdownAll(lockfile.Dir()) }

// serveMetrics exposes the Prometheus handler, matching the teacher's
// --metrics-listen wiring in cmd/provisr/main.go's PersistentPreRun.
func serveMetrics(addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server exited", "error", err)
	}
}
