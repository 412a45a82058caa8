// Command procmon is the process-supervisor CLI: it either starts a
// supervising instance (-F/-f, which never returns) or issues a short-lived
// control-plane operation against a running instance's lockfiles (spec
// §4.8, §6).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/loykin/procmon/internal/manager"
	"github.com/loykin/procmon/internal/supervisor"
)

func main() {
	// A monitored spawn re-execs this binary with LockExecMarker as its
	// first argument so the forked child can take its own lockfile's
	// write lock immediately before replacing its image (see
	// internal/manager/trampoline.go). This must be checked before cobra
	// ever sees argv.
	if len(os.Args) > 1 && os.Args[1] == manager.LockExecMarker {
		if err := manager.RunLockExec(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(127)
		}
		return
	}

	var (
		primaryConfig   string
		secondaryConfig string
		verbose         bool
		listAll         bool
		format          string
		shutdownAll     bool
		startID         string
		restartID       string
		terminateID     string
		deleteID        string
		metricsListen   string
		logDir          string
	)

	root := &cobra.Command{
		Use:           "procmon",
		Short:         "Dependency-ordered process supervisor",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case primaryConfig != "":
				return runSupervise(primaryConfig, supervisor.Primary, verbose, metricsListen, logDir)
			case secondaryConfig != "":
				return runSupervise(secondaryConfig, supervisor.Secondary, verbose, metricsListen, logDir)
			case shutdownAll:
				return runShutdownAll()
			case startID != "":
				return runStart(startID)
			case restartID != "":
				return runRestart(restartID)
			case terminateID != "":
				return runTerminate(terminateID)
			case deleteID != "":
				return runDelete(deleteID)
			case listAll, format != "":
				return runList(format, os.Stdout)
			default:
				return cmd.Usage()
			}
		},
	}

	flags := root.Flags()
	flags.StringVarP(&primaryConfig, "primary", "F", "", "run as primary supervisor, loading the config at `file`")
	flags.StringVarP(&secondaryConfig, "secondary", "f", "", "run as secondary supervisor (peer of primary), loading the config at `file`")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostics")
	flags.BoolVarP(&listAll, "list", "l", false, "list monitored processes")
	flags.StringVarP(&format, "output", "o", "", "list output format (json)")
	flags.BoolVarP(&shutdownAll, "shutdown-all", "x", false, "terminate and delete every monitored process, then both supervisors")
	flags.StringVarP(&startID, "start", "s", "", "resume/start `id`")
	flags.StringVarP(&restartID, "restart", "r", "", "restart `id`")
	flags.StringVarP(&terminateID, "kill", "k", "", "terminate `id` (suspend monitoring)")
	flags.StringVarP(&deleteID, "delete", "d", "", "terminate `id` and delete its monitoring lockfile")
	flags.StringVar(&metricsListen, "metrics-listen", "", "address to serve Prometheus /metrics (e.g. :9090)")
	flags.StringVar(&logDir, "log-dir", "", "directory for rotated per-process stdout/stderr logs (default: inherit supervisor's own)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
