// Package display formats the CLI control plane's `list` output (C7, spec
// §6): a human-readable table or a JSON array, both over the same
// manager.Entry rows.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/manager"
)

// Row is the JSON-serializable shape of one `list` entry, matching the
// human table's columns (spec §6): Process Name, pid, Restarts, Since,
// Status, Command.
type Row struct {
	Process  string `json:"process"`
	PID      int32  `json:"pid"`
	Restarts uint64 `json:"restarts"`
	Since    string `json:"since"`
	Status   string `json:"status"`
	Command  string `json:"command"`
}

// Since renders the elapsed time from startTime (Unix seconds) to now as
// <d>d<hh>h<mm>m<ss>s, shortening to the largest unit that fits when the
// total is under a day, an hour, or a minute (spec §4.7/§6).
func Since(startTime int64, now time.Time) string {
	if startTime <= 0 {
		return "-"
	}
	elapsed := now.Sub(time.Unix(startTime, 0))
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(elapsed.Seconds())

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd%02dh%02dm%02ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

func statusLabel(k lockfile.StatusKind) string {
	if k == lockfile.StatusRunning {
		return "running"
	}
	return "stopped"
}

// Rows converts List() entries into display rows, rendering Since relative
// to now so tests can pin the clock.
func Rows(entries []manager.Entry, now time.Time) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Process:  e.ID,
			PID:      e.PID,
			Restarts: e.RunCount,
			Since:    Since(e.StartTime, now),
			Status:   statusLabel(e.Status),
			Command:  e.Exec,
		})
	}
	return rows
}

// WriteTable renders rows as an aligned human table with the column
// headers from spec §6.
func WriteTable(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "Process Name\tpid\tRestarts\tSince\tStatus\tCommand"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			r.Process, r.PID, r.Restarts, r.Since, r.Status, r.Command); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteJSON renders rows as a JSON array (the `-o json` format).
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
