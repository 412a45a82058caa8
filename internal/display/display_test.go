package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/loykin/procmon/internal/lockfile"
	"github.com/loykin/procmon/internal/manager"
)

func TestSinceFormatsLargestFittingUnit(t *testing.T) {
	now := time.Unix(100000, 0)
	cases := []struct {
		name  string
		start int64
		want  string
	}{
		{"zero", 0, "-"},
		{"seconds-only", 100000 - 5, "5s"},
		{"minutes", 100000 - 65, "1m05s"},
		{"hours", 100000 - 3700, "1h01m40s"},
		{"days", 100000 - 90000, "1d01h00m00s"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Since(c.start, now)
			if got != c.want {
				t.Fatalf("Since(%d) = %q, want %q", c.start, got, c.want)
			}
		})
	}
}

func TestRowsMapsStatusAndFields(t *testing.T) {
	now := time.Unix(1000, 0)
	entries := []manager.Entry{
		{ID: "A", PID: 42, RunCount: 3, StartTime: 990, Status: lockfile.StatusRunning, Exec: "/bin/sleep 1"},
		{ID: "B", PID: 0, RunCount: 1, StartTime: 900, Status: lockfile.StatusSuspended, Exec: "/bin/false"},
	}
	rows := Rows(entries, now)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Status != "running" {
		t.Fatalf("rows[0].Status = %q, want running", rows[0].Status)
	}
	if rows[1].Status != "stopped" {
		t.Fatalf("rows[1].Status = %q, want stopped", rows[1].Status)
	}
}

func TestWriteTableIncludesHeaderAndColumns(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{Process: "A", PID: 7, Restarts: 2, Since: "5s", Status: "running", Command: "/bin/sleep 1"}}
	if err := WriteTable(&buf, rows); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Process Name", "pid", "Restarts", "Since", "Status", "Command", "A", "running"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteJSONProducesArray(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{Process: "A", PID: 7, Restarts: 2, Since: "5s", Status: "running", Command: "/bin/sleep 1"}}
	if err := WriteJSON(&buf, rows); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"process": "A"`) {
		t.Fatalf("json output missing process field:\n%s", buf.String())
	}
}
