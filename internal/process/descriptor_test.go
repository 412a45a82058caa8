package process

import (
	"testing"
	"time"
)

func TestDescriptorAccessors(t *testing.T) {
	d := NewDescriptor(Spec{ID: "A", Exec: "/bin/true", RestartDelay: time.Second})

	if d.State() != Init {
		t.Fatalf("initial state = %v, want INIT", d.State())
	}
	d.SetState(Running)
	if d.State() != Running {
		t.Fatalf("state = %v, want RUNNING", d.State())
	}

	d.SetPID(123)
	if d.PID() != 123 {
		t.Fatalf("pid = %d, want 123", d.PID())
	}

	if got := d.IncRunCount(); got != 1 {
		t.Fatalf("IncRunCount = %d, want 1", got)
	}
	if got := d.IncRunCount(); got != 2 {
		t.Fatalf("IncRunCount = %d, want 2", got)
	}

	if d.Launched() {
		t.Fatal("expected not launched initially")
	}
	d.MarkLaunched()
	if !d.Launched() {
		t.Fatal("expected launched after MarkLaunched")
	}

	if d.RestartDelay() != time.Second {
		t.Fatalf("RestartDelay = %v, want 1s", d.RestartDelay())
	}
	d.SetRestartDelay(5 * time.Second)
	if d.RestartDelay() != 5*time.Second {
		t.Fatalf("RestartDelay = %v, want 5s", d.RestartDelay())
	}
}

func TestSpecValidate(t *testing.T) {
	cases := []struct {
		name    string
		s       Spec
		wantErr bool
	}{
		{"valid", Spec{ID: "A", Exec: "/bin/true"}, false},
		{"missing id", Spec{Exec: "/bin/true"}, true},
		{"missing exec", Spec{ID: "A"}, true},
		{"self dependency", Spec{ID: "A", Exec: "/bin/true", Depends: []string{"A"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
