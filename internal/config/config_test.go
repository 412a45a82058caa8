package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "procmon.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadDecodesProcessEntries(t *testing.T) {
	path := writeConfig(t, `{
		"processes": [
			{"id": "A", "exec": "/bin/sleep 3600", "monitored": true, "wait": "1"},
			{"id": "B", "exec": "/bin/sleep 3600", "monitored": true, "depends": ["A"], "restart_on_parent_death": true}
		]
	}`)

	specs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("len(specs) = %d, want 2", len(specs))
	}
	if specs[0].ID != "A" || specs[0].Wait != time.Second {
		t.Fatalf("specs[0] = %+v", specs[0])
	}
	if specs[1].ID != "B" || len(specs[1].Depends) != 1 || specs[1].Depends[0] != "A" {
		t.Fatalf("specs[1] = %+v", specs[1])
	}
	if !specs[1].RestartOnParentDeath {
		t.Fatalf("specs[1].RestartOnParentDeath = false, want true")
	}
}

func TestLoadRejectsMissingExec(t *testing.T) {
	path := writeConfig(t, `{"processes": [{"id": "A"}]}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing exec")
	}
}

func TestLoadRejectsDuplicateID(t *testing.T) {
	path := writeConfig(t, `{
		"processes": [
			{"id": "A", "exec": "/bin/true"},
			{"id": "A", "exec": "/bin/false"}
		]
	}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestLoadRejectsSelfDependency(t *testing.T) {
	path := writeConfig(t, `{"processes": [{"id": "A", "exec": "/bin/true", "depends": ["A"]}]}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for self-dependency")
	}
}
