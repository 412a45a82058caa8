package lockfile

import (
	"os"
	"path/filepath"
)

// Dir is the well-known directory under which all lockfiles live. It
// defaults to the system temp directory, matching the original procmon's
// hard-coded "/tmp". Overridable so tests (and multi-instance deployments)
// don't collide in a shared /tmp.
func Dir() string {
	if d := os.Getenv("PROCMON_LOCKDIR"); d != "" {
		return d
	}
	return os.TempDir()
}

// PathFor returns the lockfile path for a descriptor id: <dir>/procmon.<id>.
func PathFor(dir, id string) string {
	return filepath.Join(dir, "procmon."+id)
}
