//go:build windows

package lockfile

import "errors"

// ErrUnsupported is returned on platforms without POSIX advisory byte-range
// locking. The lock-as-liveness-beacon design in this package is inherently
// fcntl-based; Windows is not a supported target for the monitor/supervisor
// components.
var ErrUnsupported = errors.New("lockfile: advisory byte-range locking unsupported on this platform")

func (f *File) SetWriteLock(mode LockMode) error { return ErrUnsupported }

func pidAlive(pid int32) bool { return false }
