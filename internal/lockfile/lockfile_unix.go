//go:build !windows

package lockfile

import (
	"errors"
	"syscall"
)

// SetWriteLock performs the fcntl byte-range write lock on byte 0 of the
// file that is this protocol's liveness beacon. Unlike flock(2), fcntl
// supports kernel cross-process deadlock detection (EDEADLK), which
// WaitBlocking relies on.
func (f *File) SetWriteLock(mode LockMode) error {
	lk := syscall.Flock_t{
		Type:   syscall.F_WRLCK,
		Whence: 0, // SEEK_SET
		Start:  0,
		Len:    1,
	}
	cmd := syscall.F_SETLK
	switch mode {
	case TryNow:
		lk.Type = syscall.F_WRLCK
		cmd = syscall.F_SETLK
	case WaitBlocking:
		lk.Type = syscall.F_WRLCK
		cmd = syscall.F_SETLKW
	case Release:
		lk.Type = syscall.F_UNLCK
		cmd = syscall.F_SETLK
	}

	err := syscall.FcntlFlock(f.f.Fd(), cmd, &lk)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.EDEADLK) {
		return ErrDeadlock
	}
	return err
}

// pidAlive probes liveness with a zero signal, tolerating EPERM (a process
// owned by another user is still alive).
func pidAlive(pid int32) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(int(pid), 0)
	if err == nil || errors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
