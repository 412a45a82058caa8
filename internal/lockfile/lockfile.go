package lockfile

import (
	"errors"
	"io"
	"os"
	"time"
)

var (
	errShortHeader = errors.New("lockfile: buffer shorter than header")
	// ErrDeadlock is returned by SetWriteLock(WaitBlocking) when the kernel
	// reports a cross-process deadlock (EDEADLK). Callers fall back to
	// polling rather than blocking forever.
	ErrDeadlock = errors.New("lockfile: deadlock detected")
)

// openRetries/openRetryDelay bound how long Open tolerates a race with the
// process that is about to create the file.
const (
	openRetries    = 5
	openRetryDelay = 100 * time.Millisecond
)

// LockMode selects the fcntl operation SetWriteLock performs.
type LockMode int

const (
	TryNow LockMode = iota
	WaitBlocking
	Release
)

// File is an open handle to one descriptor's lockfile.
type File struct {
	path string
	f    *os.File
}

// Path returns the filesystem path backing f.
func (f *File) Path() string { return f.path }

// Create creates or truncates the lockfile for id, writes rec and trailer,
// and returns the open handle. The caller is expected to follow with
// SetWriteLock(TryNow) to establish the liveness beacon.
func Create(dir, id string, rec Record, trailer []byte) (*File, error) {
	path := PathFor(dir, id)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(rec.Encode()); err != nil {
		_ = f.Close()
		return nil, err
	}
	if len(trailer) > 0 {
		if _, err := f.Write(trailer); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return &File{path: path, f: f}, nil
}

// Open opens an existing lockfile for read/write, retrying briefly to
// tolerate a race with the process still creating it.
func Open(dir, id string) (*File, error) {
	path := PathFor(dir, id)
	var lastErr error
	for i := 0; i < openRetries; i++ {
		f, err := os.OpenFile(path, os.O_RDWR, 0o600)
		if err == nil {
			return &File{path: path, f: f}, nil
		}
		lastErr = err
		if !os.IsNotExist(err) {
			return nil, err
		}
		time.Sleep(openRetryDelay)
	}
	return nil, lastErr
}

// MakeLock implements the "makelock" behavior: open-or-create the lockfile,
// bump its runcount, stamp pid/starttime, rewrite the full header and
// trailer, and return the new record alongside the open handle. The caller
// still must call SetWriteLock(TryNow) to take the beacon lock.
func MakeLock(dir, id string, pid int32, trailer []byte) (*File, Record, error) {
	path := PathFor(dir, id)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, Record{}, err
	}
	lf := &File{path: path, f: f}

	prev, err := lf.ReadRecord()
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, errShortHeader) {
		_ = lf.Close()
		return nil, Record{}, err
	}

	rec := Record{
		PID:       pid,
		Terminate: prev.Terminate,
		RunCount:  prev.RunCount + 1,
		StartTime: time.Now().Unix(),
	}

	// Truncate to the new total length before rewriting: a trailer shorter
	// than what's currently on disk must not leave stale bytes past the
	// new EOF for ReadTrailer (sized from the file's length) to pick up.
	if err := f.Truncate(int64(HeaderSize + len(trailer))); err != nil {
		_ = lf.Close()
		return nil, Record{}, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = lf.Close()
		return nil, Record{}, err
	}
	if _, err := f.Write(rec.Encode()); err != nil {
		_ = lf.Close()
		return nil, Record{}, err
	}
	if len(trailer) > 0 {
		if _, err := f.Write(trailer); err != nil {
			_ = lf.Close()
			return nil, Record{}, err
		}
	}
	return lf, rec, nil
}

// ReadRecord reads the header at offset 0 without disturbing the file's
// write-lock state.
func (f *File) ReadRecord() (Record, error) {
	buf := make([]byte, HeaderSize)
	n, err := f.f.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return Record{}, err
	}
	if n < HeaderSize {
		return Record{}, errShortHeader
	}
	return Decode(buf)
}

// ReadTrailer reads the raw exec command line stored after the header, for
// display purposes (the `list` operation).
func (f *File) ReadTrailer() ([]byte, error) {
	fi, err := f.f.Stat()
	if err != nil {
		return nil, err
	}
	n := fi.Size() - HeaderSize
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := f.f.ReadAt(buf, HeaderSize); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf, nil
}

// SetTerminate performs a positional update of the Terminate field only.
func (f *File) SetTerminate(word uint32) error {
	buf := Record{Terminate: word}.Encode()
	_, err := f.f.WriteAt(buf[offsetTerminate:offsetTerminate+widthTerminate], offsetTerminate)
	return err
}

// SetStartTime performs a positional update of the StartTime field only.
func (f *File) SetStartTime(t time.Time) error {
	buf := Record{StartTime: t.Unix()}.Encode()
	_, err := f.f.WriteAt(buf[offsetStartTime:offsetStartTime+widthStartTime], offsetStartTime)
	return err
}

// ResetStartTime stamps StartTime with the current time.
func (f *File) ResetStartTime() error { return f.SetStartTime(time.Now()) }

// SetPID performs a positional update of the PID field only.
func (f *File) SetPID(pid int32) error {
	buf := Record{PID: pid}.Encode()
	_, err := f.f.WriteAt(buf[offsetPID:offsetPID+widthPID], offsetPID)
	return err
}

// Close closes the underlying file descriptor. It does not release any
// advisory lock held on it beyond what the OS does automatically on close.
func (f *File) Close() error { return f.f.Close() }

// openNoRetry opens an existing lockfile for read/write with a single
// attempt, used by PIDStatus which treats a missing file as a legitimate
// outcome rather than a creation race.
func openNoRetry(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	return &File{path: path, f: f}, nil
}

func isNotExist(err error) bool { return os.IsNotExist(err) }

// Remove unlinks the lockfile for id.
func Remove(dir, id string) error {
	err := os.Remove(PathFor(dir, id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
