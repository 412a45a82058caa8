// Package lockfile implements the on-disk lockfile protocol (component C1):
// a fixed-layout binary header per monitored process, used both as an
// advisory-lock liveness beacon and as an out-of-band control channel.
//
// The layout mirrors the C LockData struct in the original procmon, but pins
// every field to an explicit width instead of following the platform's
// pid_t/size_t/time_t, so that a CLI built against a different Go toolchain
// can still read and positionally update records written by another build.
package lockfile

import "encoding/binary"

// Control words written into the Terminate field. Any other value means
// "normal; monitor as usual."
const (
	Suspend uint32 = 0xDEADBEEF
	Abort   uint32 = 0xDEAFBABE
)

// Field byte offsets and widths within the header. Offsets are used
// directly for positional updates; the header is never re-serialized in
// full once created, except by makelock-style (re)start updates which do
// rewrite it wholesale.
const (
	offsetPID       = 0
	widthPID        = 4
	offsetTerminate = offsetPID + widthPID
	widthTerminate  = 4
	offsetRunCount  = offsetTerminate + widthTerminate
	widthRunCount   = 8
	offsetStartTime = offsetRunCount + widthRunCount
	widthStartTime  = 8

	// HeaderSize is the fixed size of the binary header; the exec command
	// line trailer begins immediately after it.
	HeaderSize = offsetStartTime + widthStartTime
)

// Record is the decoded form of a lockfile's binary header.
type Record struct {
	PID       int32
	Terminate uint32
	RunCount  uint64
	StartTime int64
}

// Encode serializes r into a HeaderSize-byte buffer.
func (r Record) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[offsetPID:], uint32(r.PID))
	binary.LittleEndian.PutUint32(buf[offsetTerminate:], r.Terminate)
	binary.LittleEndian.PutUint64(buf[offsetRunCount:], r.RunCount)
	binary.LittleEndian.PutUint64(buf[offsetStartTime:], uint64(r.StartTime))
	return buf
}

// Decode parses a HeaderSize-byte (or longer) buffer into a Record.
func Decode(buf []byte) (Record, error) {
	if len(buf) < HeaderSize {
		return Record{}, errShortHeader
	}
	return Record{
		PID:       int32(binary.LittleEndian.Uint32(buf[offsetPID:])),
		Terminate: binary.LittleEndian.Uint32(buf[offsetTerminate:]),
		RunCount:  binary.LittleEndian.Uint64(buf[offsetRunCount:]),
		StartTime: int64(binary.LittleEndian.Uint64(buf[offsetStartTime:])),
	}, nil
}

// IsSuspended reports whether the record's Terminate word is the suspend
// sentinel.
func (r Record) IsSuspended() bool { return r.Terminate == Suspend }

// IsAborted reports whether the record's Terminate word is the abort
// sentinel.
func (r Record) IsAborted() bool { return r.Terminate == Abort }
