package lockfile

// StatusKind classifies the outcome of a PIDStatus probe.
type StatusKind int

const (
	StatusAbsent StatusKind = iota
	StatusRunning
	StatusSuspended
	StatusAborted
)

func (k StatusKind) String() string {
	switch k {
	case StatusRunning:
		return "running"
	case StatusSuspended:
		return "suspended"
	case StatusAborted:
		return "aborted"
	default:
		return "absent"
	}
}

// Status is the result of probing a descriptor's lockfile: its Terminate
// sentinel and, for a running process, its last known PID.
type Status struct {
	Kind StatusKind
	PID  int32
}

// PIDStatus opens the lockfile for id (single attempt, no retry — a missing
// lockfile is a legitimate "absent" outcome, not a race to tolerate), reads
// its header, and closes it. It never blocks on the advisory lock.
func PIDStatus(dir, id string) (Status, error) {
	path := PathFor(dir, id)
	f, err := openNoRetry(path)
	if err != nil {
		if isNotExist(err) {
			return Status{Kind: StatusAbsent}, nil
		}
		return Status{}, err
	}
	defer f.Close()

	rec, err := f.ReadRecord()
	if err != nil {
		return Status{}, err
	}

	switch {
	case rec.IsAborted():
		return Status{Kind: StatusAborted, PID: rec.PID}, nil
	case rec.IsSuspended():
		return Status{Kind: StatusSuspended, PID: rec.PID}, nil
	case pidAlive(rec.PID):
		return Status{Kind: StatusRunning, PID: rec.PID}, nil
	default:
		return Status{Kind: StatusAbsent, PID: rec.PID}, nil
	}
}
