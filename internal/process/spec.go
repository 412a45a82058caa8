package process

import "time"

// Spec is the configuration-facing description of one declared process,
// decoded from the config document by internal/config. It is immutable
// once a Descriptor is built from it, except that RestartDelay may be
// rewritten at runtime by a parent propagating its own Wait (spec §4.6).
type Spec struct {
	ID                   string
	Exec                 string
	Wait                 time.Duration
	RestartDelay         time.Duration
	Monitored            bool
	RestartOnParentDeath bool
	Skip                 bool
	Verbose              bool
	Depends              []string
}

// Validate checks the fields that spawning and the graph linker depend on.
func (s Spec) Validate() error {
	if s.ID == "" {
		return &ConfigError{Reason: "missing id"}
	}
	if s.Exec == "" {
		return &ConfigError{Descriptor: s.ID, Reason: "missing exec"}
	}
	for _, p := range s.Depends {
		if p == s.ID {
			return &ConfigError{Descriptor: s.ID, Reason: "self-dependency on " + p}
		}
	}
	return nil
}

// ConfigError reports a problem with a declared descriptor or its
// dependency edges, per spec §7.
type ConfigError struct {
	Descriptor string
	Parent     string
	Reason     string
}

func (e *ConfigError) Error() string {
	if e.Descriptor == "" {
		return "config: " + e.Reason
	}
	if e.Parent != "" {
		return "config: " + e.Descriptor + ": " + e.Reason + ": " + e.Parent
	}
	return "config: " + e.Descriptor + ": " + e.Reason
}
