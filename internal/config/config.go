// Package config loads the procmon configuration document (spec §6) into
// process.Spec values, using the same viper+mapstructure pipeline the
// teacher repo uses for its own config loading.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/loykin/procmon/internal/process"
)

// Config is the top-level decoded document: an array of process entries.
type Config struct {
	Processes []ProcessEntry `mapstructure:"processes"`
}

// ProcessEntry mirrors the config schema exactly as the original procmon.c
// parses it with tjson: id/exec/wait/monitored/verbose/skip/
// restart_on_parent_death/depends. wait and restart_delay are accepted as
// either a numeric seconds count or a numeric string, matching the
// original's atoi() on a string field.
type ProcessEntry struct {
	ID                   string      `mapstructure:"id"`
	Exec                 string      `mapstructure:"exec"`
	Wait                 interface{} `mapstructure:"wait"`
	RestartDelay         interface{} `mapstructure:"restart_delay"`
	Monitored            bool        `mapstructure:"monitored"`
	Verbose              bool        `mapstructure:"verbose"`
	Skip                 bool        `mapstructure:"skip"`
	RestartOnParentDeath bool        `mapstructure:"restart_on_parent_death"`
	Depends              []string    `mapstructure:"depends"`
}

// Load reads the configuration document at path and decodes it into
// process.Spec values. The document format (JSON/YAML/TOML) is sniffed by
// viper from the file extension.
func Load(path string) ([]process.Spec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("config: build decoder: %w", err)
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	specs := make([]process.Spec, 0, len(doc.Processes))
	seen := make(map[string]struct{}, len(doc.Processes))
	for _, pe := range doc.Processes {
		spec, err := pe.toSpec()
		if err != nil {
			return nil, err
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, fmt.Errorf("config: duplicate id %q", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (pe ProcessEntry) toSpec() (process.Spec, error) {
	wait, err := seconds(pe.Wait)
	if err != nil {
		return process.Spec{}, fmt.Errorf("config: %s: wait: %w", pe.ID, err)
	}
	delay, err := seconds(pe.RestartDelay)
	if err != nil {
		return process.Spec{}, fmt.Errorf("config: %s: restart_delay: %w", pe.ID, err)
	}
	return process.Spec{
		ID:                   strings.TrimSpace(pe.ID),
		Exec:                 pe.Exec,
		Wait:                 wait,
		RestartDelay:         delay,
		Monitored:            pe.Monitored,
		Verbose:              pe.Verbose,
		Skip:                 pe.Skip,
		RestartOnParentDeath: pe.RestartOnParentDeath,
		Depends:              pe.Depends,
	}, nil
}

// seconds accepts either a JSON number or a numeric string for wait/
// restart_delay, matching the original C's `atoi(wait_str)` over a
// textual config field.
func seconds(v interface{}) (time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return time.Duration(t) * time.Second, nil
	case int64:
		return time.Duration(t) * time.Second, nil
	case float64:
		return time.Duration(t) * time.Second, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * time.Second, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}
