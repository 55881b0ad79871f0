package secs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TransformSyncMode selects how spatial state flows between the host graph
// and the entity store.
type TransformSyncMode int

const (
	// SyncDisabled mirrors no transforms at all. Mirror entities for spatial
	// nodes carry no transform component.
	SyncDisabled TransformSyncMode = iota

	// SyncOneWay pushes entity-side transform edits to the host but never
	// reads host-side changes back. The cheapest mode that still moves
	// nodes; use it when the entity store is the sole authority.
	SyncOneWay

	// SyncTwoWay additionally imports host-side transform changes each tick,
	// for hosts where animation players or physics move nodes directly.
	SyncTwoWay
)

// String returns the mode's config spelling.
func (m TransformSyncMode) String() string {
	switch m {
	case SyncDisabled:
		return "disabled"
	case SyncOneWay:
		return "one_way"
	case SyncTwoWay:
		return "two_way"
	default:
		return fmt.Sprintf("TransformSyncMode(%d)", int(m))
	}
}

// MarshalYAML encodes the mode as its config spelling.
func (m TransformSyncMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalYAML decodes "disabled", "one_way" or "two_way".
func (m *TransformSyncMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "disabled":
		*m = SyncDisabled
	case "one_way":
		*m = SyncOneWay
	case "two_way":
		*m = SyncTwoWay
	default:
		return fmt.Errorf("secs: unknown sync mode %q", s)
	}
	return nil
}

// Config is the bridge's startup configuration.
type Config struct {
	// SyncMode is the initial transform synchronization mode. It can be
	// changed at runtime through App.SetSyncMode.
	SyncMode TransformSyncMode `yaml:"sync_mode"`

	// MirrorChildRelationships controls whether mirror entities get a
	// ChildOf component reflecting the host tree topology.
	MirrorChildRelationships bool `yaml:"mirror_child_relationships"`

	// Workers caps the scheduler's worker pool for non-main-thread systems.
	// Zero means one worker per CPU.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the defaults: one-way sync, child relationships
// mirrored, worker pool sized to the machine.
func DefaultConfig() Config {
	return Config{
		SyncMode:                 SyncOneWay,
		MirrorChildRelationships: true,
	}
}

// ParseConfig decodes a yaml document over the defaults, so a partial file
// only overrides what it names.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("secs: parse config: %w", err)
	}
	if cfg.Workers < 0 {
		return Config{}, fmt.Errorf("secs: workers must be >= 0, got %d", cfg.Workers)
	}
	return cfg, nil
}

// TransformConfig is the world resource holding the live sync mode. Systems
// read it every tick, so App.SetSyncMode takes effect on the next frame.
type TransformConfig struct {
	Mode TransformSyncMode
}
