package taskmeta

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TaskConfig is the per-task metadata source document, installed by the
// application package into the staging tree. It carries everything the
// descriptor needs except the memory layout, which is only known after
// relinking.
type TaskConfig struct {
	// Name identifies the task; used for the descriptor file name only.
	Name string `yaml:"name"`

	// ID is the 16-bit numeric task id packed into the handle.
	ID uint16 `yaml:"id"`

	Priority     uint8  `yaml:"priority"`
	Quantum      uint8  `yaml:"quantum"`
	Capabilities uint32 `yaml:"capabilities"`

	Autostart bool   `yaml:"auto_start"`
	ExitMode  string `yaml:"exit_mode"`

	Domain uint8 `yaml:"domain,omitempty"`

	StackSize        uint16 `yaml:"stack_size"`
	EntrypointOffset uint16 `yaml:"entrypoint_offset,omitempty"`
	FinalizeOffset   uint16 `yaml:"finalize_offset,omitempty"`

	HeapSize uint32 `yaml:"heap_size,omitempty"`

	SHMs []uint32 `yaml:"shms,omitempty"`
	Devs []uint32 `yaml:"devs,omitempty"`
	DMAs []uint32 `yaml:"dmas,omitempty"`
}

// LoadTaskConfig reads and parses one task-meta YAML document.
func LoadTaskConfig(path string) (*TaskConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task config: %w", err)
	}
	var cfg TaskConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse task config %s: %w", path, err)
	}
	return &cfg, nil
}

// ToMeta builds an unsealed descriptor from the config. Memory-layout fields
// are left zero for the caller to fill from the relinked image.
func (c *TaskConfig) ToMeta() (*Meta, error) {
	mode, err := ParseExitMode(c.ExitMode)
	if err != nil {
		return nil, err
	}
	flags, err := PackJobFlags(c.Autostart, mode)
	if err != nil {
		return nil, err
	}

	m := &Meta{
		Priority:         c.Priority,
		Quantum:          c.Quantum,
		Capabilities:     c.Capabilities,
		Flags:            flags,
		Domain:           c.Domain,
		HeapSize:         c.HeapSize,
		StackSize:        c.StackSize,
		EntrypointOffset: c.EntrypointOffset,
		FinalizeOffset:   c.FinalizeOffset,
		SHMs:             c.SHMs,
		Devs:             c.Devs,
		DMAs:             c.DMAs,
	}
	m.Handle.SetID(c.ID)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
