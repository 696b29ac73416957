package taskmeta

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTaskConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "task.meta.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestLoadTaskConfigToMeta(t *testing.T) {
	path := writeTaskConfig(t, `
name: blinky
id: 42
priority: 3
quantum: 10
capabilities: 0x10003
auto_start: true
exit_mode: panic
stack_size: 2048
heap_size: 4096
shms: [0x11, 0x12]
`)

	cfg, err := LoadTaskConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "blinky", cfg.Name)

	m, err := cfg.ToMeta()
	require.NoError(t, err)
	assert.Equal(t, uint16(42), m.Handle.ID())
	assert.Equal(t, uint8(3), m.Priority)
	assert.True(t, m.Flags.Autostart())
	mode, err := m.Flags.ExitMode()
	require.NoError(t, err)
	assert.Equal(t, ExitPanic, mode)
	assert.Equal(t, []uint32{0x11, 0x12}, m.SHMs)

	// Layout fields stay zero until the relinked image fills them.
	assert.Zero(t, m.TextStart)
	assert.Zero(t, m.TextSize)
}

func TestToMetaRejectsUnknownExitMode(t *testing.T) {
	cfg := &TaskConfig{ID: 1, ExitMode: "explode"}
	_, err := cfg.ToMeta()
	assert.True(t, IsFormatError(err, ErrCodeInvalidExitMode))
}

func TestToMetaRejectsResourceOverflow(t *testing.T) {
	cfg := &TaskConfig{
		ID:       1,
		ExitMode: "norestart",
		Devs:     []uint32{1, 2, 3, 4, 5},
	}
	_, err := cfg.ToMeta()
	assert.True(t, IsFormatError(err, ErrCodeResourceOverflow))
}

func TestLoadTaskConfigBadYAML(t *testing.T) {
	path := writeTaskConfig(t, "{not yaml")
	_, err := LoadTaskConfig(path)
	assert.Error(t, err)
}
