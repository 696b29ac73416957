package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedded-ossdev/barbican/internal/layout"
	"github.com/embedded-ossdev/barbican/internal/taskmeta"
	"github.com/embedded-ossdev/barbican/internal/testutil"
)

func writeTaskImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.WriteELF(t, path, []testutil.ELFSection{
		{Name: ".text", Data: bytes.Repeat([]byte{0x90}, 0x100)},
		{Name: ".data", Data: bytes.Repeat([]byte{0x02}, 0x20)},
		{Name: ".bss", NoBits: 0x40},
	})
	return path
}

func TestCaptureOut(t *testing.T) {
	out := filepath.Join(t.TempDir(), "captured.txt")

	_, err := execute(t, "internal", "capture-out", out, "echo", "hello")
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
}

func TestCaptureOutFailedCommandWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "captured.txt")

	_, err := execute(t, "internal", "capture-out", out, "false")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenMemoryLayout(t *testing.T) {
	dir := t.TempDir()
	image := writeTaskImage(t, dir, "blinky.elf")
	out := filepath.Join(dir, "memory_layout.json")

	_, err := execute(t, "internal", "gen-memory-layout", out, "-l", image)
	require.NoError(t, err)

	l, err := layout.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, l.Regions, 1)
	assert.Equal(t, "blinky", l.Regions[0].Name)
	assert.Equal(t, uint32(0x100), l.Regions[0].TextSize)
}

func TestGenMemoryLayoutDummy(t *testing.T) {
	out := filepath.Join(t.TempDir(), "memory_layout.json")

	_, err := execute(t, "internal", "gen-memory-layout", "--dummy", out)
	require.NoError(t, err)

	l, err := layout.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, l.Regions)
}

func TestGenLdscript(t *testing.T) {
	dir := t.TempDir()
	image := writeTaskImage(t, dir, "blinky.elf")

	layoutPath := filepath.Join(dir, "memory_layout.json")
	_, err := execute(t, "internal", "gen-memory-layout", layoutPath, "-l", image)
	require.NoError(t, err)

	tmpl := filepath.Join(dir, "app.ld.in")
	require.NoError(t, os.WriteFile(tmpl, []byte("/* {{.Name}} */\n"), 0o644))

	out := filepath.Join(dir, "blinky.ld")
	_, err = execute(t, "internal", "gen-ldscript", "--name", "blinky", tmpl, layoutPath, out)
	require.NoError(t, err)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/* blinky */\n", string(got))
}

func TestGenTaskMetadataBin(t *testing.T) {
	dir := writeCLIProject(t)

	stagingMeta := filepath.Join(dir, "staging", "etc")
	require.NoError(t, os.MkdirAll(stagingMeta, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stagingMeta, "blinky.meta.yml"), []byte(`
name: blinky
id: 42
priority: 3
quantum: 10
capabilities: 0x10003
auto_start: true
exit_mode: restart
stack_size: 2048
heap_size: 4096
`), 0o644))

	reloc := writeTaskImage(t, dir, "blinky.reloc.elf")
	out := filepath.Join(dir, "blinky.meta.bin")

	_, err := execute(t, "internal", "gen-task-metadata-bin", out, reloc, dir)
	require.NoError(t, err)

	record, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Len(t, record, taskmeta.Size)

	m, err := taskmeta.Decode(record)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), m.Handle.ID())
	assert.Equal(t, uint32(0x100), m.TextSize)
	assert.True(t, m.Flags.Autostart())
	assert.NotEqual(t, [32]byte{}, m.TaskHMAC)
}

func TestGenTaskMetadataBinUnknownImage(t *testing.T) {
	dir := writeCLIProject(t)
	reloc := writeTaskImage(t, dir, "ghost.reloc.elf")

	_, err := execute(t, "internal", "gen-task-metadata-bin",
		filepath.Join(dir, "out.bin"), reloc, dir)
	require.Error(t, err)
	assert.ErrorContains(t, err, "no application image named ghost")
}

func TestKernelFixupCommand(t *testing.T) {
	dir := t.TempDir()

	kernelPath := filepath.Join(dir, "kernel.elf")
	testutil.WriteELF(t, kernelPath, []testutil.ELFSection{
		{Name: ".text", Data: bytes.Repeat([]byte{0x90}, 64)},
		{Name: taskmeta.TaskListSection, Data: bytes.Repeat([]byte{0xff}, 2*taskmeta.Size)},
	})

	m := &taskmeta.Meta{Priority: 1, Quantum: 1, StackSize: 512}
	m.Handle.SetID(7)
	require.NoError(t, m.Seal([]byte("blinky"), trivialHash))
	record, err := m.Encode()
	require.NoError(t, err)
	recordPath := filepath.Join(dir, "blinky.meta.bin")
	require.NoError(t, os.WriteFile(recordPath, record, 0o644))

	out := filepath.Join(dir, "kernel.fixup.elf")
	_, err = execute(t, "internal", "kernel-fixup", out, kernelPath, recordPath)
	require.NoError(t, err)

	patched, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.NotEqual(t, -1, bytes.Index(patched, record))
}

func trivialHash(b []byte) [32]byte {
	var sum [32]byte
	copy(sum[:], b)
	return sum
}

func TestObjcopyRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "internal", "objcopy", "-f", "coff", "out.cof", "in.elf")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown objcopy format")
}

func TestSrecCatRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "internal", "srec-cat", "--format", "tek", "out.tek", "in.hex")
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown merge format")
}
