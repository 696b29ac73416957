package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProject = `
name: "demo"

cross_file: "arm-none-eabi.ini"
dts:        "boards/demo.dts"
dts_include_dirs: ["dts/include"]

packages: {
	kernel: {
		config_file: "configs/kernel.config"
	}
	libshield: {
		config_file: "configs/libshield.config"
		deps: ["kernel"]
	}
	blinky: {
		config_file: "configs/blinky.config"
		deps: ["libshield"]
		build_opts: ["-Dwith_tests=false"]
		provider:   "acme"
	}
}

firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf", template: "templates/kernel.ld.in"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
	apps: [
		{
			name:     "blinky"
			elf:      "blinky/blinky.elf"
			template: "templates/app.ld.in"
			format:   "ihex"
			meta:     "etc/blinky.meta.yml"
		},
	]
	dummy_template: "templates/dummy.ld.in"
}
`

func writeProject(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(source), 0o644))
	return dir
}

func TestLoadValidProject(t *testing.T) {
	dir := writeProject(t, validProject)

	p, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "demo", p.Name)
	assert.Equal(t, filepath.Join(dir, "build"), p.BuildDir, "build_dir default must apply")
	assert.Equal(t, filepath.Join(dir, "staging"), p.StagingDir)
	assert.Equal(t, "firmware.hex", p.Firmware.Output, "output default must apply")

	require.Len(t, p.Packages, 3)
	blinky := p.Packages["blinky"]
	assert.Equal(t, []string{"libshield"}, blinky.Deps)
	assert.Equal(t, filepath.Join(dir, "src", "blinky"), blinky.SourceDir)
	assert.Equal(t, filepath.Join(dir, "build", "blinky"), blinky.BuildDir)
	assert.Equal(t, p.StagingDir, blinky.StagingDir, "staging dir is shared project-wide")
	assert.Equal(t, []string{"-Dwith_tests=false"}, blinky.BuildOpts)
	assert.Equal(t, map[string]string{"provider": "acme"}, blinky.Extra,
		"unrecognized scalar options go to the extension mapping")

	assert.Equal(t, "kernel", p.Firmware.Idle.PackageName(), "package override must win")
	assert.Equal(t, "blinky", p.Firmware.Apps[0].PackageName(), "image name is the fallback")
}

func TestLoadMissingProjectFile(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, IsConfigError(err, ErrCodeNotFound))
}

func TestLoadRejectsMissingRequiredOption(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: kernel: {}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
}
`)
	_, err := Load(dir)
	assert.True(t, IsConfigError(err, ErrCodeParse), "missing config_file must fail schema validation: %v", err)
}

func TestLoadRejectsDanglingDependency(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config", deps: ["phantom"]}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
}
`)
	_, err := Load(dir)
	assert.True(t, IsConfigError(err, ErrCodeDanglingDep), "got %v", err)
}

func TestLoadRejectsDependencyCycle(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config", deps: ["libshield"]}
	libshield: {config_file: "l.config", deps: ["app"]}
	app: {config_file: "a.config", deps: ["kernel"]}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
}
`)
	_, err := Load(dir)
	require.True(t, IsConfigError(err, ErrCodeCycle), "got %v", err)
	assert.Contains(t, err.Error(), "->", "cycle error must carry the path")
}

func TestLoadRejectsSelfDependency(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config", deps: ["kernel"]}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
}
`)
	_, err := Load(dir)
	assert.True(t, IsConfigError(err, ErrCodeCycle), "got %v", err)
}

func TestLoadRejectsImageWithoutPackage(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config"}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
	apps: [{name: "ghost", elf: "ghost/ghost.elf"}]
}
`)
	_, err := Load(dir)
	assert.True(t, IsConfigError(err, ErrCodeBadImage), "got %v", err)
}

func TestLoadRejectsKernelWithoutTemplate(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config"}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
}
`)
	_, err := Load(dir)
	require.True(t, IsConfigError(err, ErrCodeNoTemplate), "got %v", err)
	assert.Contains(t, err.Error(), "kernel image requires a linker-script template")
}

func TestLoadRejectsAppWithoutTemplate(t *testing.T) {
	dir := writeProject(t, `
name: "demo"
cross_file: "arm.ini"
dts: "demo.dts"
packages: {
	kernel: {config_file: "k.config"}
	blinky: {config_file: "b.config"}
}
firmware: {
	kernel: {name: "kernel", elf: "kernel/kernel.elf", template: "templates/kernel.ld.in"}
	idle:   {name: "idle", package: "kernel", elf: "kernel/idle.elf"}
	apps: [{name: "blinky", elf: "blinky/blinky.elf"}]
}
`)
	_, err := Load(dir)
	require.True(t, IsConfigError(err, ErrCodeNoTemplate), "got %v", err)
	assert.Contains(t, err.Error(), "blinky")
}

func TestLoadAllowsIdleWithoutTemplate(t *testing.T) {
	dir := writeProject(t, validProject)

	p, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, p.Firmware.Idle.Template, "idle ships its original link output")
}

func TestPackageNamesSorted(t *testing.T) {
	p := &Project{Packages: map[string]*Package{
		"zeta": {}, "alpha": {}, "mid": {},
	}}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, p.PackageNames())
}
