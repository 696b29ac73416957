package dyndep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizeBasicPackage(t *testing.T) {
	snap := &Snapshot{
		BuildsystemFiles: []string{"A", "B"},
		Targets: []Target{
			{TargetSources: []TargetSources{{Sources: []string{"C"}}}},
		},
		Installed: map[string]string{"C": "/usr/bin/C"},
	}

	decl := Synthesize("demo", snap, "/stage")

	assert.Equal(t, "demo_compile.stamp", decl.Compile.Target)
	assert.Equal(t, "demo_install.stamp", decl.Install.Target)

	// C is both a source and an installed key, so it moves to the implicit
	// outputs and is subtracted from the implicit inputs.
	assert.Equal(t, []string{"C"}, decl.Compile.ImplicitOutputs)
	assert.Equal(t, []string{"A", "B"}, decl.Compile.ImplicitInputs)

	assert.Equal(t, decl.Compile.ImplicitOutputs, decl.Install.ImplicitInputs,
		"install implicit inputs are exactly the compile implicit outputs")
	assert.Equal(t, []string{"/stage/usr/bin/C"}, decl.Install.ImplicitOutputs)
}

func TestSynthesizeInputOutputDisjoint(t *testing.T) {
	snap := &Snapshot{
		BuildsystemFiles: []string{"meson.build", "meson_options.txt"},
		Targets: []Target{
			{TargetSources: []TargetSources{
				{Sources: []string{"src/main.c", "src/util.c"}},
				{GeneratedSources: []string{"gen/version.h", "libdemo.a"}},
			}},
			{}, // target without source groups is valid
		},
		Installed: map[string]string{
			"libdemo.a":     "/usr/lib/libdemo.a",
			"demo.elf":      "/usr/bin/demo.elf",
			"gen/version.h": "/usr/include/version.h",
		},
	}

	decl := Synthesize("demo", snap, "/stage")

	outs := make(map[string]bool)
	for _, f := range decl.Compile.ImplicitOutputs {
		outs[f] = true
	}
	for _, f := range decl.Compile.ImplicitInputs {
		assert.False(t, outs[f], "%s must not be both implicit input and output", f)
	}

	assert.ElementsMatch(t,
		[]string{"demo.elf", "gen/version.h", "libdemo.a"},
		decl.Compile.ImplicitOutputs)
	assert.ElementsMatch(t,
		[]string{"meson.build", "meson_options.txt", "src/main.c", "src/util.c"},
		decl.Compile.ImplicitInputs)
	assert.ElementsMatch(t,
		[]string{"/stage/usr/lib/libdemo.a", "/stage/usr/bin/demo.elf", "/stage/usr/include/version.h"},
		decl.Install.ImplicitOutputs)
}

func TestSynthesizeEmptyTargetList(t *testing.T) {
	snap := &Snapshot{BuildsystemFiles: []string{"meson.build"}}

	decl := Synthesize("headeronly", snap, "/stage")

	assert.Empty(t, decl.Compile.ImplicitOutputs, "zero implicit outputs is not an error")
	assert.Equal(t, []string{"meson.build"}, decl.Compile.ImplicitInputs)
	assert.Empty(t, decl.Install.ImplicitInputs)
	assert.Empty(t, decl.Install.ImplicitOutputs)
}

func TestSynthesizeDeterministicOrdering(t *testing.T) {
	snap := &Snapshot{
		BuildsystemFiles: []string{"z.build", "a.build", "m.build"},
		Installed: map[string]string{
			"zz": "/usr/zz",
			"aa": "/usr/aa",
		},
	}

	d1 := Synthesize("demo", snap, "/stage")
	d2 := Synthesize("demo", snap, "/stage")

	require.Equal(t, d1, d2)
	assert.Equal(t, []string{"a.build", "m.build", "z.build"}, d1.Compile.ImplicitInputs)
	assert.Equal(t, []string{"aa", "zz"}, d1.Compile.ImplicitOutputs)
}

func TestParseSnapshotRejectsGarbage(t *testing.T) {
	_, err := ParseSnapshot([]byte("not json at all"))
	assert.True(t, IsKind(err, KindFormat))
}

func TestParseSnapshotAcceptsMinimalPayload(t *testing.T) {
	snap, err := ParseSnapshot([]byte(`{"buildsystem_files": [], "targets": [], "installed": {}}`))
	require.NoError(t, err)
	assert.Empty(t, snap.BuildsystemFiles)
}
