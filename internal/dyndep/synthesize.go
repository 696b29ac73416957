package dyndep

import (
	"path/filepath"
	"sort"
	"strings"
)

// EdgeExtension is one dyndep block: the extended edge target plus its
// discovered implicit inputs and outputs. File lists are lexicographically
// sorted so the serialized declaration is reproducible.
type EdgeExtension struct {
	Target          string
	ImplicitInputs  []string
	ImplicitOutputs []string
}

// Declaration extends a package's compile and install edges. It is created
// fresh each time the package is (re)configured and supersedes, never
// merges with, any previous declaration.
type Declaration struct {
	Compile EdgeExtension
	Install EdgeExtension
}

// Synthesize computes the dynamic-dependency declaration for one configured
// package:
//
//   - compile implicit outputs are the installed-file keys;
//   - compile implicit inputs are the buildsystem files plus all plain and
//     generated sources, minus the compile step's own implicit outputs (a
//     file cannot be required and produced by the same step);
//   - install implicit inputs are exactly the compile implicit outputs;
//   - install implicit outputs are the install destinations rebased onto
//     the staging directory, leading separator stripped.
func Synthesize(pkg string, snap *Snapshot, stagingDir string) *Declaration {
	compileOutputs := make(map[string]bool, len(snap.Installed))
	for installed := range snap.Installed {
		compileOutputs[installed] = true
	}

	compileInputs := make(map[string]bool)
	for _, f := range snap.BuildsystemFiles {
		compileInputs[f] = true
	}
	for _, target := range snap.Targets {
		for _, group := range target.TargetSources {
			for _, src := range group.Sources {
				compileInputs[src] = true
			}
			for _, src := range group.GeneratedSources {
				compileInputs[src] = true
			}
		}
	}
	for out := range compileOutputs {
		delete(compileInputs, out)
	}

	installOutputs := make(map[string]bool, len(snap.Installed))
	for _, dest := range snap.Installed {
		installOutputs[filepath.Join(stagingDir, strings.TrimPrefix(dest, "/"))] = true
	}

	return &Declaration{
		Compile: EdgeExtension{
			Target:          pkg + "_compile.stamp",
			ImplicitInputs:  sortedSet(compileInputs),
			ImplicitOutputs: sortedSet(compileOutputs),
		},
		Install: EdgeExtension{
			Target:          pkg + "_install.stamp",
			ImplicitInputs:  sortedSet(compileOutputs),
			ImplicitOutputs: sortedSet(installOutputs),
		},
	}
}

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
