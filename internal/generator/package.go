package generator

import (
	"strings"

	"github.com/embedded-ossdev/barbican/internal/config"
	"github.com/embedded-ossdev/barbican/internal/ninja"
)

// emitPackage writes one package's graph nodes: the setup edge with its
// phony alias, the dynamic-dependency edge, and the compile/install stamps
// with their phony aliases. Every output is namespaced by package name, so
// packages never collide.
func (g *Generator) emitPackage(pkg *config.Package) error {
	w := g.w

	// Configure runs strictly after every declared dependency has
	// installed; a package without dependencies configures as soon as the
	// graph is loaded.
	orderOnly := make([]string, 0, len(pkg.Deps))
	for _, dep := range pkg.Deps {
		orderOnly = append(orderOnly, dep+"_install")
	}

	w.Newline()
	if err := w.Build(ninja.Edge{
		Outputs:   []string{pkg.BuildDir + "/build.ninja"},
		Rule:      "meson_setup",
		OrderOnly: orderOnly,
		Variables: map[string]string{
			"builddir":  pkg.BuildDir,
			"sourcedir": pkg.SourceDir,
			"name":      pkg.Name,
			"opts":      buildOpts(pkg),
		},
	}); err != nil {
		return err
	}
	w.Newline()
	if err := w.Phony(pkg.Name+"_setup", pkg.BuildDir+"/build.ninja"); err != nil {
		return err
	}

	// The declaration edge waits (order-only) on setup, then captures the
	// introspection snapshot as an implicit extra output next to the
	// declaration itself.
	w.Newline()
	if err := w.Build(ninja.Edge{
		Outputs:         []string{pkg.Name + ".dyndep"},
		Rule:            "package-dyndep",
		OrderOnly:       []string{pkg.Name + "_setup"},
		ImplicitOutputs: []string{pkg.Name + "_introspect.json"},
		Variables: map[string]string{
			"name":       pkg.Name,
			"builddir":   pkg.BuildDir,
			"stagingdir": pkg.StagingDir,
			"json":       pkg.Name + "_introspect.json",
		},
	}); err != nil {
		return err
	}

	// Compile and install wait order-only on the declaration so the
	// executor can load it before resolving their full input/output sets.
	w.Newline()
	if err := w.Build(ninja.Edge{
		Outputs:   []string{pkg.Name + "_compile.stamp"},
		Rule:      "meson_compile",
		OrderOnly: []string{pkg.Name + ".dyndep"},
		Variables: map[string]string{
			"builddir": pkg.BuildDir,
			"name":     pkg.Name,
			"dyndep":   pkg.Name + ".dyndep",
		},
	}); err != nil {
		return err
	}
	w.Newline()
	if err := w.Phony(pkg.Name+"_compile", pkg.Name+"_compile.stamp"); err != nil {
		return err
	}

	w.Newline()
	if err := w.Build(ninja.Edge{
		Outputs:   []string{pkg.Name + "_install.stamp"},
		Rule:      "meson_install",
		OrderOnly: []string{pkg.Name + ".dyndep"},
		Variables: map[string]string{
			"builddir":   pkg.BuildDir,
			"name":       pkg.Name,
			"stagingdir": pkg.StagingDir,
			"dyndep":     pkg.Name + ".dyndep",
		},
	}); err != nil {
		return err
	}
	w.Newline()
	return w.Phony(pkg.Name+"_install", pkg.Name+"_install.stamp")
}

// buildOpts assembles the meson_setup $opts binding: the package
// configuration selector first, then the free-form extra flags.
func buildOpts(pkg *config.Package) string {
	opts := []string{"-Dconfig=" + pkg.ConfigFile}
	return strings.Join(append(opts, pkg.BuildOpts...), " ")
}
