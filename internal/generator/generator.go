package generator

import (
	"io"
	"strings"

	"github.com/embedded-ossdev/barbican/internal/config"
	"github.com/embedded-ossdev/barbican/internal/ninja"
)

// graphWidth is wide enough that lines effectively never wrap, which keeps
// the emitted file trivially diffable.
const graphWidth = 1024

// Options configures tool lookup for the emitted graph. Both paths land in
// graph variables, so they must be stable across regenerations.
type Options struct {
	// BarbicanPath is the barbican executable invoked by internal rules.
	BarbicanPath string

	// MesonPath is the external build tool executable.
	MesonPath string
}

// Generator emits the static build graph for one project.
type Generator struct {
	w       *ninja.Writer
	project *config.Project
	opts    Options
}

// New creates a Generator writing the graph to w.
func New(w io.Writer, project *config.Project, opts Options) *Generator {
	if opts.BarbicanPath == "" {
		opts.BarbicanPath = "barbican"
	}
	if opts.MesonPath == "" {
		opts.MesonPath = "meson"
	}
	return &Generator{
		w:       ninja.NewWriter(w, graphWidth),
		project: project,
		opts:    opts,
	}
}

// Generate writes the whole graph: header, rule table, project variables,
// reconfiguration edge, per-package quintets in sorted package order, then
// the firmware pipeline. Identical configuration yields identical bytes.
func (g *Generator) Generate() error {
	g.w.Comment("barbican build.ninja")
	g.w.Comment("Auto generated file **DO NOT EDIT**")

	g.emitRuleTable()
	g.emitProjectVariables()
	if err := g.emitReconfiguration(); err != nil {
		return err
	}

	for _, name := range g.project.PackageNames() {
		if err := g.emitPackage(g.project.Packages[name]); err != nil {
			return err
		}
	}

	if err := g.emitFirmwarePipeline(); err != nil {
		return err
	}
	return g.w.Err()
}

// emitProjectVariables writes the device-tree and cross-compilation
// variables shared by every meson_setup edge.
func (g *Generator) emitProjectVariables() {
	w := g.w
	w.Newline()
	w.Variable("dts", g.project.DTS)
	w.Variable("dtsincdir", strings.Join(g.project.DTSIncludeDirs, ","))
	w.Newline()
	w.Variable("crossfile", g.project.CrossFile)
}

// emitReconfiguration declares that the graph file regenerates itself
// whenever the project description or its save file changes. The generator
// rule runs in the console pool so reconfiguration output never interleaves
// with concurrent edges.
func (g *Generator) emitReconfiguration() error {
	w := g.w
	implicit := []string{g.project.ConfigPath(), g.project.SavePath()}

	w.Newline()
	if err := w.Build(ninja.Edge{Outputs: implicit, Rule: "phony"}); err != nil {
		return err
	}
	return w.Build(ninja.Edge{
		Outputs:  []string{"build.ninja"},
		Rule:     "barbican_reconfigure",
		Implicit: implicit,
		Variables: map[string]string{
			"projectdir": g.project.ProjectDir,
		},
	})
}
