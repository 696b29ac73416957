package generator

import "github.com/embedded-ossdev/barbican/internal/ninja"

// internalCommand describes one internal subcommand rule: name, argument
// template and description. One generic loop turns the table into
// near-identical rule declarations.
type internalCommand struct {
	name string
	args string
	desc string
}

// internalCommands is the fixed internal dispatch set. Rule names double as
// `barbican internal` subcommand names.
var internalCommands = []internalCommand{
	{"capture-out", "$out $cmdline", "capture command output"},
	{"gen-ldscript", "--name=$name $template $in $out", "generate linker script"},
	{"gen-memory-layout", "--prefix=$prefix $out $projectdir", "generate memory layout"},
	{"gen-task-metadata-bin", "$out $in $projectdir", "generate task metadata"},
	{"kernel-fixup", "$out $in", "kernel task metadata fixup"},
	{"objcopy", "$out $in --format=$format $extra_option", "reformat object"},
	{"package-dyndep", "--name=$name -j $json $builddir $stagingdir $out", "synthesize dynamic dependencies"},
	{"relink-elf", "$out $in --linkerscript=$lnk $options", "relink elf"},
	{"srec-cat", "--format=$format $out $in", "merge records"},
}

// emitRuleTable registers every rule any edge may reference. It must run
// exactly once, before the first edge.
func (g *Generator) emitRuleTable() {
	w := g.w

	w.Newline()
	w.Comment("barbican executable")
	w.Variable("barbican", g.opts.BarbicanPath)
	w.Newline()
	w.Comment("barbican reconfiguration rule")
	w.Rule("barbican_reconfigure", "$barbican setup $projectdir", ninja.RuleOptions{
		Description: "barbican project reconfiguration",
		Generator:   true,
		Pool:        "console",
	})

	for _, cmd := range internalCommands {
		w.Newline()
		w.Rule(cmd.name, "$barbican internal "+cmd.name+" "+cmd.args, ninja.RuleOptions{
			Description: "barbican internal " + cmd.name + " command",
			Pool:        "console",
		})
	}

	w.Newline()
	w.Rule("internal", "$barbican internal $cmd $args", ninja.RuleOptions{
		Description: "barbican internal command",
		Pool:        "console",
	})

	g.emitMesonRules()
}

// emitMesonRules registers the external-tool setup/compile/install rules.
// All three run in the console pool: interactive subprocess output must not
// interleave, and concurrent heavyweight tool runs stay bounded.
func (g *Generator) emitMesonRules() {
	w := g.w

	w.Newline()
	w.Variable("mesonbuild", g.opts.MesonPath)
	w.Newline()
	w.Rule("meson_setup",
		"$mesonbuild setup -Ddts=$dts -Ddts-include-dirs=$dtsincdir "+
			"--cross-file=$crossfile $opts $builddir $sourcedir",
		ninja.RuleOptions{Description: "meson setup $name", Pool: "console"})
	w.Newline()
	w.Rule("meson_compile",
		"$mesonbuild compile -C $builddir && touch $out",
		ninja.RuleOptions{Description: "meson compile $name", Pool: "console"})
	w.Newline()
	w.Rule("meson_install",
		"$mesonbuild install --only-changed --destdir $stagingdir -C $builddir && touch $out",
		ninja.RuleOptions{Description: "meson install $name", Pool: "console"})
}
