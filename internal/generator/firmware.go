package generator

import (
	"strings"

	"github.com/embedded-ossdev/barbican/internal/config"
	"github.com/embedded-ossdev/barbican/internal/ninja"
)

// shieldPackage is the runtime-support package every linker script depends
// on; its install must complete before any script is generated.
const shieldPackage = "libshield"

// layoutPath is the computed firmware memory layout, builddir-relative like
// every pipeline output.
const layoutPath = "firmware/memory_layout.json"

func ldscriptPath(name string) string { return "firmware/" + name + ".ld" }
func relinkPath(name string) string   { return "firmware/" + name + ".reloc.elf" }
func metadataPath(name string) string { return "firmware/" + name + ".meta.bin" }
func fixupPath(name string) string    { return "firmware/" + name + ".fixup.elf" }

// formatExtensions maps objcopy output formats to file extensions.
var formatExtensions = map[string]string{
	"ihex":   "hex",
	"srec":   "srec",
	"binary": "bin",
}

// emitFirmwarePipeline writes the post-processing chain: memory layout,
// linker scripts, relink/reformat edges, per-task metadata, kernel fixup
// and the final image merge.
func (g *Generator) emitFirmwarePipeline() error {
	fw := g.project.Firmware

	if err := g.emitMemoryLayout(); err != nil {
		return err
	}

	if fw.DummyTemplate != "" {
		// The dummy pseudo-image has no real package: only the shield
		// install gates its script.
		if err := g.emitLdscript("dummy", fw.DummyTemplate, nil); err != nil {
			return err
		}
	}

	for _, img := range g.project.AllImages() {
		if img.Template == "" {
			continue
		}
		pkg := img.PackageName()
		if err := g.emitLdscript(img.Name, img.Template, []string{pkg + "_install"}); err != nil {
			return err
		}
		if err := g.emitRelink(img); err != nil {
			return err
		}
		if img.Format != "" {
			if err := g.emitObjcopy(img); err != nil {
				return err
			}
		}
	}

	for _, app := range fw.Apps {
		if err := g.emitTaskMetadata(app); err != nil {
			return err
		}
	}

	if err := g.emitKernelFixup(); err != nil {
		return err
	}
	return g.emitMerge()
}

// emitMemoryLayout declares the layout computation over every resolved
// image. It runs only after all involved packages have installed, and the
// application images are implicit inputs so address changes recompute the
// layout.
func (g *Generator) emitMemoryLayout() error {
	fw := g.project.Firmware

	var implicit []string
	seen := make(map[string]bool)
	for _, img := range g.project.AllImages() {
		stamp := img.PackageName() + "_install.stamp"
		if !seen[stamp] {
			seen[stamp] = true
			implicit = append(implicit, stamp)
		}
	}

	args := []string{layoutPath}
	for _, img := range g.project.AllImages() {
		args = append(args, "-l", img.ELF)
	}
	for _, app := range fw.Apps {
		implicit = append(implicit, app.ELF)
	}

	g.w.Newline()
	return g.w.Build(ninja.Edge{
		Outputs:  []string{layoutPath},
		Rule:     "internal",
		Implicit: implicit,
		Variables: map[string]string{
			"cmd":         "gen-memory-layout",
			"args":        strings.Join(args, " "),
			"description": "generating firmware memory layout",
		},
	})
}

// emitLdscript declares one linker-script generation edge. extraOrderOnly
// carries the image's own install alias; the dummy pseudo-image passes none.
func (g *Generator) emitLdscript(name, template string, extraOrderOnly []string) error {
	orderOnly := append([]string{shieldPackage + "_install"}, extraOrderOnly...)

	g.w.Newline()
	return g.w.Build(ninja.Edge{
		Outputs:   []string{ldscriptPath(name)},
		Rule:      "internal",
		Inputs:    []string{layoutPath},
		Implicit:  []string{template},
		OrderOnly: orderOnly,
		Variables: map[string]string{
			"cmd":         "gen-ldscript",
			"args":        strings.Join([]string{"--name", name, template, layoutPath, ldscriptPath(name)}, " "),
			"description": "generating " + name + " linker script",
		},
	})
}

// emitRelink declares the relink of one image against its generated script
// and introspection-derived module map.
func (g *Generator) emitRelink(img config.Image) error {
	pkg := img.PackageName()
	introspect := pkg + "_introspect.json"
	out := relinkPath(img.Name)

	g.w.Newline()
	return g.w.Build(ninja.Edge{
		Outputs:  []string{out},
		Rule:     "internal",
		Inputs:   []string{ldscriptPath(img.Name), introspect, img.ELF},
		Implicit: []string{pkg + "_install.stamp"},
		Variables: map[string]string{
			"cmd":         "relink-elf",
			"args":        strings.Join([]string{"-l", ldscriptPath(img.Name), "-m", introspect, out, img.ELF}, " "),
			"description": img.Name + ": linking " + out,
		},
	})
}

// emitObjcopy declares the optional reformat of a relinked image.
func (g *Generator) emitObjcopy(img config.Image) error {
	pkg := img.PackageName()
	introspect := pkg + "_introspect.json"
	in := relinkPath(img.Name)
	out := "firmware/" + img.Name + "." + formatExtensions[img.Format]

	g.w.Newline()
	return g.w.Build(ninja.Edge{
		Outputs:  []string{out},
		Rule:     "internal",
		Inputs:   []string{in},
		Implicit: []string{introspect},
		Variables: map[string]string{
			"cmd":         "objcopy",
			"args":        strings.Join([]string{"-f", img.Format, "-m", introspect, out, in}, " "),
			"description": "objcopy " + in + " to " + out,
		},
	})
}

// emitTaskMetadata declares the descriptor construction for one application
// task, consuming the relinked image and its staged task-meta document.
func (g *Generator) emitTaskMetadata(app config.Image) error {
	in := relinkPath(app.Name)
	out := metadataPath(app.Name)

	edge := ninja.Edge{
		Outputs: []string{out},
		Rule:    "internal",
		Inputs:  []string{in},
		Variables: map[string]string{
			"cmd":         "gen-task-metadata-bin",
			"args":        strings.Join([]string{out, in, g.project.ProjectDir}, " "),
			"description": "generate task " + app.Name + " metadata",
		},
	}
	if app.Meta != "" {
		edge.Implicit = []string{g.project.StagingDir + "/" + strings.TrimPrefix(app.Meta, "/")}
	}

	g.w.Newline()
	return g.w.Build(edge)
}

// emitKernelFixup folds every task's metadata record back into the kernel
// image.
func (g *Generator) emitKernelFixup() error {
	fw := g.project.Firmware
	in := relinkPath(fw.Kernel.Name)
	out := fixupPath(fw.Kernel.Name)

	args := []string{out, in}
	var inputs []string
	for _, app := range fw.Apps {
		inputs = append(inputs, metadataPath(app.Name))
		args = append(args, metadataPath(app.Name))
	}

	g.w.Newline()
	return g.w.Build(ninja.Edge{
		Outputs:  []string{out},
		Rule:     "internal",
		Inputs:   inputs,
		Implicit: []string{in},
		Variables: map[string]string{
			"cmd":         "kernel-fixup",
			"args":        strings.Join(args, " "),
			"description": "kernel task metadata fixup",
		},
	})
}

// emitMerge declares the final flashable record stream: fixed-up kernel,
// application payloads, then the idle task image.
func (g *Generator) emitMerge() error {
	fw := g.project.Firmware

	inputs := []string{fixupPath(fw.Kernel.Name)}
	for _, app := range fw.Apps {
		inputs = append(inputs, g.imagePayload(app))
	}
	inputs = append(inputs, g.imagePayload(fw.Idle))

	args := append([]string{"--format", "ihex", fw.Output}, inputs...)

	g.w.Newline()
	if err := g.w.Build(ninja.Edge{
		Outputs: []string{fw.Output},
		Rule:    "internal",
		Inputs:  inputs,
		Variables: map[string]string{
			"cmd":         "srec-cat",
			"args":        strings.Join(args, " "),
			"description": "generating " + fw.Output + " with srec-cat",
		},
	}); err != nil {
		return err
	}

	g.w.Newline()
	g.w.Default(fw.Output)
	return g.w.Err()
}

// imagePayload resolves the file an image contributes to the merge: the
// reformatted object when a format is configured, the relinked image when
// only a template is, otherwise the original link output.
func (g *Generator) imagePayload(img config.Image) string {
	switch {
	case img.Format != "":
		return "firmware/" + img.Name + "." + formatExtensions[img.Format]
	case img.Template != "":
		return relinkPath(img.Name)
	default:
		return img.ELF
	}
}
