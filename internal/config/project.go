// Package config loads and validates the declarative project description.
//
// A project is described in a single CUE file (project.cue) validated against
// the embedded schema, then decoded into explicit typed structs. Option
// access never falls back to dynamic key lookup: recognized options are named
// fields, everything else lands in the Extra extension mapping.
package config

import (
	"path/filepath"
	"sort"
)

// ConfigFileName is the project description file, relative to the project
// directory.
const ConfigFileName = "project.cue"

// SaveFileName is the persisted setup state, relative to the project
// directory. The reconfiguration edge depends on both files.
const SaveFileName = ".barbican.save"

// Project is the root configuration, built once per generation run and
// immutable thereafter.
type Project struct {
	Name string

	// ProjectDir is the directory holding the project description.
	ProjectDir string

	SourceDir  string
	BuildDir   string
	StagingDir string

	// CrossFile is the cross-compilation descriptor handed to the external
	// build tool.
	CrossFile string

	// DTS is the device-tree source; DTSIncludeDirs its include paths.
	DTS            string
	DTSIncludeDirs []string

	// Packages is keyed by unique package name.
	Packages map[string]*Package

	Firmware Firmware
}

// Package is one independently configured/compiled/installed unit.
type Package struct {
	Name string

	// SourceDir and BuildDir are per-package; StagingDir is shared across
	// the whole project.
	SourceDir  string
	BuildDir   string
	StagingDir string

	// Deps lists declared dependency package names, in declared order.
	Deps []string

	// ConfigFile is the package configuration handed to the build tool.
	ConfigFile string

	// BuildOpts are free-form extra -D flags.
	BuildOpts []string

	// Extra holds unrecognized string options from the package block.
	Extra map[string]string
}

// Image is one linked firmware image taking part in post-processing.
type Image struct {
	Name string `json:"name"`

	// Package overrides the package name used for introspection and install
	// stamp lookups; empty means the image name is the package name.
	Package string `json:"package"`

	// ELF is the originally linked image, relative to the build directory.
	ELF string `json:"elf"`

	// Template is the linker-script template; the dummy pseudo-image may
	// have none.
	Template string `json:"template"`

	// Format selects an optional object-copy output format (ihex, srec,
	// binary); empty skips the reformat edge.
	Format string `json:"format"`

	// Meta is the task-meta YAML document for application images, relative
	// to the staging directory.
	Meta string `json:"meta"`
}

// Firmware is the post-processing section of the project description.
type Firmware struct {
	Kernel Image
	Idle   Image
	Apps   []Image

	// DummyTemplate is the linker-script template for the dummy
	// pseudo-image; it has no backing package.
	DummyTemplate string

	// Output is the final flashable record stream.
	Output string
}

// PackageName resolves the package backing an image, falling back to the
// image's own name when no override is configured.
func (i Image) PackageName() string {
	if i.Package != "" {
		return i.Package
	}
	return i.Name
}

// ConfigPath returns the absolute project description path.
func (p *Project) ConfigPath() string {
	return filepath.Join(p.ProjectDir, ConfigFileName)
}

// SavePath returns the absolute persisted-state path.
func (p *Project) SavePath() string {
	return filepath.Join(p.ProjectDir, SaveFileName)
}

// PackageNames returns all package names in lexicographic order, the order
// the generator walks them so regeneration is deterministic.
func (p *Project) PackageNames() []string {
	names := make([]string, 0, len(p.Packages))
	for name := range p.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllImages returns kernel, idle and application images in pipeline order.
func (p *Project) AllImages() []Image {
	images := []Image{p.Firmware.Kernel, p.Firmware.Idle}
	return append(images, p.Firmware.Apps...)
}
