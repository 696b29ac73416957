package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSource string

// rawProject mirrors the CUE document shape; packages stay untyped here so
// unrecognized options can be routed into the extension mapping.
type rawProject struct {
	Name string `json:"name"`

	SourceDir  string `json:"source_dir"`
	BuildDir   string `json:"build_dir"`
	StagingDir string `json:"staging_dir"`

	CrossFile      string   `json:"cross_file"`
	DTS            string   `json:"dts"`
	DTSIncludeDirs []string `json:"dts_include_dirs"`

	Packages map[string]map[string]any `json:"packages"`

	Firmware rawFirmware `json:"firmware"`
}

type rawFirmware struct {
	Kernel        Image   `json:"kernel"`
	Idle          Image   `json:"idle"`
	Apps          []Image `json:"apps"`
	DummyTemplate string  `json:"dummy_template"`
	Output        string  `json:"output"`
}

// Image decodes directly; its CUE field names match the json tags.

// Load reads, validates and decodes the project description from
// projectDir/project.cue. The returned Project has passed all configuration
// checks (schema, dangling dependencies, cycles) and is immutable for the
// rest of the generation run.
func Load(projectDir string) (*Project, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	path := filepath.Join(absDir, ConfigFileName)
	source, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, newConfigError(ErrCodeNotFound, "", "project description not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read project description: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile embedded schema: %w", err)
	}
	doc := ctx.CompileBytes(source, cue.Filename(path))
	if err := doc.Err(); err != nil {
		return nil, newConfigError(ErrCodeParse, "", "%v", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Project")).Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, newConfigError(ErrCodeParse, "", "%v", err)
	}

	var raw rawProject
	if err := unified.Decode(&raw); err != nil {
		return nil, newConfigError(ErrCodeParse, "", "decode project: %v", err)
	}

	project, err := buildProject(absDir, &raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(project); err != nil {
		return nil, err
	}
	return project, nil
}

// buildProject turns the raw decoded document into the typed model with
// resolved per-package directories.
func buildProject(projectDir string, raw *rawProject) (*Project, error) {
	p := &Project{
		Name:           raw.Name,
		ProjectDir:     projectDir,
		SourceDir:      resolveDir(projectDir, raw.SourceDir),
		BuildDir:       resolveDir(projectDir, raw.BuildDir),
		StagingDir:     resolveDir(projectDir, raw.StagingDir),
		CrossFile:      raw.CrossFile,
		DTS:            raw.DTS,
		DTSIncludeDirs: raw.DTSIncludeDirs,
		Packages:       make(map[string]*Package, len(raw.Packages)),
		Firmware: Firmware{
			Kernel:        raw.Firmware.Kernel,
			Idle:          raw.Firmware.Idle,
			Apps:          raw.Firmware.Apps,
			DummyTemplate: raw.Firmware.DummyTemplate,
			Output:        raw.Firmware.Output,
		},
	}

	for name, options := range raw.Packages {
		pkg, err := buildPackage(p, name, options)
		if err != nil {
			return nil, err
		}
		p.Packages[name] = pkg
	}
	return p, nil
}

// buildPackage decodes one package block. Recognized options become named
// fields; any other scalar option lands in Extra, and non-scalar unrecognized
// options are configuration errors rather than silently dropped values.
func buildPackage(p *Project, name string, options map[string]any) (*Package, error) {
	pkg := &Package{
		Name:       name,
		SourceDir:  filepath.Join(p.SourceDir, name),
		BuildDir:   filepath.Join(p.BuildDir, name),
		StagingDir: p.StagingDir,
		Extra:      make(map[string]string),
	}

	for key, value := range options {
		switch key {
		case "deps":
			deps, err := stringList(value)
			if err != nil {
				return nil, newConfigError(ErrCodeBadOption, name+".deps", "%v", err)
			}
			pkg.Deps = deps
		case "config_file":
			s, ok := value.(string)
			if !ok {
				return nil, newConfigError(ErrCodeBadOption, name+".config_file", "want string, got %T", value)
			}
			pkg.ConfigFile = s
		case "build_opts":
			opts, err := stringList(value)
			if err != nil {
				return nil, newConfigError(ErrCodeBadOption, name+".build_opts", "%v", err)
			}
			pkg.BuildOpts = opts
		default:
			switch v := value.(type) {
			case string:
				pkg.Extra[key] = v
			case bool, int, int64, uint64:
				pkg.Extra[key] = fmt.Sprint(v)
			default:
				return nil, newConfigError(ErrCodeBadOption, name+"."+key,
					"unrecognized option must be a scalar, got %T", value)
			}
		}
	}
	return pkg, nil
}

func stringList(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("want list of strings, got %T", value)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("list entry %d: want string, got %T", i, item)
		}
		out[i] = s
	}
	return out, nil
}

func resolveDir(projectDir, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(projectDir, dir)
}
