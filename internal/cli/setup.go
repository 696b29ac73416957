package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/config"
	"github.com/embedded-ossdev/barbican/internal/generator"
)

// SetupOptions holds flags for the setup command.
type SetupOptions struct {
	// Barbican overrides the barbican executable recorded in the graph.
	// Empty resolves to the running executable.
	Barbican string

	// Meson is the external build tool executable.
	Meson string
}

// setupResult is the success payload reported after generation.
type setupResult struct {
	Project   string `json:"project"`
	Packages  int    `json:"packages"`
	GraphPath string `json:"graph_path"`
	Changed   bool   `json:"changed"`
}

func (r setupResult) String() string {
	if !r.Changed {
		return "build graph up to date: " + r.GraphPath
	}
	return "wrote build graph: " + r.GraphPath
}

// saveState is the persisted setup state. The reconfiguration edge depends
// on it, so it is only rewritten when its content actually changes.
type saveState struct {
	Project  string   `json:"project"`
	Packages []string `json:"packages"`
	Output   string   `json:"output"`
}

// NewSetupCommand creates the setup command: load and validate the project
// description, then emit the build graph into the build directory.
func NewSetupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetupOptions{}

	cmd := &cobra.Command{
		Use:           "setup <projectdir>",
		Short:         "Generate the build graph for a project",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runSetup(formatter, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Barbican, "barbican", "", "barbican executable recorded in the graph")
	cmd.Flags().StringVar(&opts.Meson, "meson", "meson", "build tool executable recorded in the graph")

	return cmd
}

func runSetup(f *OutputFormatter, projectDir string, opts *SetupOptions) error {
	runID := uuid.NewString()
	f.RunID = runID
	logger := slog.Default().With("run_id", runID, "project_dir", projectDir)

	project, err := config.Load(projectDir)
	if err != nil {
		f.Error(errorCode(err), err.Error(), nil)
		return WrapExitError(ExitFailure, "loading project", err)
	}
	logger.Info("project loaded",
		"project", project.Name,
		"packages", len(project.Packages))

	barbicanPath := opts.Barbican
	if barbicanPath == "" {
		if exe, err := os.Executable(); err == nil {
			barbicanPath = exe
		}
	}

	var graph bytes.Buffer
	gen := generator.New(&graph, project, generator.Options{
		BarbicanPath: barbicanPath,
		MesonPath:    opts.Meson,
	})
	if err := gen.Generate(); err != nil {
		f.Error("E001", err.Error(), nil)
		return WrapExitError(ExitFailure, "generating build graph", err)
	}

	if err := os.MkdirAll(project.BuildDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "creating build directory", err)
	}
	graphPath := filepath.Join(project.BuildDir, "build.ninja")
	changed, err := writeIfChanged(graphPath, graph.Bytes())
	if err != nil {
		return WrapExitError(ExitCommandError, "writing build graph", err)
	}
	if err := writeSaveState(project); err != nil {
		return WrapExitError(ExitCommandError, "writing save state", err)
	}
	logger.Info("build graph written", "path", graphPath, "changed", changed)

	return f.Success(setupResult{
		Project:   project.Name,
		Packages:  len(project.Packages),
		GraphPath: graphPath,
		Changed:   changed,
	})
}

// writeSaveState persists the resolved configuration summary next to the
// project description.
func writeSaveState(project *config.Project) error {
	state := saveState{
		Project:  project.Name,
		Packages: project.PackageNames(),
		Output:   project.Firmware.Output,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	_, err = writeIfChanged(project.SavePath(), append(data, '\n'))
	return err
}

// writeIfChanged writes data to path only when the current content differs.
// The graph and save files gate the reconfiguration edge, so an unchanged
// setup run must not touch their mtimes.
func writeIfChanged(path string, data []byte) (bool, error) {
	current, err := os.ReadFile(path)
	if err == nil && bytes.Equal(current, data) {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
