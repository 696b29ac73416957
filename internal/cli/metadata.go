package cli

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/config"
	"github.com/embedded-ossdev/barbican/internal/taskmeta"
)

// newGenTaskMetadataCommand creates
// `internal gen-task-metadata-bin <out> <in> <projectdir>`: build one
// task's sealed descriptor record from its staged task-meta document and
// its relinked image.
func newGenTaskMetadataCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "gen-task-metadata-bin <out> <in> <projectdir>",
		Short:         "Generate a sealed task descriptor record",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, in, projectDir := args[0], args[1], args[2]

			record, err := buildTaskRecord(in, projectDir)
			if err != nil {
				f.Error(errorCode(err), err.Error(), nil)
				return WrapExitError(ExitCommandError, "building descriptor for "+in, err)
			}
			if err := os.WriteFile(out, record, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "writing "+out, err)
			}
			return nil
		},
	}
}

func buildTaskRecord(in, projectDir string) ([]byte, error) {
	project, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	app, err := findApp(project, imageName(in))
	if err != nil {
		return nil, err
	}

	metaPath := filepath.Join(project.StagingDir, strings.TrimPrefix(app.Meta, "/"))
	cfg, err := taskmeta.LoadTaskConfig(metaPath)
	if err != nil {
		return nil, err
	}
	m, err := cfg.ToMeta()
	if err != nil {
		return nil, err
	}

	image, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	if err := taskmeta.FillLayout(m, image); err != nil {
		return nil, err
	}
	if err := m.Seal(image, sha256.Sum256); err != nil {
		return nil, err
	}
	return m.Encode()
}

func findApp(project *config.Project, name string) (config.Image, error) {
	for _, app := range project.Firmware.Apps {
		if app.Name == name {
			return app, nil
		}
	}
	return config.Image{}, NewExitError(ExitCommandError, "no application image named "+name)
}

// imageName recovers the image name from a relinked path like
// firmware/<name>.reloc.elf.
func imageName(in string) string {
	base := filepath.Base(in)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, ".reloc")
}
