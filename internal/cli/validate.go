package cli

import (
	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/config"
)

// validateResult is the success payload for the validate command.
type validateResult struct {
	Project  string   `json:"project"`
	Packages []string `json:"packages"`
}

func (r validateResult) String() string {
	return "project " + r.Project + " is valid"
}

// NewValidateCommand creates the validate command: load the project
// description and run every configuration check without generating
// anything.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "validate <projectdir>",
		Short:         "Validate a project description",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			project, err := config.Load(args[0])
			if err != nil {
				formatter.Error(errorCode(err), err.Error(), nil)
				return WrapExitError(ExitFailure, "validating project", err)
			}

			formatter.VerboseLog("project %s: %d packages", project.Name, len(project.Packages))
			return formatter.Success(validateResult{
				Project:  project.Name,
				Packages: project.PackageNames(),
			})
		},
	}
}
