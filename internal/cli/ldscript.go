package cli

import (
	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/layout"
)

// newGenLdscriptCommand creates
// `internal gen-ldscript --name <image> <template> <layout> <out>`:
// render one image's linker script from the computed memory layout.
func newGenLdscriptCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:           "gen-ldscript <template> <layout> <out>",
		Short:         "Render a linker script from the memory layout",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			template, layoutPath, out := args[0], args[1], args[2]

			l, err := layout.ReadFile(layoutPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading layout", err)
			}
			f.VerboseLog("rendering %s for %s", out, name)
			if err := layout.RenderScript(template, l, name, out); err != nil {
				return WrapExitError(ExitCommandError, "rendering "+out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "image name")
	cmd.MarkFlagRequired("name")

	return cmd
}
