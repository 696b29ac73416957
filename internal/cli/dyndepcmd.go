package cli

import (
	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/dyndep"
)

// newPackageDyndepCommand creates the dependency synthesizer front-end:
// `internal package-dyndep --name <pkg> -j <json> <builddir> <stagingdir> <out>`.
// It introspects a configured package build and writes its dynamic
// dependency declaration plus the introspection snapshot.
func newPackageDyndepCommand(rootOpts *RootOptions) *cobra.Command {
	var name, snapshot, meson string

	cmd := &cobra.Command{
		Use:           "package-dyndep <builddir> <stagingdir> <out>",
		Short:         "Synthesize a package's dynamic dependency declaration",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			builddir, stagingdir, out := args[0], args[1], args[2]

			f.VerboseLog("synthesizing %s from %s", out, builddir)
			err := dyndep.Run(cmd.Context(), meson, name, builddir, stagingdir, out, snapshot)
			if err != nil {
				f.Error("E001", err.Error(), nil)
				return WrapExitError(ExitCommandError, "synthesizing "+out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "package name")
	cmd.Flags().StringVarP(&snapshot, "json", "j", "", "introspection snapshot output path")
	cmd.Flags().StringVar(&meson, "meson", "meson", "build tool executable")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("json")

	return cmd
}
