package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/layout"
)

// newGenMemoryLayoutCommand creates `internal gen-memory-layout`: read the
// section sizes of every resolved image and write the firmware memory
// layout. --dummy writes an empty layout, used to bootstrap linker-script
// generation before any image exists.
func newGenMemoryLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		images []string
		prefix string
		dummy  bool
	)

	cmd := &cobra.Command{
		Use:           "gen-memory-layout <out>",
		Short:         "Compute the firmware memory layout",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out := args[0]

			base, err := strconv.ParseUint(prefix, 0, 32)
			if err != nil {
				return WrapExitError(ExitCommandError, "parsing --prefix", err)
			}

			l := layout.Dummy(uint32(base))
			if !dummy {
				f.VerboseLog("computing layout over %d images", len(images))
				l, err = layout.Compute(uint32(base), images)
				if err != nil {
					return WrapExitError(ExitCommandError, "computing layout", err)
				}
			}
			if err := l.WriteFile(out); err != nil {
				return WrapExitError(ExitCommandError, "writing "+out, err)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&images, "image", "l", nil, "resolved image, repeatable, in flash order")
	cmd.Flags().StringVar(&prefix, "prefix", "0x08000000", "flash placement base address")
	cmd.Flags().BoolVar(&dummy, "dummy", false, "write an empty layout")

	return cmd
}
