package cli

import (
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// newCaptureOutCommand creates `internal capture-out <out> <cmdline…>`:
// run a subprocess and capture its standard output into a file. The output
// file is only written on success, so a failed capture never leaves a
// half-written graph input behind.
func newCaptureOutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "capture-out <out> <cmdline...>",
		Short:         "Run a command and capture its stdout to a file",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, cmdline := args[0], args[1:]

			f.VerboseLog("capturing %v into %s", cmdline, out)
			c := exec.CommandContext(cmd.Context(), cmdline[0], cmdline[1:]...)
			c.Stderr = f.GetErrWriter()
			captured, err := c.Output()
			if err != nil {
				return WrapExitError(ExitCommandError, "running "+cmdline[0], err)
			}
			if err := os.WriteFile(out, captured, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "writing "+out, err)
			}
			return nil
		},
	}
}
