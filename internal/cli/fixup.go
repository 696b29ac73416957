package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/embedded-ossdev/barbican/internal/taskmeta"
)

// newKernelFixupCommand creates
// `internal kernel-fixup <out> <kernel> <metadata…>`: fold every task's
// sealed descriptor record into the kernel image's task table.
func newKernelFixupCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "kernel-fixup <out> <kernel> <metadata...>",
		Short:         "Patch task descriptor records into the kernel image",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, kernelPath, metaPaths := args[0], args[1], args[2:]

			kernel, err := os.ReadFile(kernelPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "reading kernel image", err)
			}
			records := make([][]byte, 0, len(metaPaths))
			for _, path := range metaPaths {
				record, err := os.ReadFile(path)
				if err != nil {
					return WrapExitError(ExitCommandError, "reading "+path, err)
				}
				records = append(records, record)
			}

			f.VerboseLog("patching %d records into %s", len(records), out)
			patched, err := taskmeta.Fixup(kernel, records)
			if err != nil {
				return WrapExitError(ExitCommandError, "patching task table", err)
			}
			if err := os.WriteFile(out, patched, 0o755); err != nil {
				return WrapExitError(ExitCommandError, "writing "+out, err)
			}
			return nil
		},
	}
}
