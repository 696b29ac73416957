package cli

import (
	"context"
	"errors"
	"os/exec"

	"github.com/spf13/cobra"
)

// NewInternalCommand creates the `internal` dispatch command. These
// subcommands are the implementation side of the graph's rule table: every
// internal edge in a generated build.ninja runs one of them. They are not
// meant to be typed by hand, so their interfaces stay exactly as the
// generator emits them.
func NewInternalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "internal",
		Short:  "Commands invoked by generated build graphs",
		Hidden: true,
	}

	cmd.AddCommand(newCaptureOutCommand(rootOpts))
	cmd.AddCommand(newPackageDyndepCommand(rootOpts))
	cmd.AddCommand(newGenMemoryLayoutCommand(rootOpts))
	cmd.AddCommand(newGenLdscriptCommand(rootOpts))
	cmd.AddCommand(newGenTaskMetadataCommand(rootOpts))
	cmd.AddCommand(newKernelFixupCommand(rootOpts))
	cmd.AddCommand(newObjcopyCommand(rootOpts))
	cmd.AddCommand(newRelinkElfCommand(rootOpts))
	cmd.AddCommand(newSrecCatCommand(rootOpts))

	return cmd
}

// runTool runs one external toolchain invocation. Non-zero exit is fatal to
// the command, with any captured stderr folded into the error.
func runTool(ctx context.Context, f *OutputFormatter, name string, args ...string) error {
	f.VerboseLog("running %s %v", name, args)

	c := exec.CommandContext(ctx, name, args...)
	out, err := c.CombinedOutput()
	if err == nil {
		return nil
	}

	msg := name + " failed"
	if len(out) > 0 {
		msg += ": " + string(out)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return NewExitError(ExitCommandError, msg)
	}
	return WrapExitError(ExitCommandError, msg, err)
}

// internalFormatter builds the formatter every internal subcommand uses.
func internalFormatter(rootOpts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}
}
