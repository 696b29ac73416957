package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

// The remaining internal commands delegate to the cross toolchain. They
// exist so the graph only ever invokes barbican: tool lookup, argument
// spelling and failure reporting stay in one place instead of being baked
// into generated command lines.

// objcopyFormats maps image formats to the tool's output target names.
var objcopyFormats = map[string]string{
	"ihex":   "ihex",
	"srec":   "srec",
	"binary": "binary",
}

// newObjcopyCommand creates
// `internal objcopy -f <format> -m <map> <out> <in>`: reformat a relinked
// image with the cross objcopy.
func newObjcopyCommand(rootOpts *RootOptions) *cobra.Command {
	var format, moduleMap, tool string

	cmd := &cobra.Command{
		Use:           "objcopy <out> <in>",
		Short:         "Reformat a relinked image",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, in := args[0], args[1]

			target, ok := objcopyFormats[format]
			if !ok {
				return NewExitError(ExitCommandError, "unknown objcopy format "+format)
			}
			f.VerboseLog("objcopy %s -> %s (%s, map %s)", in, out, target, moduleMap)
			return runTool(cmd.Context(), f, tool, "-O", target, in, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format (ihex|srec|binary)")
	cmd.Flags().StringVarP(&moduleMap, "map", "m", "", "package introspection snapshot")
	cmd.Flags().StringVar(&tool, "tool", "arm-none-eabi-objcopy", "objcopy executable")
	cmd.MarkFlagRequired("format")

	return cmd
}

// newRelinkElfCommand creates
// `internal relink-elf -l <ldscript> -m <map> <out> <in>`: relink an image
// against its generated linker script.
func newRelinkElfCommand(rootOpts *RootOptions) *cobra.Command {
	var ldscript, moduleMap, driver string

	cmd := &cobra.Command{
		Use:           "relink-elf <out> <in>",
		Short:         "Relink an image against a generated linker script",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, in, extra := args[0], args[1], args[2:]

			f.VerboseLog("relinking %s -> %s with %s (map %s)", in, out, ldscript, moduleMap)
			toolArgs := append([]string{in, "-T", ldscript, "-o", out}, extra...)
			return runTool(cmd.Context(), f, driver, toolArgs...)
		},
	}

	cmd.Flags().StringVarP(&ldscript, "linkerscript", "l", "", "generated linker script")
	cmd.Flags().StringVarP(&moduleMap, "map", "m", "", "package introspection snapshot")
	cmd.Flags().StringVar(&driver, "driver", "arm-none-eabi-gcc", "link driver executable")
	cmd.MarkFlagRequired("linkerscript")

	return cmd
}

// srecInputFormats maps payload file extensions to srec_cat input format
// flags; anything unrecognized is treated as raw binary.
var srecInputFormats = map[string]string{
	".hex":  "-intel",
	".srec": "-motorola",
}

// newSrecCatCommand creates
// `internal srec-cat --format <fmt> <out> <in…>`: merge every image payload
// into the final flashable record stream.
func newSrecCatCommand(rootOpts *RootOptions) *cobra.Command {
	var format, tool string

	cmd := &cobra.Command{
		Use:           "srec-cat <out> <in...>",
		Short:         "Merge image payloads into the flashable output",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internalFormatter(rootOpts, cmd)
			out, inputs := args[0], args[1:]

			var outFlag string
			switch format {
			case "ihex":
				outFlag = "-intel"
			case "srec":
				outFlag = "-motorola"
			default:
				return NewExitError(ExitCommandError, "unknown merge format "+format)
			}

			var toolArgs []string
			for _, in := range inputs {
				toolArgs = append(toolArgs, in, srecInputFormat(in))
			}
			toolArgs = append(toolArgs, "-o", out, outFlag)

			f.VerboseLog("merging %d payloads into %s", len(inputs), out)
			return runTool(cmd.Context(), f, tool, toolArgs...)
		},
	}

	cmd.Flags().StringVar(&format, "format", "ihex", "output record format (ihex|srec)")
	cmd.Flags().StringVar(&tool, "tool", "srec_cat", "srec_cat executable")

	return cmd
}

func srecInputFormat(in string) string {
	if flag, ok := srecInputFormats[filepath.Ext(in)]; ok {
		return flag
	}
	return "-binary"
}
