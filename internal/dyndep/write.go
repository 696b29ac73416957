package dyndep

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
)

// dyndepVersion is the declaration format version marker the executor
// understands.
const dyndepVersion = 1

// WriteDeclaration serializes a declaration in the ninja dyndep format:
// a version marker, then one `build <target> | <outs…>: dyndep | <ins…>`
// block per extended edge, each with restat semantics so unchanged outputs
// do not force downstream rebuilds.
func WriteDeclaration(w io.Writer, decl *Declaration) error {
	if _, err := fmt.Fprintf(w, "ninja_dyndep_version = %d\n", dyndepVersion); err != nil {
		return err
	}
	if err := writeBlock(w, decl.Compile); err != nil {
		return err
	}
	return writeBlock(w, decl.Install)
}

func writeBlock(w io.Writer, ext EdgeExtension) error {
	var buf bytes.Buffer
	buf.WriteString("build " + ext.Target)
	if len(ext.ImplicitOutputs) > 0 {
		buf.WriteString(" |")
	}
	for _, f := range ext.ImplicitOutputs {
		buf.WriteString(" $\n " + f)
	}
	buf.WriteString(": dyndep")
	if len(ext.ImplicitInputs) > 0 {
		buf.WriteString(" |")
	}
	for _, f := range ext.ImplicitInputs {
		buf.WriteString(" $\n " + f)
	}
	buf.WriteString("\n  restat = 1\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// Run is the package-dyndep internal command: introspect the configured
// build directory, persist the raw snapshot for downstream edges, then
// synthesize and write the declaration file. Every failure is fatal and
// leaves no partial declaration behind.
func Run(ctx context.Context, meson, pkg, builddir, stagingDir, dyndepPath, snapshotPath string) error {
	raw, err := Introspect(ctx, meson, builddir)
	if err != nil {
		return err
	}
	snap, err := ParseSnapshot(raw)
	if err != nil {
		return err
	}

	if err := os.WriteFile(snapshotPath, raw, 0o644); err != nil {
		return fmt.Errorf("write introspection snapshot: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteDeclaration(&buf, Synthesize(pkg, snap, stagingDir)); err != nil {
		return err
	}
	if err := os.WriteFile(dyndepPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write dyndep file: %w", err)
	}
	return nil
}
