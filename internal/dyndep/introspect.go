package dyndep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
)

// Snapshot is the build tool's post-configure introspection payload.
type Snapshot struct {
	// BuildsystemFiles lists the build-system description files; editing
	// one triggers a reconfigure and rebuild.
	BuildsystemFiles []string `json:"buildsystem_files"`

	// Targets lists build targets with their source groups.
	Targets []Target `json:"targets"`

	// Installed maps each installed file to its absolute install
	// destination.
	Installed map[string]string `json:"installed"`
}

// Target is one build target. Source groups may be absent entirely.
type Target struct {
	TargetSources []TargetSources `json:"target_sources,omitempty"`
}

// TargetSources is one group of plain and generated sources.
type TargetSources struct {
	Sources          []string `json:"sources,omitempty"`
	GeneratedSources []string `json:"generated_sources,omitempty"`
}

// ParseSnapshot decodes a raw introspection payload. A payload that is not
// valid structured data is an INTROSPECTION_FORMAT error.
func ParseSnapshot(raw []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, &Error{Kind: KindFormat, Message: fmt.Sprintf("parse introspection payload: %v", err)}
	}
	return &snap, nil
}

// Introspect runs `meson introspect --all` against a configured build
// directory and returns the raw payload. A non-zero exit is a SUBPROCESS
// error carrying the captured output.
func Introspect(ctx context.Context, meson, builddir string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, meson, "introspect", "--all", "-i", builddir)
	out, err := cmd.Output()
	if err != nil {
		e := &Error{Kind: KindSubprocess, Message: fmt.Sprintf("meson introspect %s: %v", builddir, err)}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.Output = exitErr.Stderr
		}
		return nil, e
	}
	return out, nil
}
