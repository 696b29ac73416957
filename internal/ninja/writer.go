// Package ninja writes build-graph description files in the ninja syntax:
// variables, rules and build edges with explicit, implicit and order-only
// inputs, implicit outputs and per-edge variable bindings.
//
// Output is deterministic: identical calls produce identical bytes, which is
// what makes regeneration byte-for-byte idempotent and golden-testable.
package ninja

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Writer emits a ninja build file. It tracks declared edge outputs and
// rejects duplicates, since the executor refuses graphs where two edges
// produce the same path.
type Writer struct {
	w     io.Writer
	width int
	seen  map[string]bool
	err   error
}

// NewWriter creates a Writer emitting to w, wrapping long lines at width
// columns with ninja `$` continuations.
func NewWriter(w io.Writer, width int) *Writer {
	return &Writer{w: w, width: width, seen: make(map[string]bool)}
}

// Err returns the first write error encountered, if any.
func (n *Writer) Err() error { return n.err }

// Comment writes a `#` comment line.
func (n *Writer) Comment(text string) {
	n.writeLine("# " + text)
}

// Newline writes a blank separator line.
func (n *Writer) Newline() {
	if n.err != nil {
		return
	}
	_, n.err = io.WriteString(n.w, "\n")
}

// Variable writes a top-level `name = value` binding. Empty values are
// skipped entirely.
func (n *Writer) Variable(name, value string) {
	if value == "" {
		return
	}
	n.writeWrapped(fmt.Sprintf("%s = %s", name, value), "")
}

// RuleOptions carries the optional attributes of a rule declaration.
type RuleOptions struct {
	Description string
	Pool        string
	Generator   bool
	Restat      bool
}

// Rule writes a rule declaration with its indented bindings.
func (n *Writer) Rule(name, command string, opts RuleOptions) {
	n.writeWrapped("rule "+name, "")
	n.writeWrapped("command = "+command, "  ")
	if opts.Description != "" {
		n.writeWrapped("description = "+opts.Description, "  ")
	}
	if opts.Pool != "" {
		n.writeWrapped("pool = "+opts.Pool, "  ")
	}
	if opts.Generator {
		n.writeWrapped("generator = 1", "  ")
	}
	if opts.Restat {
		n.writeWrapped("restat = 1", "  ")
	}
}

// Edge describes one build statement.
type Edge struct {
	Outputs         []string
	Rule            string
	Inputs          []string
	Implicit        []string
	OrderOnly       []string
	ImplicitOutputs []string

	// Variables are per-edge bindings, written in sorted key order.
	Variables map[string]string
}

// Build writes a build statement. It fails if the edge has no outputs or if
// any output (implicit outputs included) was already declared by an earlier
// edge.
func (n *Writer) Build(e Edge) error {
	if len(e.Outputs) == 0 {
		return fmt.Errorf("build edge for rule %q has no outputs", e.Rule)
	}
	for _, out := range append(append([]string{}, e.Outputs...), e.ImplicitOutputs...) {
		if n.seen[out] {
			return fmt.Errorf("duplicate edge output %q", out)
		}
		n.seen[out] = true
	}

	var line strings.Builder
	line.WriteString("build ")
	line.WriteString(joinPaths(e.Outputs))
	if len(e.ImplicitOutputs) > 0 {
		line.WriteString(" | ")
		line.WriteString(joinPaths(e.ImplicitOutputs))
	}
	line.WriteString(": ")
	line.WriteString(e.Rule)
	if len(e.Inputs) > 0 {
		line.WriteString(" ")
		line.WriteString(joinPaths(e.Inputs))
	}
	if len(e.Implicit) > 0 {
		line.WriteString(" | ")
		line.WriteString(joinPaths(e.Implicit))
	}
	if len(e.OrderOnly) > 0 {
		line.WriteString(" || ")
		line.WriteString(joinPaths(e.OrderOnly))
	}
	n.writeWrapped(line.String(), "")

	for _, key := range sortedKeys(e.Variables) {
		n.writeWrapped(fmt.Sprintf("%s = %s", key, e.Variables[key]), "  ")
	}
	return n.err
}

// Default writes a default-target statement.
func (n *Writer) Default(targets ...string) {
	n.writeWrapped("default "+joinPaths(targets), "")
}

// Phony writes a phony alias edge.
func (n *Writer) Phony(output string, inputs ...string) error {
	return n.Build(Edge{Outputs: []string{output}, Rule: "phony", Inputs: inputs})
}

// EscapePath escapes the characters ninja treats specially in paths.
func EscapePath(path string) string {
	path = strings.ReplaceAll(path, "$", "$$")
	path = strings.ReplaceAll(path, " ", "$ ")
	return strings.ReplaceAll(path, ":", "$:")
}

func joinPaths(paths []string) string {
	escaped := make([]string, len(paths))
	for i, p := range paths {
		escaped[i] = EscapePath(p)
	}
	return strings.Join(escaped, " ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeWrapped writes one logical line, wrapping at the configured width
// with ` $` continuations. Continuation lines are indented four spaces past
// the leading indent.
func (n *Writer) writeWrapped(text, indent string) {
	if n.err != nil {
		return
	}
	line := indent + text
	for len(line) > n.width {
		// Break on the last space that keeps room for the ` $` marker.
		space := strings.LastIndex(line[:n.width-2], " ")
		if space <= len(indent) {
			break
		}
		// Never split inside an escape: a `$ ` pair is a literal space.
		for space > len(indent) && space > 0 && line[space-1] == '$' {
			space = strings.LastIndex(line[:space-1], " ")
		}
		if space <= len(indent) {
			break
		}
		n.writeLine(line[:space] + " $")
		line = indent + "    " + line[space+1:]
	}
	n.writeLine(line)
}

func (n *Writer) writeLine(line string) {
	if n.err != nil {
		return
	}
	_, n.err = io.WriteString(n.w, line+"\n")
}
