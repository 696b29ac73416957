// Package generator assembles the project's static build graph.
//
// One generation pass walks the validated project model and writes a
// complete ninja build file: the rule table, the reconfiguration edge, one
// setup/dyndep/compile/install quintet per package, and the firmware
// post-processing pipeline (memory layout, linker scripts, relinking,
// object reformatting, task metadata, kernel fixup, image merge).
//
// Generation is deterministic: packages are walked in sorted name order and
// every emission path produces identical bytes for identical configuration,
// so regenerating an unchanged project is byte-for-byte idempotent.
package generator
