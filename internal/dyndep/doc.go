// Package dyndep synthesizes ninja dynamic-dependency declarations for
// configured packages.
//
// After a package's configure step runs, the external build tool knows
// implicit inputs and outputs that the static graph could not: buildsystem
// description files, source lists, installed files and their destinations.
// This package queries that introspection snapshot and turns it into the
// two-block dyndep file (compile, install) the graph executor loads lazily
// before resolving the affected edges.
package dyndep
