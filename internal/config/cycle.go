package config

import (
	"sort"
	"strings"
)

// findDependencyCycle detects cycles in the package dependency relation.
//
// A cyclic dependency graph cannot be scheduled by the executor, so unlike
// most validation this runs on the whole relation at once: Tarjan's
// algorithm finds strongly connected components, and any component with more
// than one member (self-loops are caught earlier) is a cycle. Returns one
// cycle path, or nil for a DAG.
func findDependencyCycle(p *Project) []string {
	graph := make(map[string][]string, len(p.Packages))
	for _, name := range p.PackageNames() {
		graph[name] = p.Packages[name].Deps
	}

	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			return reconstructCyclePath(scc, graph)
		}
	}
	return nil
}

// cycleError formats a dependency cycle as a fatal configuration error.
func cycleError(path []string) *ConfigError {
	return newConfigError(ErrCodeCycle, path[0],
		"dependency cycle: %s", strings.Join(path, " -> "))
}

// tarjanSCC finds strongly connected components in the dependency graph.
// Nodes are visited in the caller's map insertion order; the graph is built
// from sorted package names, so the result is deterministic.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range sortedGraphNodes(graph) {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sortedGraphNodes(graph map[string][]string) []string {
	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	// Go map iteration order is not stable; sort for determinism.
	sort.Strings(nodes)
	return nodes
}

// reconstructCyclePath walks edges inside one SCC until it returns to the
// starting node, yielding a closed path like [a, b, c, a].
func reconstructCyclePath(scc []string, graph map[string][]string) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := map[string]bool{current: true}

	for {
		next := ""
		for _, neighbor := range graph[current] {
			if !inSCC[neighbor] {
				continue
			}
			if neighbor == start && len(path) > 1 {
				return append(path, start)
			}
			if !visited[neighbor] {
				next = neighbor
				break
			}
		}
		if next == "" {
			// Cannot extend further; close the path where it stands.
			return append(path, start)
		}
		visited[next] = true
		path = append(path, next)
		current = next
	}
}
