// SPDX-License-Identifier: MPL-2.0

package rules

import (
	"fmt"
	"os"
	"strings"
)

type (
	// CycleError indicates that declared dependencies form a cycle. The
	// walker skips already-visited paths, so a cycle never fails a run, but
	// the processing order it produces depends on where the walk started.
	CycleError struct {
		// Cycle contains the paths left unordered by the sort.
		Cycle []string
	}

	// Graph is a directed graph of paths. An edge from A to B means A is
	// processed before B.
	Graph struct {
		adjacency map[string][]string
		nodes     []string
		nodeSet   map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		adjacency: make(map[string][]string),
		nodeSet:   make(map[string]bool),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge adds an edge meaning "from" is processed before "to".
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns the successors of node.
func (g *Graph) Edges(node string) []string {
	return append([]string(nil), g.adjacency[node]...)
}

// TopologicalSort orders the nodes with Kahn's algorithm. Nodes at the same
// level keep insertion order. A cycle yields *CycleError.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[string]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]string, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, node)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}
	return result, nil
}

// DependencyGraph builds the graph of declared dependencies reachable from
// dir for phase. Every dependency gets an edge to the directory whose
// cascade declared it; dependency directories are expanded in turn.
func (c *Cache) DependencyGraph(dir string, phase Phase) *Graph {
	g := NewGraph()
	seen := make(map[string]bool)

	var visit func(string)
	visit = func(d string) {
		if seen[d] {
			return
		}
		seen[d] = true
		g.AddNode(d)

		for _, rf := range c.Resolve(d, phase).Files {
			for _, dep := range rf.Dependencies(phase) {
				g.AddEdge(dep, d)
				if info, err := os.Stat(dep); err == nil && info.IsDir() {
					visit(dep)
				}
			}
		}
	}

	if canonical, err := Canonical(dir); err == nil {
		dir = canonical
	}
	visit(dir)
	return g
}
