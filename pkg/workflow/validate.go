package workflow

import (
	"fmt"
	"sort"
)

// Validate checks the workflow graph and returns every problem found: a
// missing or unknown entry node, edges to unknown nodes, nodes unreachable
// from the entry, and cycles. A workflow with any error must not be
// registered for execution.
func Validate(w *Workflow) []error {
	var errs []error

	if w.EntryNodeID == "" {
		errs = append(errs, fmt.Errorf("workflow %q has no entry node", w.Name))
		return errs
	}
	if _, ok := w.Nodes[w.EntryNodeID]; !ok {
		errs = append(errs, fmt.Errorf("workflow %q entry node %q not found", w.Name, w.EntryNodeID))
		return errs
	}

	// Index node ids so traversal state lives in flat slices instead of
	// per-visit maps.
	ids := make([]string, 0, len(w.Nodes))
	for id := range w.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	for _, id := range ids {
		for _, next := range w.Nodes[id].NextNodes {
			if _, ok := index[next]; !ok {
				errs = append(errs, fmt.Errorf("node %q references unknown node %q", id, next))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}

	reachable := make([]bool, len(ids))
	markReachable(w, ids, index, index[w.EntryNodeID], reachable)

	for i, id := range ids {
		if !reachable[i] {
			errs = append(errs, fmt.Errorf("node %q is not reachable from entry node %q", id, w.EntryNodeID))
		}
	}

	errs = append(errs, findCycles(w, ids, index)...)
	return errs
}

// markReachable flags every node reachable from start via forward edges
func markReachable(w *Workflow, ids []string, index map[string]int, start int, reachable []bool) {
	stack := []int{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[current] {
			continue
		}
		reachable[current] = true

		for _, next := range w.Nodes[ids[current]].NextNodes {
			if ni := index[next]; !reachable[ni] {
				stack = append(stack, ni)
			}
		}
	}
}

// dfsFrame tracks one node on the traversal stack together with how many of
// its successor edges have been explored.
type dfsFrame struct {
	node int
	edge int
}

// findCycles detects back edges with an iterative path-tracking DFS, started
// from the entry node and then from any node not yet visited. Recursion is
// avoided so large graphs cannot overflow the stack.
func findCycles(w *Workflow, ids []string, index map[string]int) []error {
	var errs []error

	visited := make([]bool, len(ids))
	onPath := make([]bool, len(ids))

	runFrom := func(start int) {
		if visited[start] {
			return
		}
		stack := []dfsFrame{{node: start}}
		visited[start] = true
		onPath[start] = true

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]
			node := w.Nodes[ids[frame.node]]

			if frame.edge >= len(node.NextNodes) {
				onPath[frame.node] = false
				stack = stack[:len(stack)-1]
				continue
			}

			next := index[node.NextNodes[frame.edge]]
			frame.edge++

			if onPath[next] {
				errs = append(errs, fmt.Errorf("cycle detected involving node %q", ids[next]))
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			onPath[next] = true
			stack = append(stack, dfsFrame{node: next})
		}
	}

	runFrom(index[w.EntryNodeID])
	for i := range ids {
		runFrom(i)
	}
	return errs
}
