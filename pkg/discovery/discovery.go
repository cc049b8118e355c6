// Package discovery enumerates every distinct acyclic execution path through
// a process structure: entry points, exit points, branch paths and the happy
// path, bounded so pathological graphs cannot blow up the traversal.
package discovery

import (
	"errors"
	"fmt"
	"sort"

	"github.com/flowprobe/flowprobe/pkg/models"
)

const (
	// MaxPathLength is the hard cap on a single path. Branches that reach it
	// are abandoned rather than recorded.
	MaxPathLength = 100

	// DefaultMaxPaths bounds the whole catalogue when the caller does not.
	DefaultMaxPaths = 50
)

// ErrEmptyStructure is returned when there is nothing to traverse.
var ErrEmptyStructure = errors.New("process structure has no nodes")

// Options tunes one discovery run.
type Options struct {
	// MaxPaths caps the catalogue size; DefaultMaxPaths when zero.
	MaxPaths int

	// IncludePartialPaths records branches cut off at MaxPathLength instead
	// of silently abandoning them.
	IncludePartialPaths bool
}

// stackFrame is one pending node in the iterative depth-first search. Each
// frame owns its path-so-far, decision list and visited set; the visited set
// is per-path, not global, which is what lets one node appear in many
// distinct paths while no path ever revisits it.
type stackFrame struct {
	nodeID    string
	path      []string
	decisions []models.DecisionPoint
	visited   map[string]struct{}
}

// DiscoverPaths walks the step graph from every entry point and returns the
// deduplicated path catalogue.
func DiscoverPaths(structure *models.ProcessStructure, opts Options) (*models.DiscoveryResult, error) {
	if structure == nil || len(structure.Nodes) == 0 {
		return nil, ErrEmptyStructure
	}

	maxPaths := opts.MaxPaths
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	graph := buildGraph(structure)

	result := &models.DiscoveryResult{
		Paths:       make([]*models.ScenarioPath, 0),
		EntryPoints: graph.entryPoints,
		ExitPoints:  graph.exitPoints,
	}
	result.Warnings = append(result.Warnings, graph.warnings...)

	seen := make(map[string]struct{})
	decisionNodes := make(map[string]struct{})

search:
	for _, entry := range graph.entryPoints {
		stack := []*stackFrame{{
			nodeID:  entry,
			path:    []string{entry},
			visited: map[string]struct{}{entry: {}},
		}}

		for len(stack) > 0 {
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if len(frame.path) >= MaxPathLength {
				if opts.IncludePartialPaths {
					if recordPath(result, seen, decisionNodes, frame, maxPaths) {
						break search
					}
				}

				continue
			}

			outgoing := graph.adjacency[frame.nodeID]

			// A declared exit or a dead end both terminate the path. Dead
			// ends are recorded too: surfacing a malformed graph beats
			// silently dropping it.
			if graph.exitSet[frame.nodeID] || len(outgoing) == 0 {
				if recordPath(result, seen, decisionNodes, frame, maxPaths) {
					break search
				}

				continue
			}

			isDecision := len(outgoing) > 1

			// Push in reverse so the first-authored connection is explored
			// first off the LIFO stack.
			for i := len(outgoing) - 1; i >= 0; i-- {
				connection := outgoing[i]
				if _, alreadyVisited := frame.visited[connection.To]; alreadyVisited {
					continue
				}

				stack = append(stack, extendFrame(frame, connection, isDecision))
			}
		}
	}

	result.TotalBranches = countBranches(graph.adjacency, decisionNodes)

	return result, nil
}

// recordPath appends a finished path unless it is a duplicate; returns true
// when the catalogue just hit its cap and discovery must stop.
func recordPath(result *models.DiscoveryResult, seen, decisionNodes map[string]struct{}, frame *stackFrame, maxPaths int) bool {
	hash := models.HashSteps(frame.path)
	if _, duplicate := seen[hash]; duplicate {
		return false
	}

	seen[hash] = struct{}{}

	for _, decision := range frame.decisions {
		decisionNodes[decision.NodeID] = struct{}{}
	}

	result.Paths = append(result.Paths, &models.ScenarioPath{
		StepIDs:    frame.path,
		Decisions:  frame.decisions,
		TotalSteps: len(frame.path),
		PathHash:   hash,
	})

	if len(result.Paths) >= maxPaths {
		result.Truncated = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("path catalogue truncated at %d paths; the process has more distinct paths", maxPaths))

		return true
	}

	return false
}

// extendFrame copies a frame forward across one connection.
func extendFrame(frame *stackFrame, connection *models.ProcessConnection, isDecision bool) *stackFrame {
	path := make([]string, len(frame.path), len(frame.path)+1)
	copy(path, frame.path)
	path = append(path, connection.To)

	visited := make(map[string]struct{}, len(frame.visited)+1)
	for id := range frame.visited {
		visited[id] = struct{}{}
	}
	visited[connection.To] = struct{}{}

	decisions := frame.decisions
	if isDecision && connection.Label != "" {
		decisions = make([]models.DecisionPoint, len(frame.decisions), len(frame.decisions)+1)
		copy(decisions, frame.decisions)
		decisions = append(decisions, models.DecisionPoint{
			NodeID:     connection.From,
			Condition:  connection.Label,
			NextNodeID: connection.To,
		})
	}

	return &stackFrame{
		nodeID:    connection.To,
		path:      path,
		decisions: decisions,
		visited:   visited,
	}
}

// countBranches sizes the union of nodes that produced a recorded decision
// and nodes with more than one outgoing edge; the latter catches decision
// nodes whose branches were never reached within the path budget.
func countBranches(adjacency map[string][]*models.ProcessConnection, decisionNodes map[string]struct{}) int {
	union := make(map[string]struct{}, len(decisionNodes))
	for id := range decisionNodes {
		union[id] = struct{}{}
	}

	for id, outgoing := range adjacency {
		if len(outgoing) > 1 {
			union[id] = struct{}{}
		}
	}

	return len(union)
}

type graph struct {
	adjacency   map[string][]*models.ProcessConnection
	entryPoints []string
	exitPoints  []string
	exitSet     map[string]bool
	warnings    []string
}

// buildGraph indexes the structure and resolves entry and exit points,
// synthesizing them (with a warning) when the graph declares none.
func buildGraph(structure *models.ProcessStructure) *graph {
	adjacency := make(map[string][]*models.ProcessConnection)
	hasIncoming := make(map[string]bool)
	hasOutgoing := make(map[string]bool)

	for _, connection := range structure.Connections {
		adjacency[connection.From] = append(adjacency[connection.From], connection)
		hasIncoming[connection.To] = true
		hasOutgoing[connection.From] = true
	}

	g := &graph{adjacency: adjacency, exitSet: make(map[string]bool)}

	var entries []*models.ProcessNode

	var exits []*models.ProcessNode

	for _, node := range structure.Nodes {
		if !hasIncoming[node.ID] {
			entries = append(entries, node)
		}

		if !hasOutgoing[node.ID] {
			exits = append(exits, node)
		}
	}

	// Entry ties: triggers first, then authored sequence.
	sort.SliceStable(entries, func(i, j int) bool {
		iTrigger := entries[i].StepType == models.StepTypeTrigger
		jTrigger := entries[j].StepType == models.StepTypeTrigger

		if iTrigger != jTrigger {
			return iTrigger
		}

		return entries[i].ExecutionOrder < entries[j].ExecutionOrder
	})

	// Exits closest to the logical end first.
	sort.SliceStable(exits, func(i, j int) bool {
		return exits[i].ExecutionOrder > exits[j].ExecutionOrder
	})

	if len(entries) == 0 {
		synthetic := lowestOrderNode(structure.Nodes)
		entries = []*models.ProcessNode{synthetic}
		g.warnings = append(g.warnings,
			fmt.Sprintf("no entry point found; using node %q (lowest execution order) as synthetic entry", synthetic.ID))
	}

	if len(exits) == 0 {
		synthetic := highestOrderNode(structure.Nodes)
		exits = []*models.ProcessNode{synthetic}
		g.warnings = append(g.warnings,
			fmt.Sprintf("no exit point found; using node %q (highest execution order) as synthetic exit", synthetic.ID))
	}

	for _, node := range entries {
		g.entryPoints = append(g.entryPoints, node.ID)
	}

	for _, node := range exits {
		g.exitPoints = append(g.exitPoints, node.ID)
		g.exitSet[node.ID] = true
	}

	return g
}

func lowestOrderNode(nodes []*models.ProcessNode) *models.ProcessNode {
	best := nodes[0]
	for _, node := range nodes[1:] {
		if node.ExecutionOrder < best.ExecutionOrder {
			best = node
		}
	}

	return best
}

func highestOrderNode(nodes []*models.ProcessNode) *models.ProcessNode {
	best := nodes[0]
	for _, node := range nodes[1:] {
		if node.ExecutionOrder > best.ExecutionOrder {
			best = node
		}
	}

	return best
}
