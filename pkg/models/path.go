package models

import "strings"

// ScenarioPath is one concrete, acyclic route through the step graph from an
// entry point to an exit or dead end. It is a pure computed value; its only
// identity is PathHash.
type ScenarioPath struct {
	StepIDs    []string        `json:"step_ids"`
	Decisions  []DecisionPoint `json:"decisions"`
	TotalSteps int             `json:"total_steps"`
	PathHash   string          `json:"path_hash"`
}

// DecisionPoint records which branch a path took at a node with multiple
// outgoing connections. Only labeled connections are recorded.
type DecisionPoint struct {
	NodeID     string `json:"node_id"`
	Condition  string `json:"condition"`
	NextNodeID string `json:"next_node_id"`
}

// HashSteps computes the path identity for a step sequence. Decision metadata
// is deliberately not folded in: two paths visiting the same nodes in the
// same order are the same path.
func HashSteps(stepIDs []string) string {
	return strings.Join(stepIDs, "|")
}

// DiscoveryResult is the full catalogue produced by path discovery.
type DiscoveryResult struct {
	Paths         []*ScenarioPath `json:"paths"`
	EntryPoints   []string        `json:"entry_points"`
	ExitPoints    []string        `json:"exit_points"`
	TotalBranches int             `json:"total_branches"`
	Truncated     bool            `json:"truncated"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// HappyPath returns the discovered path with the fewest decisions, ties
// broken by the greatest step count (the most complete straight line).
// Returns nil when nothing was discovered.
func (r *DiscoveryResult) HappyPath() *ScenarioPath {
	var best *ScenarioPath

	for _, p := range r.Paths {
		if best == nil {
			best = p

			continue
		}

		if len(p.Decisions) < len(best.Decisions) ||
			(len(p.Decisions) == len(best.Decisions) && p.TotalSteps > best.TotalSteps) {
			best = p
		}
	}

	return best
}

// BranchPaths returns every discovered path that took at least one decision.
func (r *DiscoveryResult) BranchPaths() []*ScenarioPath {
	branches := make([]*ScenarioPath, 0)

	for _, p := range r.Paths {
		if len(p.Decisions) > 0 {
			branches = append(branches, p)
		}
	}

	return branches
}
