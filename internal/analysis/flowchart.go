package analysis

import (
	"regexp"
	"strings"
)

// FlowEdge is one arrow of the flowchart.
type FlowEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

var (
	arrowSplit  = regexp.MustCompile(`\s*(?:-+>|→|=>)\s*`)
	nodeTrimmer = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)
)

// ParseFlowEdges reads "A -> B -> C" chains from the flowchart reply. Each
// consecutive pair of nodes on a line becomes an edge.
func ParseFlowEdges(chart string) []FlowEdge {
	var edges []FlowEdge
	for _, line := range strings.Split(stripCodeFence(chart), "\n") {
		parts := arrowSplit.Split(strings.TrimSpace(line), -1)
		if len(parts) < 2 {
			continue
		}
		for i := 0; i+1 < len(parts); i++ {
			from, to := cleanNode(parts[i]), cleanNode(parts[i+1])
			if from == "" || to == "" {
				continue
			}
			edges = append(edges, FlowEdge{From: from, To: to})
		}
	}
	return edges
}

func cleanNode(s string) string {
	s = strings.TrimSpace(s)
	s = nodeTrimmer.ReplaceAllString(s, "")
	s = strings.Trim(s, "[](){}\"'` ")
	return strings.Join(strings.Fields(s), " ")
}
