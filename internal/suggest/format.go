package suggest

import (
	"fmt"
	"strings"
)

// FormatLexical renders the top words and every adjacency pair. A positive
// maxFollowUps caps the adjacency part, which otherwise grows quadratically
// with the number of completed tasks.
func FormatLexical(table *WordFrequencyTable, adjacency *CompletionAdjacencyMap, topN, maxFollowUps int) []string {
	out := []string{}

	for _, wc := range table.Top(topN) {
		out = append(out, fmt.Sprintf("consider tasks related to '%s'", wc.Word))
	}

	for i, p := range adjacency.Pairs() {
		if maxFollowUps > 0 && i >= maxFollowUps {
			break
		}
		out = append(out, fmt.Sprintf("consider a follow-up like '%s' often completed after '%s'", p.Related, p.Title))
	}
	return out
}

// FormatCluster renders one group of related task names.
func FormatCluster(names []string) string {
	return "these tasks appear related: " + strings.Join(names, ", ")
}
