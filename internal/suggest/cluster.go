package suggest

import (
	"fmt"
	"math"
	"sort"

	"taskhub-backend/internal/tasks"
)

// ValidateClusterParams rejects a threshold outside [0,1] and a non-positive
// topK.
func ValidateClusterParams(threshold float64, topK int) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: threshold must be within [0, 1], got %v", ErrInvalidParameter, threshold)
	}
	if topK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidParameter, topK)
	}
	return nil
}

// MinSamples is the smallest neighbourhood that makes a point dense.
func MinSamples(taskCount int) int {
	return max(2, taskCount/10)
}

// SimilarityClusters groups tasks by description similarity. Each cluster
// lists task titles in snapshot order. Clusters are ordered largest first,
// equal sizes by discovery order, and at most topK are returned.
func SimilarityClusters(snapshot []tasks.Task, threshold float64, topK int) [][]string {
	out := [][]string{}
	if len(snapshot) == 0 {
		return out
	}

	docs := make([]string, len(snapshot))
	for i, t := range snapshot {
		docs[i] = t.Description
	}
	vectors := tfidf(docs)
	if !anyTerms(vectors) {
		return out
	}

	labels := dbscan(cosineDistances(vectors), 1-threshold, MinSamples(len(snapshot)))

	var groups [][]string
	for i, label := range labels {
		if label == noise {
			continue
		}
		for len(groups) <= label {
			groups = append(groups, nil)
		}
		groups[label] = append(groups[label], snapshot[i].Title)
	}

	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })
	if len(groups) > topK {
		groups = groups[:topK]
	}
	return append(out, groups...)
}

func anyTerms(vectors []sparseVector) bool {
	for _, v := range vectors {
		if !v.empty() {
			return true
		}
	}
	return false
}
