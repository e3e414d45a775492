package suggest

import (
	"context"
	"sort"
	"time"

	"taskhub-backend/internal/tasks"
)

// ClusterSource supplies groups of related task titles from some signal other
// than description text.
type ClusterSource interface {
	Clusters(ctx context.Context, snapshot []tasks.Task) ([][]string, error)
}

// NoCompletionClusters never reports anything.
type NoCompletionClusters struct{}

func (NoCompletionClusters) Clusters(context.Context, []tasks.Task) ([][]string, error) {
	return nil, nil
}

// CompletionWindowClusters groups completed tasks whose completion times are
// chained by gaps no longer than Window.
type CompletionWindowClusters struct {
	Window time.Duration
}

func (c CompletionWindowClusters) Clusters(ctx context.Context, snapshot []tasks.Task) ([][]string, error) {
	if c.Window <= 0 {
		return nil, nil
	}

	var done []tasks.Task
	for _, t := range snapshot {
		if t.Completed() && t.CompletedAt != nil {
			done = append(done, t)
		}
	}
	sort.Slice(done, func(i, j int) bool {
		a, b := *done[i].CompletedAt, *done[j].CompletedAt
		if a.Equal(b) {
			return done[i].ID < done[j].ID
		}
		return a.Before(b)
	})

	var groups [][]string
	var current []string
	for i, t := range done {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if i > 0 && t.CompletedAt.Sub(*done[i-1].CompletedAt) > c.Window {
			if len(current) >= 2 {
				groups = append(groups, current)
			}
			current = nil
		}
		current = append(current, t.Title)
	}
	if len(current) >= 2 {
		groups = append(groups, current)
	}

	sort.SliceStable(groups, func(i, j int) bool { return len(groups[i]) > len(groups[j]) })
	return groups, nil
}
