package suggest

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskhub-backend/internal/tasks"
)

// Orchestrator merges description clusters with clusters from a secondary
// source into a bounded list of suggestions.
type Orchestrator struct {
	Completion ClusterSource
	Logger     *zap.Logger
}

// Suggest runs both cluster sources concurrently. The secondary source is
// optional: when it fails the result is built from semantic clusters alone
// and degraded is true.
func (o Orchestrator) Suggest(ctx context.Context, snapshot []tasks.Task, threshold float64, topK, target int) (out []string, degraded bool) {
	var semantic, completion [][]string

	// Semantic clustering ignores gctx, so a failing secondary source never
	// cancels it.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		semantic = SimilarityClusters(snapshot, threshold, topK)
		return nil
	})
	if o.Completion != nil {
		g.Go(func() error {
			var err error
			completion, err = o.Completion.Clusters(gctx, snapshot)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger := o.Logger
		if logger == nil {
			logger = zap.NewNop()
		}
		logger.Warn("completion clusters unavailable, using semantic clusters only", zap.Error(err))
		completion = nil
		degraded = true
	}

	return Merge(target, semantic, completion), degraded
}

// Merge formats every cluster of every source in order, drops repeated
// strings and stops at target.
func Merge(target int, sources ...[][]string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, clusters := range sources {
		for _, names := range clusters {
			if len(out) >= target {
				return out
			}
			s := FormatCluster(names)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
