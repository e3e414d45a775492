package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"taskhub-backend/internal/tasks"
)

type staticSource struct {
	clusters [][]string
	err      error
}

func (s staticSource) Clusters(context.Context, []tasks.Task) ([][]string, error) {
	return s.clusters, s.err
}

func TestMergeDedupesAndTruncates(t *testing.T) {
	semantic := [][]string{{"a", "b"}, {"c", "d"}}
	completion := [][]string{{"a", "b"}, {"e", "f"}, {"g", "h"}}

	assert.Equal(t, []string{
		"these tasks appear related: a, b",
		"these tasks appear related: c, d",
		"these tasks appear related: e, f",
		"these tasks appear related: g, h",
	}, Merge(10, semantic, completion))

	assert.Equal(t, []string{
		"these tasks appear related: a, b",
		"these tasks appear related: c, d",
		"these tasks appear related: e, f",
	}, Merge(3, semantic, completion))

	assert.Equal(t, []string{}, Merge(3))
}

func TestOrchestratorCombinesSources(t *testing.T) {
	o := Orchestrator{Completion: staticSource{clusters: [][]string{{"Write report", "Buy milk"}}}}

	out, degraded := o.Suggest(context.Background(), groceries(), 0.5, 3, 5)
	assert.False(t, degraded)
	assert.Equal(t, []string{
		"these tasks appear related: Buy milk, Buy bread",
		"these tasks appear related: Write report, Buy milk",
	}, out)
}

func TestOrchestratorDegradesWithoutCompletionSource(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := Orchestrator{
		Completion: staticSource{err: errors.New("completion store down")},
		Logger:     zap.New(core),
	}

	out, degraded := o.Suggest(context.Background(), groceries(), 0.5, 3, 5)
	assert.True(t, degraded)
	assert.Equal(t, []string{"these tasks appear related: Buy milk, Buy bread"}, out)
	assert.Equal(t, 1, logs.FilterMessageSnippet("completion clusters unavailable").Len())
}

func TestOrchestratorBounds(t *testing.T) {
	many := [][]string{{"a"}, {"b"}, {"a"}, {"c"}, {"d"}, {"b"}}
	o := Orchestrator{Completion: staticSource{clusters: many}}

	for target := 1; target <= 6; target++ {
		out, _ := o.Suggest(context.Background(), nil, 0.7, 3, target)
		assert.LessOrEqual(t, len(out), target)
		seen := map[string]bool{}
		for _, s := range out {
			assert.False(t, seen[s], s)
			seen[s] = true
		}
	}
}

type contextSource struct{}

func (contextSource) Clusters(ctx context.Context, _ []tasks.Task) ([][]string, error) {
	<-ctx.Done()
	return [][]string{{"stale", "result"}}, ctx.Err()
}

func TestOrchestratorCompletionErrorKeepsSemanticClusters(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	o := Orchestrator{Completion: contextSource{}, Logger: zap.New(core)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, degraded := o.Suggest(ctx, groceries(), 0.5, 3, 5)
	assert.True(t, degraded)
	assert.Equal(t, []string{"these tasks appear related: Buy milk, Buy bread"}, out)

	entries := logs.FilterMessageSnippet("completion clusters unavailable").All()
	require.Len(t, entries, 1)
	assert.Equal(t, context.Canceled.Error(), entries[0].ContextMap()["error"])
}
