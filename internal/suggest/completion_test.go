package suggest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub-backend/internal/tasks"
)

func completedAt(id int, title string, at time.Time) tasks.Task {
	t := task(id, title, "", tasks.StatusCompleted)
	t.CompletedAt = &at
	return t
}

func TestCompletionWindowClusters(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshot := []tasks.Task{
		completedAt(1, "standup notes", t0.Add(3*time.Hour)),
		completedAt(2, "inbox zero", t0),
		completedAt(3, "review PR", t0.Add(20*time.Minute)),
		completedAt(4, "reply to Ana", t0.Add(10*time.Minute)),
		completedAt(5, "deploy", t0.Add(3*time.Hour+5*time.Minute)),
		completedAt(6, "gym", t0.Add(10*time.Hour)),
		task(7, "pending thing", "", tasks.StatusPending),
	}

	got, err := CompletionWindowClusters{Window: 15 * time.Minute}.Clusters(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"inbox zero", "reply to Ana", "review PR"},
		{"standup notes", "deploy"},
	}, got)
}

func TestCompletionWindowTiesByID(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	got, err := CompletionWindowClusters{Window: time.Minute}.Clusters(context.Background(), []tasks.Task{
		completedAt(9, "b", t0),
		completedAt(2, "a", t0),
	})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}}, got)
}

func TestCompletionWindowDisabled(t *testing.T) {
	t0 := time.Now()
	snapshot := []tasks.Task{completedAt(1, "a", t0), completedAt(2, "b", t0)}

	got, err := CompletionWindowClusters{}.Clusters(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NoCompletionClusters{}.Clusters(context.Background(), snapshot)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompletionWindowCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t0 := time.Now()
	_, err := CompletionWindowClusters{Window: time.Hour}.Clusters(ctx, []tasks.Task{completedAt(1, "a", t0)})
	assert.ErrorIs(t, err, context.Canceled)
}
