package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub-backend/internal/suggest"
	"taskhub-backend/internal/tasks"
)

type memoryTasks []tasks.Task

func (m memoryTasks) FetchAll(context.Context) ([]tasks.Task, error) { return m, nil }

func fixedOpener(snapshot []tasks.Task) serviceOpener {
	return configuredOpener(snapshot, suggest.DefaultConfig())
}

func configuredOpener(snapshot []tasks.Task, cfg suggest.Config) serviceOpener {
	return func(context.Context) (*suggest.Service, func(), error) {
		return suggest.NewService(memoryTasks(snapshot), cfg, zap.NewNop()), func() {}, nil
	}
}

var groceries = []tasks.Task{
	{ID: 1, Title: "Buy milk", Description: "Buy milk from store", Status: tasks.StatusCompleted},
	{ID: 2, Title: "Buy bread", Description: "Buy bread from store", Status: tasks.StatusCompleted},
	{ID: 3, Title: "Write report", Description: "Write quarterly report", Status: tasks.StatusPending},
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, fixedOpener(groceries), args...)
}

func executeWith(t *testing.T, open serviceOpener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWordsCommand(t *testing.T) {
	out, err := execute(t, "words")
	require.NoError(t, err)
	assert.Contains(t, out, "consider tasks related to 'buy'\n")
	assert.Contains(t, out, "consider a follow-up like 'Buy bread' often completed after 'Buy milk'\n")
}

func TestClustersCommand(t *testing.T) {
	out, err := execute(t, "clusters", "--threshold", "0.5", "--top-k", "2")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk, Buy bread\n", out)

	out, err = execute(t, "clusters", "--threshold", "0.5", "--json")
	require.NoError(t, err)
	var clusters [][]string
	require.NoError(t, json.Unmarshal([]byte(out), &clusters))
	assert.Equal(t, [][]string{{"Buy milk", "Buy bread"}}, clusters)

	_, err = execute(t, "clusters", "--top-k", "0")
	assert.ErrorIs(t, err, suggest.ErrInvalidParameter)
}

func TestCombinedCommand(t *testing.T) {
	_, err := execute(t, "combined", "--count", "0")
	assert.ErrorIs(t, err, suggest.ErrInvalidParameter)

	out, err := execute(t, "combined", "--count", "3")
	require.NoError(t, err)
	// default threshold 0.7 is too strict for this corpus
	assert.Empty(t, out)
}

func TestCommandsUseConfiguredDefaults(t *testing.T) {
	cfg := suggest.DefaultConfig()
	cfg.Threshold = 0.5
	cfg.TopK = 1
	cfg.TargetCount = 1
	open := configuredOpener(groceries, cfg)

	out, err := executeWith(t, open, "clusters")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk, Buy bread\n", out)

	out, err = executeWith(t, open, "combined")
	require.NoError(t, err)
	assert.Equal(t, "these tasks appear related: Buy milk, Buy bread\n", out)

	// explicit flags still win
	out, err = executeWith(t, open, "clusters", "--threshold", "0.9")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = executeWith(t, open, "combined", "--count", "0")
	assert.ErrorIs(t, err, suggest.ErrInvalidParameter)
}
