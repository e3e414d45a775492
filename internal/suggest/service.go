// Package suggest derives task suggestions from a snapshot of stored tasks:
// frequent words, follow-ups among completed tasks, and clusters of tasks with
// similar descriptions.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"taskhub-backend/internal/config"
	"taskhub-backend/internal/metrics"
	"taskhub-backend/internal/tasks"
)

var (
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrUpstreamUnavailable = errors.New("task snapshot unavailable")
)

// SnapshotProvider returns every stored task.
type SnapshotProvider interface {
	FetchAll(ctx context.Context) ([]tasks.Task, error)
}

type Config struct {
	TopWords     int
	MaxFollowUps int
	Threshold    float64
	TopK         int
	TargetCount  int
	FetchTimeout time.Duration
	// MaxCorpus keeps only the most recent tasks of a snapshot. 0 disables the cap.
	MaxCorpus     int
	CaseSensitive bool
}

func DefaultConfig() Config {
	return Config{
		TopWords:     5,
		Threshold:    0.7,
		TopK:         3,
		TargetCount:  5,
		FetchTimeout: 5 * time.Second,
		MaxCorpus:    2000,
	}
}

// ConfigFrom maps the environment settings onto the engine configuration.
func ConfigFrom(c config.SuggestConfig) Config {
	return Config{
		TopWords:      c.TopWords,
		MaxFollowUps:  c.MaxFollowUps,
		Threshold:     c.Threshold,
		TopK:          c.TopK,
		TargetCount:   c.TargetCount,
		FetchTimeout:  c.FetchTimeout,
		MaxCorpus:     c.MaxCorpus,
		CaseSensitive: c.CaseSensitive,
	}
}

// CompletionSourceFrom returns the completion-time signal the settings ask for.
func CompletionSourceFrom(c config.SuggestConfig) ClusterSource {
	if c.CompletionWindow > 0 {
		return CompletionWindowClusters{Window: c.CompletionWindow}
	}
	return NoCompletionClusters{}
}

type Service struct {
	provider   SnapshotProvider
	cfg        Config
	logger     *zap.Logger
	adjacency  AdjacencyStrategy
	completion ClusterSource
	metrics    *metrics.Metrics
}

type Option func(*Service)

func WithAdjacencyStrategy(s AdjacencyStrategy) Option {
	return func(svc *Service) { svc.adjacency = s }
}

func WithCompletionSource(c ClusterSource) Option {
	return func(svc *Service) { svc.completion = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

func NewService(provider SnapshotProvider, cfg Config, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		provider:   provider,
		cfg:        cfg,
		logger:     logger,
		adjacency:  CompleteGraphAdjacency{},
		completion: NoCompletionClusters{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Config() Config { return s.cfg }

func (s *Service) snapshot(ctx context.Context) ([]tasks.Task, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	all, err := s.provider.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if s.cfg.MaxCorpus > 0 && len(all) > s.cfg.MaxCorpus {
		s.logger.Debug("capping suggestion corpus",
			zap.Int("tasks", len(all)),
			zap.Int("max_corpus", s.cfg.MaxCorpus),
		)
		all = all[len(all)-s.cfg.MaxCorpus:]
	}
	s.metrics.ObserveCorpus(len(all))
	return all, nil
}

func (s *Service) observe(op string, start time.Time, results int, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrInvalidParameter):
		status = "invalid"
	case errors.Is(err, ErrUpstreamUnavailable):
		status = "unavailable"
	case err != nil:
		status = "error"
	}
	s.metrics.ObserveSuggestion(op, status, results, time.Since(start))
}

// WordAndAdjacencySuggestions returns the top-word suggestions followed by one
// follow-up suggestion per related pair of completed tasks.
func (s *Service) WordAndAdjacencySuggestions(ctx context.Context) (out []string, err error) {
	start := time.Now()
	defer func() { s.observe("words", start, len(out), err) }()

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	analyzer := LexicalAnalyzer{
		Tokenizer: Tokenizer{CaseSensitive: s.cfg.CaseSensitive},
		Adjacency: s.adjacency,
	}
	table, adjacency := analyzer.Analyze(snapshot)
	return FormatLexical(table, adjacency, s.cfg.TopWords, s.cfg.MaxFollowUps), nil
}

// SimilarityClusters returns up to topK groups of task titles with similar
// descriptions, largest first.
func (s *Service) SimilarityClusters(ctx context.Context, threshold float64, topK int) (out [][]string, err error) {
	start := time.Now()
	defer func() { s.observe("clusters", start, len(out), err) }()

	if err := ValidateClusterParams(threshold, topK); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return SimilarityClusters(snapshot, threshold, topK), nil
}

// CombinedSuggestions returns at most targetCount distinct cluster
// suggestions from description similarity and the completion source.
func (s *Service) CombinedSuggestions(ctx context.Context, targetCount int) (out []string, err error) {
	start := time.Now()
	defer func() { s.observe("combined", start, len(out), err) }()

	if targetCount <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidParameter, targetCount)
	}
	if err := ValidateClusterParams(s.cfg.Threshold, s.cfg.TopK); err != nil {
		return nil, err
	}
	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	o := Orchestrator{Completion: s.completion, Logger: s.logger}
	out, degraded := o.Suggest(ctx, snapshot, s.cfg.Threshold, s.cfg.TopK, targetCount)
	if degraded {
		s.metrics.Degraded()
	}
	return out, nil
}
