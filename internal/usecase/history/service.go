package history

import (
	"context"

	"go.uber.org/zap"

	"github.com/thinkstruct/patentsearch/internal/repository/history"
)

// Recorder is the consumer interface onto the history store.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
	List(ctx context.Context, limit int) ([]history.Entry, error)
}

// Service records and lists past searches. History is an observer of the
// search path: a write failure is logged and swallowed, never surfaced to
// the caller of a search.
type Service struct {
	store  Recorder
	logger *zap.Logger
}

// New creates a history service. A nil store disables recording.
func New(store Recorder, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Enabled reports whether a backing store is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// RecordSearch persists one search outcome. Best effort.
func (s *Service) RecordSearch(ctx context.Context, scenario, queryText, filters string, resultCount int, topScore float64) {
	if s.store == nil {
		return
	}
	err := s.store.Record(ctx, history.Entry{
		Scenario:    scenario,
		QueryText:   queryText,
		Filters:     filters,
		ResultCount: resultCount,
		TopScore:    topScore,
	})
	if err != nil {
		s.logger.Warn("record search history", zap.Error(err))
	}
}

// List returns the most recent searches, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]history.Entry, error) {
	if s.store == nil {
		return []history.Entry{}, nil
	}
	return s.store.List(ctx, limit)
}
