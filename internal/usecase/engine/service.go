package engine

import (
	"context"
	"fmt"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/patent"
	"github.com/thinkstruct/patentsearch/internal/domain/scenario"
	"github.com/thinkstruct/patentsearch/internal/domain/search/query"
	"github.com/thinkstruct/patentsearch/internal/domain/search/result"
	"github.com/thinkstruct/patentsearch/internal/logger"
	"github.com/thinkstruct/patentsearch/internal/metrics"

	"go.uber.org/zap"
)

// Default transport caps for result text fields.
const (
	DefaultMaxClaims         = 10
	DefaultDescriptionBudget = 500
)

// Service is the semantic ranking engine: encode, filter, rank, enrich.
// Corpus and matrix are read-only here; independent searches run fully in
// parallel with no shared mutable state.
type Service struct {
	corpus     CorpusReader
	matrix     MatrixProvider
	embedder   domain.Embedder
	maxClaims  int
	descBudget int
}

// New creates the search engine service.
func New(corpus CorpusReader, matrix MatrixProvider, embedder domain.Embedder) *Service {
	return &Service{
		corpus:     corpus,
		matrix:     matrix,
		embedder:   embedder,
		maxClaims:  DefaultMaxClaims,
		descBudget: DefaultDescriptionBudget,
	}
}

// WithLimits overrides the transport caps for claims count and description length.
func (s *Service) WithLimits(maxClaims, descriptionBudget int) *Service {
	if maxClaims > 0 {
		s.maxClaims = maxClaims
	}
	if descriptionBudget > 0 {
		s.descBudget = descriptionBudget
	}
	return s
}

// Get returns a stored patent record by document number.
func (s *Service) Get(_ context.Context, docNumber string) (patent.Record, error) {
	return s.corpus.Get(docNumber)
}

// Search executes a scenario-tagged semantic search. An empty candidate set
// is a valid empty result, not an error.
func (s *Service) Search(ctx context.Context, q *query.Query) ([]result.Result, error) {
	results, err := s.search(ctx, q)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(q.Scenario()), status).Inc()

	return results, err
}

func (s *Service) search(ctx context.Context, q *query.Query) ([]result.Result, error) {
	rows, err := s.matrix.Rows()
	if err != nil {
		return nil, fmt.Errorf("embedding matrix: %w", err)
	}
	records := s.corpus.Records()
	if len(records) != len(rows) {
		return nil, fmt.Errorf("corpus has %d records, matrix %d rows: %w",
			len(records), len(rows), domain.ErrIndexMisaligned)
	}

	queryText, exclude, err := s.resolveQuery(q)
	if err != nil {
		return nil, err
	}

	emb, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	candidates := filterCandidates(records, q.Filters(), exclude)
	ranked := rankTopK(emb.Embedding, rows, candidates, q.TopK(), q.MinScore())

	logger.FromContext(ctx).Debug("search ranked",
		zap.String("scenario", string(q.Scenario())),
		zap.Int("candidates", len(candidates)),
		zap.Int("ranked", len(ranked)),
	)

	return s.enrichAll(ctx, q.Scenario(), queryText, emb.Embedding, records, ranked)
}

// resolveQuery produces the text to encode and the set of record indexes that
// can never appear in results (the query's own document, the by_id source).
func (s *Service) resolveQuery(q *query.Query) (string, map[int]struct{}, error) {
	exclude := make(map[int]struct{}, 2)

	queryText := q.Text()
	if q.Scenario() == scenario.ByID {
		rec, err := s.corpus.Get(q.DocNumber())
		if err != nil {
			return "", nil, err
		}
		queryText = rec.EmbeddingText()
		if i, ok := s.corpus.IndexOf(q.DocNumber()); ok {
			exclude[i] = struct{}{}
		}
	}

	if excl := q.ExcludeDocNumber(); excl != "" {
		i, ok := s.corpus.IndexOf(excl)
		if !ok {
			return "", nil, fmt.Errorf("exclude doc_number %q: %w", excl, domain.ErrPatentNotFound)
		}
		exclude[i] = struct{}{}
	}

	return queryText, exclude, nil
}
