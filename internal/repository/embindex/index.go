package embindex

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/patent"
	"github.com/thinkstruct/patentsearch/internal/metrics"
)

// corpusReader is the consumer interface onto the corpus store.
type corpusReader interface {
	Len() int
	Records() []patent.Record
}

// Index owns the corpus-aligned embedding matrix: one vector per record, rows
// in corpus insertion order. Built once and immutable afterwards; a corpus
// change goes through Invalidate + LoadOrBuild, never a partial patch.
type Index struct {
	corpus   corpusReader
	embedder domain.Embedder
	path     string
	dims     int
	workers  int
	logger   *zap.Logger

	mu    sync.Mutex // serializes builds; readers go through the ready snapshot
	ready bool
	rows  [][]float32
}

// New creates an embedding index persisted at path.
func New(corpus corpusReader, embedder domain.Embedder, path string, dims, workers int, logger *zap.Logger) *Index {
	if workers < 1 {
		workers = 1
	}
	return &Index{
		corpus:   corpus,
		embedder: embedder,
		path:     path,
		dims:     dims,
		workers:  workers,
		logger:   logger,
	}
}

// LoadOrBuild makes the matrix available: load the persisted file when its
// shape matches the corpus (fast path), otherwise encode every record and
// persist the result (slow path, the dominant one-time cost). Concurrent
// callers serialize on one build; the losers reuse the winner's matrix.
func (x *Index) LoadOrBuild(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ready {
		return nil
	}

	if rows, err := x.loadFile(); err != nil {
		// Corrupt or missing cache is a miss, not a failure.
		x.logger.Info("Embedding cache unusable, rebuilding", zap.String("path", x.path), zap.Error(err))
	} else {
		x.rows = rows
		x.ready = true
		metrics.IndexLoadsTotal.WithLabelValues("loaded").Inc()
		x.logger.Info("Embedding matrix loaded",
			zap.String("path", x.path),
			zap.Int("rows", len(rows)),
			zap.Int("dims", x.dims),
		)
		return nil
	}

	rows, err := x.build(ctx)
	if err != nil {
		return err
	}

	x.persist(rows)

	x.rows = rows
	x.ready = true
	metrics.IndexLoadsTotal.WithLabelValues("rebuilt").Inc()
	return nil
}

// Rebuild drops the matrix and forces the slow path.
func (x *Index) Rebuild(ctx context.Context) error {
	x.Invalidate()
	return x.LoadOrBuild(ctx)
}

// Invalidate drops the in-memory matrix and the persisted file. The next
// LoadOrBuild re-encodes the corpus.
func (x *Index) Invalidate() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ready = false
	x.rows = nil
	if err := os.Remove(x.path); err != nil && !os.IsNotExist(err) {
		x.logger.Warn("Failed to remove embedding cache file", zap.String("path", x.path), zap.Error(err))
	}
}

// Ready reports whether the matrix is loaded and aligned.
func (x *Index) Ready() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.ready
}

// Len returns the matrix row count.
func (x *Index) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.rows)
}

// Rows returns the matrix. The alignment invariant is checked against the
// corpus on every call: a mismatch means the corpus changed under the matrix
// and is fatal for the query, never patched over.
func (x *Index) Rows() ([][]float32, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.ready {
		return nil, domain.ErrNotReady
	}
	if len(x.rows) != x.corpus.Len() {
		return nil, fmt.Errorf("matrix has %d rows, corpus has %d records: %w",
			len(x.rows), x.corpus.Len(), domain.ErrIndexMisaligned)
	}
	return x.rows, nil
}

// loadFile reads and validates the persisted matrix.
func (x *Index) loadFile() ([][]float32, error) {
	data, err := os.ReadFile(x.path)
	if err != nil {
		return nil, err
	}
	rows, dims, err := decodeMatrix(data)
	if err != nil {
		return nil, err
	}
	if dims != x.dims {
		return nil, fmt.Errorf("cached dims %d, want %d", dims, x.dims)
	}
	if len(rows) != x.corpus.Len() {
		return nil, fmt.Errorf("cached rows %d, corpus has %d records", len(rows), x.corpus.Len())
	}
	return rows, nil
}

// build encodes every record's embedding text over a bounded worker pool.
func (x *Index) build(ctx context.Context) ([][]float32, error) {
	records := x.corpus.Records()
	x.logger.Info("Building embedding matrix",
		zap.Int("records", len(records)),
		zap.Int("workers", x.workers),
	)
	start := time.Now()

	pool, err := ants.NewPool(x.workers)
	if err != nil {
		return nil, fmt.Errorf("create build pool: %w", err)
	}
	defer pool.Release()

	rows := make([][]float32, len(records))
	errs := make([]error, len(records))
	var wg sync.WaitGroup

	for i := range records {
		i := i
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			res, embErr := x.embedder.Embed(ctx, records[i].EmbeddingText())
			if embErr != nil {
				errs[i] = fmt.Errorf("encode record %s: %w", records[i].DocNumber(), embErr)
				return
			}
			rows[i] = res.Embedding
		}); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit record %s: %w", records[i].DocNumber(), err)
		}
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	if len(rows) != x.corpus.Len() {
		return nil, fmt.Errorf("built %d rows for %d records: %w",
			len(rows), x.corpus.Len(), domain.ErrIndexMisaligned)
	}

	duration := time.Since(start)
	metrics.IndexBuildDuration.Observe(duration.Seconds())
	x.logger.Info("Embedding matrix built",
		zap.Int("rows", len(rows)),
		zap.Duration("duration", duration),
	)
	return rows, nil
}

// persist writes the matrix to disk. A write failure is logged and the
// in-memory matrix stays valid for this run.
func (x *Index) persist(rows [][]float32) {
	data, err := encodeMatrix(rows, x.dims)
	if err != nil {
		metrics.IndexLoadsTotal.WithLabelValues("persist_failed").Inc()
		x.logger.Warn("Failed to encode embedding matrix", zap.Error(err))
		return
	}
	if err := os.WriteFile(x.path, data, 0o644); err != nil {
		metrics.IndexLoadsTotal.WithLabelValues("persist_failed").Inc()
		x.logger.Warn("Failed to persist embedding matrix", zap.String("path", x.path), zap.Error(err))
		return
	}
	x.logger.Info("Embedding matrix persisted", zap.String("path", x.path), zap.Int("bytes", len(data)))
}
