package embindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/patent"
)

type stubCorpus struct {
	records []patent.Record
}

func (s *stubCorpus) Len() int                 { return len(s.records) }
func (s *stubCorpus) Records() []patent.Record { return s.records }

func newStubCorpus(t *testing.T, n int) *stubCorpus {
	t.Helper()
	s := &stubCorpus{}
	for i := 0; i < n; i++ {
		rec, err := patent.New(
			fmt.Sprintf("US-%d", i), "title", fmt.Sprintf("abstract %d", i),
			nil, "B60C", "2020-01-01", "",
		)
		if err != nil {
			t.Fatalf("patent.New: %v", err)
		}
		s.records = append(s.records, rec)
	}
	return s
}

type countingEmbedder struct {
	calls atomic.Int64
	err   error
}

func (e *countingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	e.calls.Add(1)
	if e.err != nil {
		return domain.EmbeddingResult{}, e.err
	}
	// Deterministic per-text vector so loads can be compared with builds.
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

func tempMatrixPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "matrix.bin")
}

func TestLoadOrBuild_BuildsAndPersists(t *testing.T) {
	corpus := newStubCorpus(t, 5)
	embed := &countingEmbedder{}
	path := tempMatrixPath(t)

	idx := New(corpus, embed, path, 2, 4, zap.NewNop())
	if idx.Ready() {
		t.Fatal("index ready before LoadOrBuild")
	}
	if _, err := idx.Rows(); !errors.Is(err, domain.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}

	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}
	if got := embed.calls.Load(); got != 5 {
		t.Errorf("embedder called %d times, want 5", got)
	}

	rows, err := idx.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(rows))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("matrix file not persisted: %v", err)
	}
}

func TestLoadOrBuild_LoadsPersistedFile(t *testing.T) {
	corpus := newStubCorpus(t, 3)
	path := tempMatrixPath(t)

	first := &countingEmbedder{}
	if err := New(corpus, first, path, 2, 2, zap.NewNop()).LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}

	second := &countingEmbedder{}
	idx := New(corpus, second, path, 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild from file: %v", err)
	}
	if got := second.calls.Load(); got != 0 {
		t.Errorf("embedder called %d times on warm load, want 0", got)
	}
}

func TestLoadOrBuild_CorruptFileRebuilds(t *testing.T) {
	corpus := newStubCorpus(t, 2)
	path := tempMatrixPath(t)
	if err := os.WriteFile(path, []byte("not a matrix"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	embed := &countingEmbedder{}
	idx := New(corpus, embed, path, 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}
	if got := embed.calls.Load(); got != 2 {
		t.Errorf("embedder called %d times, want 2 (rebuild)", got)
	}
}

func TestLoadOrBuild_RowCountMismatchRebuilds(t *testing.T) {
	path := tempMatrixPath(t)

	small := newStubCorpus(t, 2)
	if err := New(small, &countingEmbedder{}, path, 2, 2, zap.NewNop()).LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}

	// Same file, bigger corpus: the stale matrix must not be used.
	big := newStubCorpus(t, 4)
	embed := &countingEmbedder{}
	idx := New(big, embed, path, 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}
	if got := embed.calls.Load(); got != 4 {
		t.Errorf("embedder called %d times, want 4 (rebuild)", got)
	}
	rows, err := idx.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
}

func TestLoadOrBuild_ConcurrentCallersShareOneBuild(t *testing.T) {
	corpus := newStubCorpus(t, 8)
	embed := &countingEmbedder{}
	idx := New(corpus, embed, tempMatrixPath(t), 2, 4, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := idx.LoadOrBuild(context.Background()); err != nil {
				t.Errorf("LoadOrBuild: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := embed.calls.Load(); got != 8 {
		t.Errorf("embedder called %d times, want 8 (single build)", got)
	}
}

func TestLoadOrBuild_EmbedderFailureFailsBuild(t *testing.T) {
	corpus := newStubCorpus(t, 3)
	embed := &countingEmbedder{err: domain.ErrEmbeddingProviderError}
	idx := New(corpus, embed, tempMatrixPath(t), 2, 2, zap.NewNop())

	err := idx.LoadOrBuild(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if idx.Ready() {
		t.Error("index ready after failed build")
	}
}

func TestLoadOrBuild_PersistFailureKeepsMatrix(t *testing.T) {
	corpus := newStubCorpus(t, 2)
	embed := &countingEmbedder{}
	path := filepath.Join(t.TempDir(), "missing-dir", "matrix.bin")

	idx := New(corpus, embed, path, 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild must tolerate persist failure: %v", err)
	}
	rows, err := idx.Rows()
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}

func TestRebuild_ReencodesCorpus(t *testing.T) {
	corpus := newStubCorpus(t, 3)
	embed := &countingEmbedder{}
	path := tempMatrixPath(t)

	idx := New(corpus, embed, path, 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}
	if err := idx.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got := embed.calls.Load(); got != 6 {
		t.Errorf("embedder called %d times, want 6", got)
	}
}

func TestRows_MisalignedAfterCorpusGrowth(t *testing.T) {
	corpus := newStubCorpus(t, 2)
	idx := New(corpus, &countingEmbedder{}, tempMatrixPath(t), 2, 2, zap.NewNop())
	if err := idx.LoadOrBuild(context.Background()); err != nil {
		t.Fatalf("LoadOrBuild: %v", err)
	}

	// Corpus changes under the matrix: Rows must refuse, not misattribute scores.
	rec, err := patent.New("US-99", "t", "a", nil, "", "", "")
	if err != nil {
		t.Fatalf("patent.New: %v", err)
	}
	corpus.records = append(corpus.records, rec)

	if _, err := idx.Rows(); !errors.Is(err, domain.ErrIndexMisaligned) {
		t.Fatalf("expected ErrIndexMisaligned, got %v", err)
	}
}
