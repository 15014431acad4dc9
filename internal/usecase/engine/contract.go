package engine

import "github.com/thinkstruct/patentsearch/internal/domain/patent"

// CorpusReader is the engine's view of the corpus store.
type CorpusReader interface {
	Len() int
	Records() []patent.Record
	Get(docNumber string) (patent.Record, error)
	IndexOf(docNumber string) (int, bool)
}

// MatrixProvider is the engine's view of the embedding index. Rows are in
// corpus insertion order; Rows fails when the matrix is absent or misaligned.
type MatrixProvider interface {
	Rows() ([][]float32, error)
	Ready() bool
}
