package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/patent"
)

// Store holds the cleaned patent corpus in memory. Records keep the file
// order, which is the tie-breaking order for ranking, and are immutable once
// loaded: Reload swaps the whole snapshot, never individual records.
type Store struct {
	mu     sync.RWMutex
	path   string
	snap   *snapshot
	gen    atomic.Uint64
	logger *zap.Logger
}

type snapshot struct {
	records      []patent.Record
	byNumber     map[string]int
	byNormalized map[string]int
}

// recordDTO mirrors the cleaned corpus JSON produced by the ingestion pipeline.
type recordDTO struct {
	DocNumber           string   `json:"doc_number"`
	Title               string   `json:"title"`
	Abstract            string   `json:"abstract"`
	Claims              []string `json:"claims"`
	Classification      string   `json:"classification"`
	PublicationDate     string   `json:"publication_date"`
	DetailedDescription string   `json:"detailed_description"`
}

// Load reads the corpus from the given file. An unreadable or invalid corpus
// is a startup-fatal error for the caller.
func Load(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// LatestDataFile returns the newest patents_cleaned_*.json in dir.
func LatestDataFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "patents_cleaned_*.json"))
	if err != nil {
		return "", fmt.Errorf("glob corpus dir: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no cleaned corpus file in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// Reload re-reads the corpus file and swaps the snapshot wholesale.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read corpus %s: %w", s.path, err)
	}

	var dtos []recordDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return fmt.Errorf("parse corpus %s: %w", s.path, err)
	}

	snap := &snapshot{
		records:      make([]patent.Record, 0, len(dtos)),
		byNumber:     make(map[string]int, len(dtos)),
		byNormalized: make(map[string]int, len(dtos)),
	}
	for i, dto := range dtos {
		rec, err := patent.New(
			dto.DocNumber, dto.Title, dto.Abstract, dto.Claims,
			dto.Classification, dto.PublicationDate, dto.DetailedDescription,
		)
		if err != nil {
			return fmt.Errorf("corpus record %d: %w", i, err)
		}
		if _, dup := snap.byNumber[dto.DocNumber]; dup {
			return fmt.Errorf("corpus record %d: duplicate doc_number %q", i, dto.DocNumber)
		}
		snap.byNumber[dto.DocNumber] = len(snap.records)
		snap.byNormalized[patent.NormalizeDocNumber(dto.DocNumber)] = len(snap.records)
		snap.records = append(snap.records, rec)
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	gen := s.gen.Add(1)

	if s.logger != nil {
		s.logger.Info("Corpus loaded",
			zap.String("path", s.path),
			zap.Int("records", len(snap.records)),
			zap.Uint64("generation", gen),
		)
	}
	return nil
}

// Path returns the corpus file path.
func (s *Store) Path() string { return s.path }

// Generation returns the reload counter, bumped on every successful Reload.
func (s *Store) Generation() uint64 { return s.gen.Load() }

// Len returns the record count.
func (s *Store) Len() int {
	return len(s.current().records)
}

// Records returns the current snapshot's records in load order. Callers must
// treat the slice as read-only.
func (s *Store) Records() []patent.Record {
	return s.current().records
}

// Get finds a record by document number. Exact match first, then normalized
// ("US-1234567" == "us 1234567" == "1234567").
func (s *Store) Get(docNumber string) (patent.Record, error) {
	snap := s.current()
	if i, ok := snap.byNumber[docNumber]; ok {
		return snap.records[i], nil
	}
	if i, ok := snap.byNormalized[patent.NormalizeDocNumber(docNumber)]; ok {
		return snap.records[i], nil
	}
	return patent.Record{}, fmt.Errorf("doc_number %q: %w", docNumber, domain.ErrPatentNotFound)
}

// IndexOf returns the insertion index of a document number, normalized
// matching included.
func (s *Store) IndexOf(docNumber string) (int, bool) {
	snap := s.current()
	if i, ok := snap.byNumber[docNumber]; ok {
		return i, true
	}
	i, ok := snap.byNormalized[patent.NormalizeDocNumber(docNumber)]
	return i, ok
}

func (s *Store) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
