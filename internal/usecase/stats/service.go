package stats

import (
	"sync"

	"github.com/thinkstruct/patentsearch/internal/domain/patent"
)

// corpusReader is the consumer interface onto the corpus store.
type corpusReader interface {
	Records() []patent.Record
	Generation() uint64
}

// Report holds corpus-wide descriptive statistics, independent of any query.
type Report struct {
	TotalCount   int            `json:"total_count"`
	EarliestDate string         `json:"earliest_date"`
	LatestDate   string         `json:"latest_date"`
	Sections     map[string]int `json:"sections"`        // by leading IPC section letter
	Classes      map[string]int `json:"classifications"` // by subclass prefix, e.g. B60C
}

// classPrefixLen buckets classification codes by subclass (section + class +
// subclass letter, e.g. "B60C").
const classPrefixLen = 4

// Service computes corpus statistics lazily and caches them until the corpus
// generation changes.
type Service struct {
	corpus corpusReader

	mu     sync.Mutex
	cached Report
	gen    uint64
	valid  bool
}

// New creates a stats service.
func New(corpus corpusReader) *Service {
	return &Service{corpus: corpus}
}

// Report returns the current statistics, recomputing after a corpus reload.
func (s *Service) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen := s.corpus.Generation(); !s.valid || gen != s.gen {
		s.cached = compute(s.corpus.Records())
		s.gen = gen
		s.valid = true
	}
	return s.cached
}

func compute(records []patent.Record) Report {
	report := Report{
		TotalCount: len(records),
		Sections:   make(map[string]int),
		Classes:    make(map[string]int),
	}

	for i := range records {
		rec := &records[i]

		if date := rec.PublicationDate(); date != "" {
			if report.EarliestDate == "" || date < report.EarliestDate {
				report.EarliestDate = date
			}
			if report.LatestDate == "" || date > report.LatestDate {
				report.LatestDate = date
			}
		}

		if class := rec.Classification(); class != "" {
			report.Sections[class[:1]]++
			prefix := class
			if len(prefix) > classPrefixLen {
				prefix = prefix[:classPrefixLen]
			}
			report.Classes[prefix]++
		}
	}
	return report
}
