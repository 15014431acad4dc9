package query

import (
	"fmt"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/scenario"
	"github.com/thinkstruct/patentsearch/internal/domain/search/criteria"
)

// Search parameter limits.
const (
	MaxTextLength = 32768
	DefaultTopK   = 20
	MaxTopK       = 100
)

// Query is a validated, scenario-tagged search request. Transient: never
// persisted by the engine itself.
type Query struct {
	scn              scenario.Scenario
	text             string
	docNumber        string
	excludeDocNumber string
	filters          criteria.Criteria
	topK             int
	minScore         float64
}

// New validates and normalizes a search query. Either text or, for the by_id
// scenario, a document number must be present. Defaults: topK=20, capped at 100.
func New(
	scn scenario.Scenario,
	text, docNumber, excludeDocNumber string,
	filters criteria.Criteria,
	topK int,
	minScore float64,
) (Query, error) {
	if !scn.IsValid() {
		return Query{}, fmt.Errorf("invalid scenario %q: %w", scn, domain.ErrInvalidCriteria)
	}
	if scn == scenario.ByID {
		if docNumber == "" {
			return Query{}, fmt.Errorf("doc_number is required for by_id search: %w", domain.ErrInvalidCriteria)
		}
	} else if text == "" {
		return Query{}, fmt.Errorf("query text is required: %w", domain.ErrInvalidCriteria)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("query text too long (max %d chars): %w", MaxTextLength, domain.ErrInvalidCriteria)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if minScore < 0 || minScore > 1 {
		return Query{}, fmt.Errorf("min_similarity must be between 0 and 1: %w", domain.ErrInvalidCriteria)
	}
	return Query{
		scn:              scn,
		text:             text,
		docNumber:        docNumber,
		excludeDocNumber: excludeDocNumber,
		filters:          filters,
		topK:             topK,
		minScore:         minScore,
	}, nil
}

// Scenario returns the business framing of the search.
func (q *Query) Scenario() scenario.Scenario { return q.scn }

// Text returns the free query text (empty for by_id).
func (q *Query) Text() string { return q.text }

// DocNumber returns the source document number for by_id searches.
func (q *Query) DocNumber() string { return q.docNumber }

// ExcludeDocNumber returns the caller's own document number, always removed
// from candidates.
func (q *Query) ExcludeDocNumber() string { return q.excludeDocNumber }

// Filters returns the structured filter criteria.
func (q *Query) Filters() criteria.Criteria { return q.filters }

// TopK returns the number of results to return.
func (q *Query) TopK() int { return q.topK }

// MinScore returns the minimum similarity floor (0 disables it).
func (q *Query) MinScore() float64 { return q.minScore }
