package criteria

import (
	"fmt"
	"time"

	"github.com/thinkstruct/patentsearch/internal/domain"
)

const dateLayout = "2006-01-02"

// Criteria is a validated bag of optional structured filters. A zero-value
// field means "no constraint", never "match nothing".
type Criteria struct {
	classificationPrefix string
	keywords             []string
	titleContains        string
	dateFrom             string
	dateTo               string
}

// New validates and creates filter criteria. Dates are ISO YYYY-MM-DD;
// an inverted range is rejected before reaching the filter pipeline.
func New(classificationPrefix string, keywords []string, titleContains, dateFrom, dateTo string) (Criteria, error) {
	if err := validDate(dateFrom); err != nil {
		return Criteria{}, fmt.Errorf("date_from: %w", err)
	}
	if err := validDate(dateTo); err != nil {
		return Criteria{}, fmt.Errorf("date_to: %w", err)
	}
	if dateFrom != "" && dateTo != "" && dateFrom > dateTo {
		return Criteria{}, fmt.Errorf("date_from %s is after date_to %s: %w", dateFrom, dateTo, domain.ErrInvalidCriteria)
	}
	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	return Criteria{
		classificationPrefix: classificationPrefix,
		keywords:             kws,
		titleContains:        titleContains,
		dateFrom:             dateFrom,
		dateTo:               dateTo,
	}, nil
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, domain.ErrInvalidCriteria)
	}
	return nil
}

// ClassificationPrefix returns the IPC/CPC prefix constraint.
func (c *Criteria) ClassificationPrefix() string { return c.classificationPrefix }

// Keywords returns the required keywords (AND semantics).
func (c *Criteria) Keywords() []string { return c.keywords }

// TitleContains returns the title substring constraint.
func (c *Criteria) TitleContains() string { return c.titleContains }

// DateFrom returns the inclusive lower publication date bound.
func (c *Criteria) DateFrom() string { return c.dateFrom }

// DateTo returns the inclusive upper publication date bound.
func (c *Criteria) DateTo() string { return c.dateTo }

// IsEmpty reports whether no constraint is set.
func (c *Criteria) IsEmpty() bool {
	return c.classificationPrefix == "" && len(c.keywords) == 0 &&
		c.titleContains == "" && c.dateFrom == "" && c.dateTo == ""
}

// WithDateTo returns a copy with the upper date bound replaced. Used by the
// invalidity scenario to cap results at the target patent's date.
func (c Criteria) WithDateTo(dateTo string) Criteria {
	c.dateTo = dateTo
	return c
}
