package engine

import (
	"strings"

	"github.com/thinkstruct/patentsearch/internal/domain/patent"
	"github.com/thinkstruct/patentsearch/internal/domain/search/criteria"
)

// filterCandidates applies the structured filters in fixed order, cheapest
// and most selective first, because similarity scoring dominates cost:
// classification prefix, date bounds, keyword containment, title substring.
// Stages are pure predicates composed by intersection; nothing here reorders
// or scores records. Empty criteria passes the whole corpus through.
func filterCandidates(records []patent.Record, c criteria.Criteria, exclude map[int]struct{}) []int {
	idxs := make([]int, 0, len(records))
	for i := range records {
		if _, skip := exclude[i]; skip {
			continue
		}
		idxs = append(idxs, i)
	}

	idxs = filterByClassification(records, idxs, c.ClassificationPrefix())
	idxs = filterByDate(records, idxs, c.DateFrom(), c.DateTo())
	idxs = filterByKeywords(records, idxs, c.Keywords())
	return filterByTitle(records, idxs, c.TitleContains())
}

// filterByClassification keeps records whose classification starts with prefix.
func filterByClassification(records []patent.Record, idxs []int, prefix string) []int {
	if prefix == "" {
		return idxs
	}
	prefix = strings.ToUpper(prefix)
	kept := idxs[:0]
	for _, i := range idxs {
		if strings.HasPrefix(strings.ToUpper(records[i].Classification()), prefix) {
			kept = append(kept, i)
		}
	}
	return kept
}

// filterByDate keeps records inside the inclusive [from, to] publication
// window. Records without a publication date fail any date-bounded filter.
// ISO dates compare lexicographically.
func filterByDate(records []patent.Record, idxs []int, from, to string) []int {
	if from == "" && to == "" {
		return idxs
	}
	kept := idxs[:0]
	for _, i := range idxs {
		pub := records[i].PublicationDate()
		if pub == "" {
			continue
		}
		if from != "" && pub < from {
			continue
		}
		if to != "" && pub > to {
			continue
		}
		kept = append(kept, i)
	}
	return kept
}

// filterByKeywords keeps records containing every keyword (AND semantics),
// case-insensitive over title+abstract+claims.
func filterByKeywords(records []patent.Record, idxs []int, keywords []string) []int {
	if len(keywords) == 0 {
		return idxs
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	kept := idxs[:0]
	for _, i := range idxs {
		text := records[i].SearchableText()
		all := true
		for _, kw := range lowered {
			if !strings.Contains(text, kw) {
				all = false
				break
			}
		}
		if all {
			kept = append(kept, i)
		}
	}
	return kept
}

// filterByTitle keeps records whose title contains the substring, case-insensitive.
func filterByTitle(records []patent.Record, idxs []int, substr string) []int {
	if substr == "" {
		return idxs
	}
	substr = strings.ToLower(strings.TrimSpace(substr))
	kept := idxs[:0]
	for _, i := range idxs {
		if strings.Contains(strings.ToLower(records[i].Title()), substr) {
			kept = append(kept, i)
		}
	}
	return kept
}
