package engine

import (
	"testing"

	"github.com/thinkstruct/patentsearch/internal/domain/search/criteria"
)

func makeCriteria(t *testing.T, class string, keywords []string, title, from, to string) criteria.Criteria {
	t.Helper()
	c, err := criteria.New(class, keywords, title, from, to)
	if err != nil {
		t.Fatalf("criteria.New: %v", err)
	}
	return c
}

func TestFilterCandidates_EmptyCriteriaPassesAll(t *testing.T) {
	records := newMockCorpus(t).records

	got := filterCandidates(records, criteria.Criteria{}, nil)
	if len(got) != len(records) {
		t.Fatalf("expected %d candidates, got %d", len(records), len(got))
	}
	for i, idx := range got {
		if idx != i {
			t.Errorf("candidate %d = %d, insertion order broken", i, idx)
		}
	}
}

func TestFilterCandidates_Exclusion(t *testing.T) {
	records := newMockCorpus(t).records

	got := filterCandidates(records, criteria.Criteria{}, map[int]struct{}{1: {}, 3: {}})
	want := []int{0, 2}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestFilterByClassification_CaseInsensitivePrefix(t *testing.T) {
	records := newMockCorpus(t).records

	c := makeCriteria(t, "b60c", nil, "", "", "")
	got := filterCandidates(records, c, nil)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("candidates = %v, want [0 1]", got)
	}
}

func TestFilterByDate_InclusiveBounds(t *testing.T) {
	records := newMockCorpus(t).records

	// US-200 published 2020-07-15: both bounds are inclusive.
	c := makeCriteria(t, "", nil, "", "2020-07-15", "2020-07-15")
	got := filterCandidates(records, c, nil)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("candidates = %v, want [1]", got)
	}
}

func TestFilterByDate_MissingDateFailsBoundedFilter(t *testing.T) {
	records := newMockCorpus(t).records

	// US-400 has no publication date and must not pass any date filter.
	c := makeCriteria(t, "", nil, "", "1900-01-01", "")
	got := filterCandidates(records, c, nil)
	for _, idx := range got {
		if idx == 3 {
			t.Error("record without publication date passed a bounded date filter")
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 dated records, got %v", got)
	}
}

func TestFilterByKeywords_ANDSemantics(t *testing.T) {
	records := newMockCorpus(t).records

	c := makeCriteria(t, "", []string{"TIRE", "grooves"}, "", "", "")
	got := filterCandidates(records, c, nil)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("candidates = %v, want [0]", got)
	}
}

func TestFilterByTitle_Substring(t *testing.T) {
	records := newMockCorpus(t).records

	c := makeCriteria(t, "", nil, "tire", "", "")
	got := filterCandidates(records, c, nil)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("candidates = %v, want [0 1]", got)
	}
}

func TestFilterCandidates_StagesIntersect(t *testing.T) {
	records := newMockCorpus(t).records

	// Classification keeps 0 and 1, keywords keep only the silica compound.
	c := makeCriteria(t, "B60C", []string{"silica"}, "", "", "")
	got := filterCandidates(records, c, nil)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("candidates = %v, want [1]", got)
	}
}
