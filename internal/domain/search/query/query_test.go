package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/scenario"
	"github.com/thinkstruct/patentsearch/internal/domain/search/criteria"
)

func TestNew_InvalidScenario(t *testing.T) {
	_, err := New("prior_art", "text", "", "", criteria.Criteria{}, 0, 0)
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestNew_TextRequired(t *testing.T) {
	_, err := New(scenario.Infringement, "", "", "", criteria.Criteria{}, 0, 0)
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestNew_ByIDRequiresDocNumber(t *testing.T) {
	_, err := New(scenario.ByID, "", "", "", criteria.Criteria{}, 0, 0)
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}

	q, err := New(scenario.ByID, "", "US-1", "", criteria.Criteria{}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.DocNumber() != "US-1" {
		t.Errorf("DocNumber = %q", q.DocNumber())
	}
}

func TestNew_TextTooLong(t *testing.T) {
	long := strings.Repeat("a", MaxTextLength+1)
	_, err := New(scenario.Invalidity, long, "", "", criteria.Criteria{}, 0, 0)
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestNew_TopKDefaultsAndCap(t *testing.T) {
	q, err := New(scenario.Patentability, "text", "", "", criteria.Criteria{}, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TopK() != DefaultTopK {
		t.Errorf("TopK = %d, want %d", q.TopK(), DefaultTopK)
	}

	q, err = New(scenario.Patentability, "text", "", "", criteria.Criteria{}, 5000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TopK() != MaxTopK {
		t.Errorf("TopK = %d, want %d", q.TopK(), MaxTopK)
	}
}

func TestNew_MinScoreBounds(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.1} {
		if _, err := New(scenario.Infringement, "text", "", "", criteria.Criteria{}, 0, bad); !errors.Is(err, domain.ErrInvalidCriteria) {
			t.Errorf("minScore %v: expected ErrInvalidCriteria, got %v", bad, err)
		}
	}
	q, err := New(scenario.Infringement, "text", "", "", criteria.Criteria{}, 0, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.MinScore() != 0.5 {
		t.Errorf("MinScore = %v", q.MinScore())
	}
}
