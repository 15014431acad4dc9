package criteria

import (
	"errors"
	"testing"

	"github.com/thinkstruct/patentsearch/internal/domain"
)

func TestNew_Empty(t *testing.T) {
	c, err := New("", nil, "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.IsEmpty() {
		t.Error("expected empty criteria")
	}
}

func TestNew_DropsBlankKeywords(t *testing.T) {
	c, err := New("", []string{"tire", "", "rubber"}, "", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Keywords(); len(got) != 2 || got[0] != "tire" || got[1] != "rubber" {
		t.Errorf("Keywords = %v, want [tire rubber]", got)
	}
}

func TestNew_InvalidDate(t *testing.T) {
	_, err := New("", nil, "", "2021-13-01", "")
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
	_, err = New("", nil, "", "", "June 2021")
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestNew_InvertedRange(t *testing.T) {
	_, err := New("", nil, "", "2022-01-01", "2021-01-01")
	if !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Fatalf("expected ErrInvalidCriteria, got %v", err)
	}
}

func TestNew_ValidRange(t *testing.T) {
	c, err := New("B60C", []string{"tread"}, "tire", "2020-01-01", "2022-12-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.IsEmpty() {
		t.Error("expected non-empty criteria")
	}
	if c.ClassificationPrefix() != "B60C" || c.TitleContains() != "tire" {
		t.Errorf("unexpected criteria: %+v", c)
	}
}

func TestWithDateTo(t *testing.T) {
	c, err := New("", nil, "", "2020-01-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	capped := c.WithDateTo("2021-06-15")
	if capped.DateTo() != "2021-06-15" {
		t.Errorf("DateTo = %q, want 2021-06-15", capped.DateTo())
	}
	if c.DateTo() != "" {
		t.Error("original criteria mutated")
	}
}
