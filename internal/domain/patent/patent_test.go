package patent

import (
	"strings"
	"testing"
)

func makeRecord(t *testing.T) Record {
	t.Helper()
	rec, err := New(
		"US-1234567", "Tire Tread", "A tread pattern for wet grip.",
		[]string{"A tire comprising a tread.", "The tire of claim 1 with grooves."},
		"B60C11/03", "2021-06-15", "Long description.",
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return rec
}

func TestNew_RequiresDocNumber(t *testing.T) {
	_, err := New("", "t", "a", nil, "", "", "")
	if err == nil {
		t.Fatal("expected error for empty doc_number")
	}
}

func TestEmbeddingText(t *testing.T) {
	rec := makeRecord(t)
	got := rec.EmbeddingText()
	want := "A tread pattern for wet grip. A tire comprising a tread. The tire of claim 1 with grooves."
	if got != want {
		t.Errorf("EmbeddingText = %q, want %q", got, want)
	}
}

func TestEmbeddingText_EmptyAbstract(t *testing.T) {
	rec, err := New("US-1", "t", "", []string{"claim one"}, "", "", "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := rec.EmbeddingText(); got != "claim one" {
		t.Errorf("EmbeddingText = %q, want %q", got, "claim one")
	}
}

func TestSearchableText_Lowercased(t *testing.T) {
	rec := makeRecord(t)
	text := rec.SearchableText()
	if text != strings.ToLower(text) {
		t.Errorf("SearchableText not lowercased: %q", text)
	}
	if !strings.Contains(text, "tire tread") {
		t.Errorf("SearchableText missing title: %q", text)
	}
	if !strings.Contains(text, "grooves") {
		t.Errorf("SearchableText missing claims: %q", text)
	}
}

func TestNormalizeDocNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"US-1234567", "1234567"},
		{"us 1234567", "1234567"},
		{"1234567", "1234567"},
		{"  US1234567  ", "1234567"},
		{"US-10-987 654", "10987654"},
		{"EP-555", "EP555"},
	}
	for _, tt := range tests {
		if got := NormalizeDocNumber(tt.in); got != tt.want {
			t.Errorf("NormalizeDocNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
