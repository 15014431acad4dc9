package patent

import (
	"fmt"
	"strings"
)

// Record is a single cleaned patent. Immutable once loaded: the corpus is only
// ever replaced wholesale, never patched record by record.
type Record struct {
	docNumber           string
	title               string
	abstract            string
	claims              []string
	classification      string
	publicationDate     string // ISO YYYY-MM-DD, may be empty
	detailedDescription string
}

// New validates and creates a patent record.
func New(
	docNumber, title, abstract string,
	claims []string,
	classification, publicationDate, detailedDescription string,
) (Record, error) {
	if docNumber == "" {
		return Record{}, fmt.Errorf("doc_number is required")
	}
	return Record{
		docNumber:           docNumber,
		title:               title,
		abstract:            abstract,
		claims:              claims,
		classification:      classification,
		publicationDate:     publicationDate,
		detailedDescription: detailedDescription,
	}, nil
}

// DocNumber returns the unique document number.
func (r *Record) DocNumber() string { return r.docNumber }

// Title returns the patent title.
func (r *Record) Title() string { return r.title }

// Abstract returns the patent abstract.
func (r *Record) Abstract() string { return r.abstract }

// Claims returns the ordered claim texts (index implies claim number).
func (r *Record) Claims() []string { return r.claims }

// Classification returns the IPC/CPC classification code.
func (r *Record) Classification() string { return r.classification }

// PublicationDate returns the ISO publication date, empty if unknown.
func (r *Record) PublicationDate() string { return r.publicationDate }

// DetailedDescription returns the full description text, may be empty.
func (r *Record) DetailedDescription() string { return r.detailedDescription }

// EmbeddingText is the text a record contributes to the embedding matrix.
// The same text is used when the record itself becomes a query, which keeps
// query and corpus vectors in one space.
func (r *Record) EmbeddingText() string {
	parts := make([]string, 0, 2+len(r.claims))
	if r.abstract != "" {
		parts = append(parts, r.abstract)
	}
	parts = append(parts, r.claims...)
	return strings.Join(parts, " ")
}

// SearchableText is the lowercased concatenation of title, abstract, and
// claims, used by keyword filtering and feature overlap.
func (r *Record) SearchableText() string {
	parts := make([]string, 0, 2+len(r.claims))
	parts = append(parts, r.title, r.abstract)
	parts = append(parts, r.claims...)
	return strings.ToLower(strings.Join(parts, " "))
}

// NormalizeDocNumber strips the country prefix, dashes, and spaces so that
// "US-1234567", "us 1234567", and "1234567" all compare equal.
func NormalizeDocNumber(docNumber string) string {
	n := strings.ToUpper(strings.TrimSpace(docNumber))
	n = strings.TrimPrefix(n, "US")
	n = strings.ReplaceAll(n, "-", "")
	return strings.ReplaceAll(n, " ", "")
}
