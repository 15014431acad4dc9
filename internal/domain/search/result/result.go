package result

// Result is a single ranked search hit with its scenario annotations.
// Created per query and discarded after the response is written; persistence
// of results belongs to the history collaborator.
type Result struct {
	docNumber       string
	title           string
	abstract        string
	classification  string
	publicationDate string
	score           float64

	// Scenario annotations, populated by the enricher.
	riskLevel           string
	noveltyAssessment   string
	closestPriorArt     bool
	technicalField      string
	independentClaims   []string
	overlappingFeatures []string
	matchedClaims       []string
	keyDifferences      []string
	claimsCount         int
	allClaims           []string
	detailedDescription string
}

// New creates a ranked result from the base record fields and its score.
func New(docNumber, title, abstract, classification, publicationDate string, score float64) Result {
	return Result{
		docNumber:       docNumber,
		title:           title,
		abstract:        abstract,
		classification:  classification,
		publicationDate: publicationDate,
		score:           score,
	}
}

// DocNumber returns the document number.
func (r *Result) DocNumber() string { return r.docNumber }

// Title returns the patent title.
func (r *Result) Title() string { return r.title }

// Abstract returns the patent abstract.
func (r *Result) Abstract() string { return r.abstract }

// Classification returns the classification code.
func (r *Result) Classification() string { return r.classification }

// PublicationDate returns the publication date.
func (r *Result) PublicationDate() string { return r.publicationDate }

// Score returns the raw cosine similarity (not clamped).
func (r *Result) Score() float64 { return r.score }

// RiskLevel returns the infringement risk label, empty outside that scenario.
func (r *Result) RiskLevel() string { return r.riskLevel }

// NoveltyAssessment returns the patentability label, empty outside that scenario.
func (r *Result) NoveltyAssessment() string { return r.noveltyAssessment }

// ClosestPriorArt reports whether this is the single highest-scoring result
// of a patentability search.
func (r *Result) ClosestPriorArt() bool { return r.closestPriorArt }

// TechnicalField returns the IPC section name for the classification code.
func (r *Result) TechnicalField() string { return r.technicalField }

// IndependentClaims returns claims that do not reference another claim.
func (r *Result) IndependentClaims() []string { return r.independentClaims }

// OverlappingFeatures returns technical features shared with the query text.
func (r *Result) OverlappingFeatures() []string { return r.overlappingFeatures }

// MatchedClaims returns the claims that semantically match the query.
func (r *Result) MatchedClaims() []string { return r.matchedClaims }

// KeyDifferences returns query features absent from this prior art.
func (r *Result) KeyDifferences() []string { return r.keyDifferences }

// ClaimsCount returns the total number of claims on the record.
func (r *Result) ClaimsCount() int { return r.claimsCount }

// AllClaims returns the transport-capped claims list.
func (r *Result) AllClaims() []string { return r.allClaims }

// DetailedDescription returns the transport-truncated description.
func (r *Result) DetailedDescription() string { return r.detailedDescription }

// WithClaims attaches the capped claims list and total claim count.
func (r Result) WithClaims(allClaims []string, count int) Result {
	r.allClaims = allClaims
	r.claimsCount = count
	return r
}

// WithDescription attaches the truncated description.
func (r Result) WithDescription(desc string) Result {
	r.detailedDescription = desc
	return r
}

// WithRiskLevel attaches the infringement risk label.
func (r Result) WithRiskLevel(level string) Result {
	r.riskLevel = level
	return r
}

// WithNovelty attaches the patentability labels.
func (r Result) WithNovelty(assessment, technicalField string, closestPriorArt bool) Result {
	r.noveltyAssessment = assessment
	r.technicalField = technicalField
	r.closestPriorArt = closestPriorArt
	return r
}

// WithIndependentClaims attaches the independent claims extract.
func (r Result) WithIndependentClaims(claims []string) Result {
	r.independentClaims = claims
	return r
}

// WithOverlappingFeatures attaches the feature overlap extract.
func (r Result) WithOverlappingFeatures(features []string) Result {
	r.overlappingFeatures = features
	return r
}

// WithMatchedClaims attaches the semantically matching claims.
func (r Result) WithMatchedClaims(claims []string) Result {
	r.matchedClaims = claims
	return r
}

// WithKeyDifferences attaches the novel-feature extract.
func (r Result) WithKeyDifferences(differences []string) Result {
	r.keyDifferences = differences
	return r
}
