package chi

import (
	"github.com/thinkstruct/patentsearch/internal/domain/patent"
	"github.com/thinkstruct/patentsearch/internal/domain/search/result"
	"github.com/thinkstruct/patentsearch/internal/repository/history"
	"github.com/thinkstruct/patentsearch/internal/usecase/health"
	"github.com/thinkstruct/patentsearch/internal/usecase/stats"
)

type errorCode string

const (
	codeBadRequest            errorCode = "bad_request"
	codeValidationFailed      errorCode = "validation_failed"
	codePatentNotFound        errorCode = "patent_not_found"
	codeEmbeddingProviderErr  errorCode = "embedding_provider_error"
	codeEngineNotReady        errorCode = "engine_not_ready"
	codeInternalError         errorCode = "internal_error"
	codeHistoryNotConfigured  errorCode = "history_not_configured"
	codeUnauthorized          errorCode = "unauthorized"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// filterRequest carries the optional structured filters of a search request.
type filterRequest struct {
	Classification string   `json:"classification,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	TitleContains  string   `json:"title_contains,omitempty"`
	DateFrom       string   `json:"date_from,omitempty"`
	DateTo         string   `json:"date_to,omitempty"`
}

// searchRequest is the body of POST /api/v1/search/{scenario}.
type searchRequest struct {
	Query string `json:"query"`
	// TargetDocNumber names the patent under analysis. When set it is
	// excluded from results; for invalidity its publication date also caps
	// the prior-art window.
	TargetDocNumber string `json:"target_doc_number,omitempty"`
	TopK            int    `json:"top_k,omitempty"`
	// MinSimilarity is a pointer so an absent field can be told apart from an
	// explicit 0: infringement defaults the floor when the field is absent.
	MinSimilarity *float64       `json:"min_similarity,omitempty"`
	Filters       *filterRequest `json:"filters,omitempty"`
}

type resultItem struct {
	DocNumber       string  `json:"doc_number"`
	Title           string  `json:"title"`
	Abstract        string  `json:"abstract"`
	Classification  string  `json:"classification"`
	PublicationDate string  `json:"publication_date"`
	Score           float64 `json:"similarity_score"`

	Claims              []string `json:"claims,omitempty"`
	ClaimsCount         int      `json:"claims_count"`
	MatchedClaims       []string `json:"matched_claims,omitempty"`
	DetailedDescription string   `json:"detailed_description,omitempty"`

	RiskLevel           string   `json:"risk_level,omitempty"`
	OverlappingFeatures []string `json:"overlapping_features,omitempty"`
	NoveltyAssessment   string   `json:"novelty_assessment,omitempty"`
	TechnicalField      string   `json:"technical_field,omitempty"`
	// closest_prior_art is always emitted: an explicit false distinguishes a
	// ranked non-closest result from a scenario without the flag.
	ClosestPriorArt   bool     `json:"closest_prior_art"`
	KeyDifferences    []string `json:"key_differences,omitempty"`
	IndependentClaims []string `json:"independent_claims,omitempty"`
}

type searchResponse struct {
	Scenario     string       `json:"scenario"`
	TotalResults int          `json:"total_results"`
	Results      []resultItem `json:"results"`
}

type patentResponse struct {
	DocNumber           string   `json:"doc_number"`
	Title               string   `json:"title"`
	Abstract            string   `json:"abstract"`
	Claims              []string `json:"claims"`
	Classification      string   `json:"classification"`
	PublicationDate     string   `json:"publication_date"`
	DetailedDescription string   `json:"detailed_description,omitempty"`
}

type statsResponse struct {
	TotalPatents    int            `json:"total_patents"`
	EarliestDate    string         `json:"earliest_date,omitempty"`
	LatestDate      string         `json:"latest_date,omitempty"`
	Sections        map[string]int `json:"sections"`
	Classifications map[string]int `json:"classifications"`
}

type historyResponse struct {
	Entries []history.Entry `json:"entries"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func resultToItem(r *result.Result) resultItem {
	return resultItem{
		DocNumber:           r.DocNumber(),
		Title:               r.Title(),
		Abstract:            r.Abstract(),
		Classification:      r.Classification(),
		PublicationDate:     r.PublicationDate(),
		Score:               r.Score(),
		Claims:              r.AllClaims(),
		ClaimsCount:         r.ClaimsCount(),
		MatchedClaims:       r.MatchedClaims(),
		DetailedDescription: r.DetailedDescription(),
		RiskLevel:           r.RiskLevel(),
		OverlappingFeatures: r.OverlappingFeatures(),
		NoveltyAssessment:   r.NoveltyAssessment(),
		TechnicalField:      r.TechnicalField(),
		ClosestPriorArt:     r.ClosestPriorArt(),
		KeyDifferences:      r.KeyDifferences(),
		IndependentClaims:   r.IndependentClaims(),
	}
}

func patentToResponse(rec *patent.Record) patentResponse {
	return patentResponse{
		DocNumber:           rec.DocNumber(),
		Title:               rec.Title(),
		Abstract:            rec.Abstract(),
		Claims:              rec.Claims(),
		Classification:      rec.Classification(),
		PublicationDate:     rec.PublicationDate(),
		DetailedDescription: rec.DetailedDescription(),
	}
}

func statsToResponse(r stats.Report) statsResponse {
	return statsResponse{
		TotalPatents:    r.TotalCount,
		EarliestDate:    r.EarliestDate,
		LatestDate:      r.LatestDate,
		Sections:        r.Sections,
		Classifications: r.Classes,
	}
}

func healthToResponse(r health.Report) healthResponse {
	checks := make(map[string]string, len(r.Checks))
	for k, v := range r.Checks {
		checks[k] = string(v)
	}
	return healthResponse{Status: string(r.Status), Checks: checks}
}
