package engine

import (
	"context"

	"github.com/thinkstruct/patentsearch/internal/domain/patent"
	"github.com/thinkstruct/patentsearch/internal/domain/scenario"
	"github.com/thinkstruct/patentsearch/internal/domain/search/result"
)

// Risk and novelty labels are fixed step functions of the similarity score.
// Thresholds are boundary-exact: 0.9 is High, not Very High; 0.85 is Similar,
// not Identical.
const (
	RiskVeryHigh = "Very High"
	RiskHigh     = "High"
	RiskMedium   = "Medium"
	RiskLow      = "Low"

	NoveltyIdentical = "Identical"
	NoveltySimilar   = "Similar"
	NoveltyNovel     = "Novel"
)

// ipcSections maps the leading IPC/CPC section letter to its technical field.
var ipcSections = map[byte]string{
	'A': "Human Necessities",
	'B': "Performing Operations; Transporting",
	'C': "Chemistry; Metallurgy",
	'D': "Textiles; Paper",
	'E': "Fixed Constructions",
	'F': "Mechanical Engineering",
	'G': "Physics",
	'H': "Electricity",
}

// enrichAll materializes ranked (index, score) pairs into scenario-annotated
// results. Ranked order is already deterministic, so "first" is well-defined
// for the closest-prior-art flag. The query vector is the same one the ranker
// scored with, reused here for per-claim matching.
func (s *Service) enrichAll(
	ctx context.Context, scn scenario.Scenario,
	queryText string, queryVec []float32,
	records []patent.Record, ranked []scored,
) ([]result.Result, error) {
	var queryFeatures []string
	if scn == scenario.Infringement || scn == scenario.Patentability {
		queryFeatures = extractTechnicalFeatures(queryText)
	}

	results := make([]result.Result, 0, len(ranked))
	for pos, hit := range ranked {
		rec := &records[hit.idx]

		r := result.New(
			rec.DocNumber(), rec.Title(), rec.Abstract(),
			rec.Classification(), rec.PublicationDate(), hit.score,
		)
		r = r.WithClaims(capClaims(rec.Claims(), s.maxClaims), len(rec.Claims()))
		r = r.WithDescription(truncateText(rec.DetailedDescription(), s.descBudget))

		matched, err := s.matchedClaims(ctx, queryVec, rec.Claims())
		if err != nil {
			return nil, err
		}
		r = r.WithMatchedClaims(matched)

		switch scn {
		case scenario.Infringement:
			r = r.WithRiskLevel(riskLevel(hit.score))
			r = r.WithOverlappingFeatures(overlappingFeatures(queryFeatures, rec))
		case scenario.Patentability:
			r = r.WithNovelty(assessNovelty(hit.score), technicalField(rec.Classification()), pos == 0)
			r = r.WithKeyDifferences(keyDifferences(queryFeatures, rec))
		case scenario.Invalidity:
			r = r.WithIndependentClaims(independentClaims(rec.Claims()))
		case scenario.ByID:
			// Matched claims only, no further annotations.
		}

		results = append(results, r)
	}
	return results, nil
}

// riskLevel maps similarity to an infringement risk label.
func riskLevel(score float64) string {
	switch {
	case score > 0.9:
		return RiskVeryHigh
	case score >= 0.7:
		return RiskHigh
	case score >= 0.5:
		return RiskMedium
	default:
		return RiskLow
	}
}

// assessNovelty maps similarity to a patentability label. Lower similarity
// means better patentability.
func assessNovelty(score float64) string {
	switch {
	case score > 0.85:
		return NoveltyIdentical
	case score >= 0.6:
		return NoveltySimilar
	default:
		return NoveltyNovel
	}
}

// technicalField resolves the IPC section name from a classification code.
func technicalField(classification string) string {
	if classification == "" {
		return "Unknown"
	}
	c := classification[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if field, ok := ipcSections[c]; ok {
		return field
	}
	return "Unknown"
}

func capClaims(claims []string, maxClaims int) []string {
	if len(claims) <= maxClaims {
		return claims
	}
	return claims[:maxClaims]
}

// truncateText caps text at budget runes without splitting a UTF-8 sequence.
func truncateText(text string, budget int) string {
	if len(text) <= budget {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}
	return string(runes[:budget])
}
