package engine

import (
	"context"
	"fmt"
	"regexp"
)

// Per-result claim extraction bounds.
const (
	maxIndependentClaims = 3
	maxMatchedClaims     = 5
	claimMatchThreshold  = 0.5
)

// claimRefPattern detects a textual reference to another claim ("of claim 1",
// "according to claims 2-4"). A pluggable heuristic, not a parse of claim
// structure: absence of a reference is what makes a claim independent.
var claimRefPattern = regexp.MustCompile(`(?i)claims?\s+\d+`)

// independentClaims returns the claims that do not reference another claim
// by number. The first claim is always independent.
func independentClaims(claims []string) []string {
	independent := make([]string, 0, maxIndependentClaims)
	for i, claim := range claims {
		if i == 0 || !claimRefPattern.MatchString(claim) {
			independent = append(independent, claim)
			if len(independent) == maxIndependentClaims {
				break
			}
		}
	}
	return independent
}

// matchedClaims returns the claims whose embeddings score at or above the
// match threshold against the query vector, in claim order, capped at
// maxMatchedClaims. Claims are encoded with the same embedder that encoded
// the query, so identical text compares on identical vectors.
func (s *Service) matchedClaims(ctx context.Context, queryVec []float32, claims []string) ([]string, error) {
	if len(claims) == 0 || s.embedder == nil {
		return nil, nil
	}
	qNorm := norm(queryVec)
	matched := make([]string, 0, maxMatchedClaims)
	for _, claim := range claims {
		emb, err := s.embedder.Embed(ctx, claim)
		if err != nil {
			return nil, fmt.Errorf("encode claim: %w", err)
		}
		if cosine(queryVec, qNorm, emb.Embedding) >= claimMatchThreshold {
			matched = append(matched, claim)
			if len(matched) == maxMatchedClaims {
				break
			}
		}
	}
	return matched, nil
}
