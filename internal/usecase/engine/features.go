package engine

import (
	"regexp"
	"strings"

	"github.com/thinkstruct/patentsearch/internal/domain/patent"
)

// Feature extraction bounds.
const (
	maxFeatures       = 10
	minFeatureLen     = 11
	maxFeatureLen     = 99
	overlapThreshold  = 0.5 // fraction of feature keywords that must appear
	minKeywordLen     = 4
	maxKeyDifferences = 5
	// keyDifferenceClaims bounds how many leading claims contribute to a
	// prior art's feature set when computing key differences.
	keyDifferenceClaims = 3
)

// featurePatterns capture the object of common claim-drafting phrases.
// A heuristic over surface text, not a claim parser.
var featurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`comprising\s+([^,;.]+)`),
	regexp.MustCompile(`including\s+([^,;.]+)`),
	regexp.MustCompile(`having\s+([^,;.]+)`),
	regexp.MustCompile(`configured to\s+([^,;.]+)`),
	regexp.MustCompile(`adapted to\s+([^,;.]+)`),
}

// extractTechnicalFeatures pulls short feature phrases out of patent text.
// Deduplicated in first-seen order so results stay reproducible.
func extractTechnicalFeatures(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	features := make([]string, 0, maxFeatures)

	for _, pattern := range featurePatterns {
		for _, m := range pattern.FindAllStringSubmatch(lower, -1) {
			feature := strings.TrimSpace(m[1])
			if len(feature) < minFeatureLen || len(feature) > maxFeatureLen {
				continue
			}
			if _, dup := seen[feature]; dup {
				continue
			}
			seen[feature] = struct{}{}
			features = append(features, feature)
			if len(features) == maxFeatures {
				return features
			}
		}
	}
	return features
}

// overlappingFeatures returns the query features that also appear in the
// patent: a feature overlaps when at least half of its significant keywords
// (longer than 3 chars) occur in the patent's searchable text.
func overlappingFeatures(queryFeatures []string, rec *patent.Record) []string {
	if len(queryFeatures) == 0 {
		return nil
	}
	text := rec.SearchableText()

	overlapping := make([]string, 0, len(queryFeatures))
	for _, feature := range queryFeatures {
		var keywords, matched int
		for _, w := range strings.Fields(feature) {
			if len(w) < minKeywordLen {
				continue
			}
			keywords++
			if strings.Contains(text, w) {
				matched++
			}
		}
		if keywords > 0 && float64(matched) >= float64(keywords)*overlapThreshold {
			overlapping = append(overlapping, feature)
		}
	}
	return overlapping
}

// keyDifferences returns the query features absent from the prior art's
// abstract and leading claims, labeled as novel. Query extraction order is
// kept so the output stays reproducible.
func keyDifferences(queryFeatures []string, rec *patent.Record) []string {
	if len(queryFeatures) == 0 {
		return nil
	}
	text := rec.Abstract() + " " + strings.Join(capClaims(rec.Claims(), keyDifferenceClaims), " ")
	known := make(map[string]struct{})
	for _, f := range extractTechnicalFeatures(text) {
		known[f] = struct{}{}
	}

	differences := make([]string, 0, maxKeyDifferences)
	for _, f := range queryFeatures {
		if _, dup := known[f]; dup {
			continue
		}
		differences = append(differences, "Novel feature: "+f)
		if len(differences) == maxKeyDifferences {
			break
		}
	}
	return differences
}
