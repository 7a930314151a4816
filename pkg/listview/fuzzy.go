package listview

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchResult is the outcome of ranking a cell value against a query.
type MatchResult struct {
	Passed bool
	Rank   int
}

const (
	rankSubsequence = 1_000
	rankSubstring   = 2_000
	rankPrefix      = 3_000
	maxDistance     = rankSubsequence - 1
)

// Match reports whether query is a case-insensitive subsequence of cellValue.
// A prefix outranks a contiguous substring, which outranks a scattered
// subsequence; within a tier fewer skipped characters rank higher.
// An empty query always passes with rank 0.
func Match(cellValue, query string) MatchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return MatchResult{Passed: true}
	}
	distance := fuzzy.RankMatchNormalizedFold(query, cellValue)
	if distance < 0 {
		return MatchResult{}
	}
	if distance > maxDistance {
		distance = maxDistance
	}

	folded := strings.ToLower(cellValue)
	needle := strings.ToLower(query)
	base := rankSubsequence
	switch {
	case strings.HasPrefix(folded, needle):
		base = rankPrefix
	case strings.Contains(folded, needle):
		base = rankSubstring
	}
	return MatchResult{Passed: true, Rank: base - distance}
}
