// Package search implements the exact / pattern / similar (fuzzy) match
// engine that ranks InventoryObject sets by a search term.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rohmanhakim/docsintel/internal/docmodel"
)

// Mode selects the matching strategy.
type Mode string

const (
	ModeExact   Mode = "exact"
	ModePattern Mode = "pattern"
	ModeSimilar Mode = "similar"
)

const defaultFuzzyThreshold = 50.0

// Params configures one Search call.
type Params struct {
	Mode          Mode
	CaseSensitive bool
	ContainsTerm  bool
	Threshold     float64 // 0-100, similar mode only; 0 means use the default.
	ResultsMax    int     // 0 means unbounded.
}

// Search ranks objects against term per Params.Mode and returns results
// sorted descending by score, ties broken by input order (stable sort),
// capped at ResultsMax.
func Search(objects []docmodel.InventoryObject, term string, params Params) []docmodel.SearchResult {
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = defaultFuzzyThreshold
	}

	lookupTerm := term
	if !params.CaseSensitive {
		lookupTerm = strings.ToLower(term)
	}

	var results []docmodel.SearchResult

	switch params.Mode {
	case ModeExact:
		results = searchExact(objects, lookupTerm, params)
	case ModePattern:
		results = searchPattern(objects, term, params.CaseSensitive)
	default:
		results = searchSimilar(objects, lookupTerm, params, threshold)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if params.ResultsMax > 0 && len(results) > params.ResultsMax {
		results = results[:params.ResultsMax]
	}

	return results
}

func candidateName(obj docmodel.InventoryObject, caseSensitive bool) string {
	if caseSensitive {
		return obj.Name()
	}
	return strings.ToLower(obj.Name())
}

func searchExact(objects []docmodel.InventoryObject, term string, params Params) []docmodel.SearchResult {
	var results []docmodel.SearchResult
	for _, obj := range objects {
		name := candidateName(obj, params.CaseSensitive)
		switch {
		case name == term:
			results = append(results, docmodel.SearchResult{Object: obj, Score: 1.0, Reason: docmodel.MatchReasonExact})
		case params.ContainsTerm && strings.Contains(name, term):
			results = append(results, docmodel.SearchResult{Object: obj, Score: 0.8, Reason: docmodel.MatchReasonContains})
		}
	}
	return results
}

func searchPattern(objects []docmodel.InventoryObject, pattern string, caseSensitive bool) []docmodel.SearchResult {
	expr := pattern
	if !caseSensitive {
		expr = "(?i)" + pattern
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil
	}

	var results []docmodel.SearchResult
	for _, obj := range objects {
		if re.MatchString(obj.Name()) {
			results = append(results, docmodel.SearchResult{Object: obj, Score: 1.0, Reason: docmodel.MatchReasonPattern})
		}
	}
	return results
}

func searchSimilar(objects []docmodel.InventoryObject, term string, params Params, threshold float64) []docmodel.SearchResult {
	var results []docmodel.SearchResult

	for _, obj := range objects {
		name := candidateName(obj, params.CaseSensitive)

		switch {
		case name == term:
			results = append(results, docmodel.SearchResult{Object: obj, Score: 1.0, Reason: docmodel.MatchReasonExact})
			continue
		case strings.HasPrefix(name, term):
			results = append(results, docmodel.SearchResult{Object: obj, Score: 0.9, Reason: docmodel.MatchReasonStartsWith})
			continue
		case strings.Contains(name, term):
			results = append(results, docmodel.SearchResult{Object: obj, Score: 0.8, Reason: docmodel.MatchReasonContains})
			continue
		}

		max := fuzzyMax(name, term)
		if params.ContainsTerm && strings.Contains(name, term) {
			results = append(results, docmodel.SearchResult{Object: obj, Score: 0.8, Reason: docmodel.MatchReasonContains})
			continue
		}
		if max >= threshold {
			results = append(results, docmodel.SearchResult{
				Object: obj,
				Score:  max / 100.0,
				Reason: docmodel.MatchReasonSimilar,
			})
		}
	}

	return results
}

// fuzzyMax returns max(ratio, partial_ratio) in [0, 100]. ratio is
// full-string edit-similarity (via levenshtein distance); partial_ratio is
// the best substring alignment (via fuzzysearch's rank-based matching).
func fuzzyMax(name, term string) float64 {
	return max(ratio(name, term), partialRatio(name, term))
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ratio converts levenshtein edit distance into a 0-100 similarity score:
// 100 * (1 - distance / max(len(a), len(b))).
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	score := 100 * (1 - float64(dist)/float64(longest))
	if score < 0 {
		return 0
	}
	return score
}

// partialRatio approximates FuzzyWuzzy's partial_ratio using fuzzy's
// ranked matching: if term fuzzy-matches inside name, fuzzy.RankMatch
// returns an edit-distance-like rank; we convert it the same way ratio
// does, scaled against the shorter string (a substring match should score
// on its own length, not the longer string's length).
func partialRatio(name, term string) float64 {
	if term == "" {
		return 0
	}
	if !fuzzy.Match(term, name) {
		return 0
	}

	rank := fuzzy.RankMatch(term, name)
	if rank < 0 {
		return 0
	}

	shortest := len([]rune(term))
	if shortest == 0 {
		return 0
	}

	score := 100 * (1 - float64(rank)/float64(shortest+rank))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
