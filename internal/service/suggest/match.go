package suggest

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/makersrow/suggest/internal/domain"
)

// Base scores per similarity tier. Tiers are evaluated in order and the
// first one that fires wins; scores are never cumulative.
const (
	scoreExact        = 100
	scoreStartsWith   = 90
	scoreWordBoundary = 80
	scoreContains     = 70
	scoreWordStarts   = 60
	scoreFuzzyCeiling = 50
)

// Subsequence matching only kicks in for queries of at least this many
// runes, and only accepts matches covering at least this share of them.
const (
	fuzzyMinQueryLen = 4
	fuzzyMinRatio    = 0.75
)

// MatchResult is the outcome of scoring one candidate string.
type MatchResult struct {
	OK    bool
	Score int
	Type  domain.MatchType
}

// Match scores candidate against query case-insensitively, walking the
// similarity tiers in priority order. Empty candidate or query never
// matches.
func Match(candidate, query string) MatchResult {
	if candidate == "" || query == "" {
		return MatchResult{}
	}

	c := strings.ToLower(candidate)
	q := strings.ToLower(query)

	switch {
	case c == q:
		return MatchResult{OK: true, Score: scoreExact, Type: domain.MatchExact}
	case strings.HasPrefix(c, q):
		return MatchResult{OK: true, Score: scoreStartsWith, Type: domain.MatchStartsWith}
	case containsWholeWord(c, q):
		return MatchResult{OK: true, Score: scoreWordBoundary, Type: domain.MatchWordBoundary}
	case strings.Contains(c, q):
		return MatchResult{OK: true, Score: scoreContains, Type: domain.MatchContains}
	case anyWordStartsWith(c, q):
		return MatchResult{OK: true, Score: scoreWordStarts, Type: domain.MatchWordStarts}
	}

	if utf8.RuneCountInString(q) >= fuzzyMinQueryLen {
		if score, ok := subsequenceScore(c, q); ok {
			return MatchResult{OK: true, Score: score, Type: domain.MatchFuzzy}
		}
	}

	return MatchResult{}
}

// containsWholeWord reports whether query occurs inside candidate
// delimited by word boundaries on both sides.
func containsWholeWord(candidate, query string) bool {
	for start := 0; ; {
		idx := strings.Index(candidate[start:], query)
		if idx < 0 {
			return false
		}
		idx += start

		before := true
		if idx > 0 {
			r, _ := utf8.DecodeLastRuneInString(candidate[:idx])
			before = !isWordRune(r)
		}
		after := true
		if end := idx + len(query); end < len(candidate) {
			r, _ := utf8.DecodeRuneInString(candidate[end:])
			after = !isWordRune(r)
		}
		if before && after {
			return true
		}

		start = idx + 1
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// anyWordStartsWith reports whether any whitespace-delimited word of
// candidate starts with query.
func anyWordStartsWith(candidate, query string) bool {
	for _, word := range strings.Fields(candidate) {
		if strings.HasPrefix(word, query) {
			return true
		}
	}
	return false
}

// subsequenceScore walks the query runes left to right, greedily locating
// each one in candidate no earlier than the previous hit. The greedy walk
// can under-match queries with repeated characters; that behavior is load
// bearing for ranking stability and is kept as-is.
func subsequenceScore(candidate, query string) (int, bool) {
	cr := []rune(candidate)
	qr := []rune(query)

	matched := 0
	pos := 0
	for _, q := range qr {
		for i := pos; i < len(cr); i++ {
			if cr[i] == q {
				matched++
				pos = i + 1
				break
			}
		}
	}

	ratio := float64(matched) / float64(len(qr))
	if ratio < fuzzyMinRatio {
		return 0, false
	}
	return int(scoreFuzzyCeiling * ratio), true
}
