// Package fuzzy implements typo-tolerant matching used to resolve
// "the email from Jon" style references against cached summaries.
package fuzzy

import (
	"strings"
	"unicode"
)

// LevenshteinDistance returns the number of single-rune edits needed to turn
// s1 into s2, after normalization.
func LevenshteinDistance(s1, s2 string) int {
	r1 := []rune(normalize(s1))
	r2 := []rune(normalize(s2))

	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	// two rows are enough
	prev := make([]int, len(r2)+1)
	cur := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		cur[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}

	return prev[len(r2)]
}

// Threshold is the edit distance tolerated for a query of the given length.
func Threshold(query string) int {
	n := len([]rune(query))
	switch {
	case n <= 3:
		return 0
	case n >= 8:
		return 2
	default:
		return 1
	}
}

// Match reports whether query appears in text, exactly, as a word prefix, or
// as a word within the typo threshold.
func Match(query, text string) bool {
	return Score(query, text) > 0
}

// Score rates how well query matches text. Zero means no match. A substring
// hit scores highest, then whole words, prefixes and near-misses.
func Score(query, text string) float64 {
	q := normalize(query)
	t := normalize(text)
	if q == "" || t == "" {
		return 0
	}

	score := 0.0
	if strings.Contains(t, q) {
		score += 100
	}

	threshold := Threshold(q)
	for _, word := range strings.FieldsFunc(t, isSeparator) {
		switch {
		case word == q:
			score += 50
		case strings.HasPrefix(word, q):
			score += 35
		default:
			if d := LevenshteinDistance(q, word); d <= threshold {
				score += 40 - float64(d)*12
			}
		}
	}

	return score
}

// BestMatch returns the index of the candidate with the highest score across
// its fields, or -1 when nothing matches. Ties keep the earlier candidate.
func BestMatch(query string, candidates [][]string) int {
	best := -1
	bestScore := 0.0
	for i, fields := range candidates {
		total := 0.0
		for _, f := range fields {
			total += Score(query, f)
		}
		if total > bestScore {
			best = i
			bestScore = total
		}
	}
	return best
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '@' || r == '.' || r == '<' || r == '>' || r == '"' || r == ',' || r == ':'
}

// normalize lowercases, drops combining marks and collapses whitespace.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(foldAccent(r))
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func foldAccent(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ä', 'ã', 'å', 'ă':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'ö', 'õ', 'ø', 'ơ':
		return 'o'
	case 'ú', 'ù', 'û', 'ü', 'ư':
		return 'u'
	case 'ý', 'ÿ':
		return 'y'
	case 'ñ':
		return 'n'
	case 'ç':
		return 'c'
	case 'đ':
		return 'd'
	}
	return r
}
