package game

import (
	"strings"
	"unicode"
)

// Normalize lowercases s, drops parenthesized groups such as "(Live)",
// strips everything except ASCII letters, digits, underscore and whitespace,
// and trims the result.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = stripParens(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// stripParens removes every "(...)" group. Groups do not nest: the first ')'
// after a '(' closes it. An unclosed '(' is kept and later dropped as punctuation.
func stripParens(s string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '(')
		if open < 0 {
			break
		}
		end := strings.IndexByte(s[open+1:], ')')
		if end < 0 {
			break
		}
		b.WriteString(s[:open])
		s = s[open+1+end+1:]
	}
	b.WriteString(s)
	return b.String()
}

func isWordRune(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_'
}

// Similarity compares a and b after normalization and returns a percentage
// in [0, 100] derived from their Levenshtein distance.
func Similarity(a, b string) float64 {
	s1 := []rune(Normalize(a))
	s2 := []rune(Normalize(b))

	if string(s1) == string(s2) {
		return 100
	}
	if len(s1) == 0 || len(s2) == 0 {
		// Both empty is caught by the equality check above.
		return 0
	}

	dist := levenshtein(s1, s2)
	maxLen := max(len(s1), len(s2))
	return float64(maxLen-dist) / float64(maxLen) * 100
}

func levenshtein(a, b []rune) int {
	m := make([][]int, len(a)+1)
	for i := range m {
		m[i] = make([]int, len(b)+1)
		m[i][0] = i
	}
	for j := range m[0] {
		m[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			m[i][j] = min(
				m[i-1][j]+1,
				m[i][j-1]+1,
				m[i-1][j-1]+cost,
			)
		}
	}
	return m[len(a)][len(b)]
}
