package correction

import (
	"strings"
)

// Similarity computes a Ratcliff/Obershelp ratio between two strings,
// case-insensitive, in [0, 1]. Identical strings score 1.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(strings.TrimSpace(a)))
	rb := []rune(strings.ToLower(strings.TrimSpace(b)))
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingChars(ra, rb)) / float64(total)
}

// matchingChars counts matched characters: the longest common substring,
// then recursively the pieces to its left and right.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingChars(a[:ai], b[:bi])
	matched += matchingChars(a[ai+size:], b[bi+size:])
	return matched
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// lengths[j] = match length ending at a[i], b[j]
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			if a[i] == b[j] {
				curr[j+1] = prev[j] + 1
				if curr[j+1] > size {
					size = curr[j+1]
					ai = i - size + 1
					bi = j - size + 1
				}
			} else {
				curr[j+1] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}

// Candidate is one known reference entity a raw name is matched against
type Candidate struct {
	ID   string
	Name string
	Slug string
}

// BestMatch resolves a raw name against known candidates. An exact
// case-insensitive name or slug match wins outright with score 1; otherwise
// the candidate with the highest similarity across names and slugs is
// returned. The caller applies its acceptance threshold.
func BestMatch(input string, candidates []Candidate) (Candidate, float64) {
	norm := strings.ToLower(strings.TrimSpace(input))

	for _, c := range candidates {
		if strings.ToLower(c.Name) == norm || strings.ToLower(c.Slug) == norm {
			return c, 1
		}
	}

	var best Candidate
	var bestScore float64
	for _, c := range candidates {
		score := Similarity(input, c.Name)
		if s := Similarity(input, c.Slug); s > score {
			score = s
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, bestScore
}

// Slugify derives a URL-safe slug for auto-created references
func Slugify(name string) string {
	s := strings.ToLower(turkish.Replace(strings.TrimSpace(name)))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	return strings.Trim(out, "-")
}
