package fields

import (
	"regexp"
	"strings"
)

// knownChains maps a lowercase marker to the canonical chain spelling.
// Matching is substring-based because chains print themselves inside venue
// names ("AMC Lincoln Square 13").
var knownChains = []struct {
	marker string
	name   string
}{
	{"amc", "AMC"},
	{"regal", "Regal"},
	{"cinemark", "Cinemark"},
	{"cineplex", "Cineplex"},
	{"cineworld", "Cineworld"},
	{"odeon", "Odeon"},
	{"vue", "Vue"},
	{"marcus", "Marcus"},
	{"harkins", "Harkins"},
	{"landmark", "Landmark"},
	{"alamo", "Alamo Drafthouse"},
	{"showcase", "Showcase"},
}

var reVenueWord = regexp.MustCompile(`(?i)\b(cinema|cinemas|theatre|theater|theatres|theaters|multiplex|drafthouse)\b`)

// ExtractTheaterChain matches the venue against the known-chain list.
var ExtractTheaterChain = FirstMatch(
	func(text string) (string, bool) {
		for _, ln := range textLines(text) {
			lower := strings.ToLower(ln)
			for _, kc := range knownChains {
				if containsWord(lower, kc.marker) {
					return kc.name, true
				}
			}
		}
		return "", false
	},
)

// ExtractTheaterName prefers the line carrying a chain marker, then any
// line with a venue word, since venues print their full name near the top.
var ExtractTheaterName = FirstMatch(
	func(text string) (string, bool) {
		for _, ln := range textLines(text) {
			lower := strings.ToLower(ln)
			for _, kc := range knownChains {
				if containsWord(lower, kc.marker) && len(ln) <= 60 {
					return ln, true
				}
			}
		}
		return "", false
	},
	func(text string) (string, bool) {
		for _, ln := range textLines(text) {
			if reVenueWord.MatchString(ln) && len(ln) <= 60 && !strings.ContainsAny(ln, "$£€") {
				return ln, true
			}
		}
		return "", false
	},
)

// containsWord reports a whole-word, lowercase match. Plain substring
// matching turns "revue" into the Vue chain.
func containsWord(haystack, word string) bool {
	idx := 0
	for {
		i := strings.Index(haystack[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before := i == 0 || !isAlnum(haystack[i-1])
		afterIdx := i + len(word)
		after := afterIdx >= len(haystack) || !isAlnum(haystack[afterIdx])
		if before && after {
			return true
		}
		idx = i + len(word)
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
