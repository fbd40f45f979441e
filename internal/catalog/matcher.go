package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"
)

// AcceptThreshold is the minimum composite score for a catalog match.
const AcceptThreshold = 0.6

// Match is an accepted catalog hit with its score.
type Match struct {
	Candidate Candidate
	Score     float64
	Query     string
}

// Matcher resolves a raw extracted title to a catalog candidate. A failed
// lookup is never fatal to a scan; the caller keeps the raw title.
type Matcher struct {
	searcher Searcher
	log      *slog.Logger
	now      func() time.Time
}

func NewMatcher(s Searcher, log *slog.Logger) *Matcher {
	return &Matcher{searcher: s, log: log, now: time.Now}
}

// BestMatch tries query variations derived from the raw title in order and
// accepts the first variation whose best candidate reaches AcceptThreshold;
// later variations are never searched once one clears. Search failures for
// one variation are logged and the next variation is tried.
func (m *Matcher) BestMatch(ctx context.Context, rawTitle string) (Match, bool) {
	for _, query := range queryVariations(rawTitle) {
		candidates, err := m.searcher.Search(ctx, query)
		if err != nil {
			m.log.Warn("catalog.search.failed", "query", query, "error", err)
			continue
		}
		best := Match{Score: -1}
		for _, c := range candidates {
			score := m.score(query, c)
			if score > best.Score {
				best = Match{Candidate: c, Score: score, Query: query}
			}
		}
		if best.Score >= AcceptThreshold {
			m.log.Info("catalog.match.accepted",
				"raw_title", rawTitle,
				"matched_title", best.Candidate.Title,
				"score", best.Score,
				"query", best.Query,
			)
			return best, true
		}
	}
	return Match{}, false
}

// score combines title similarity with small bonuses for recency and
// popularity. Tickets are scanned near release, so a current-or-next-year
// release date is a strong signal between near-identical titles.
func (m *Matcher) score(query string, c Candidate) float64 {
	s := similarity(normalizeTitle(query), normalizeTitle(c.Title))
	year := m.now().Year()
	if ry := c.ReleaseYear(); ry == year || ry == year+1 {
		s += 0.1
	}
	if c.Popularity > 20 {
		s += 0.1
	}
	if s > 1 {
		s = 1
	}
	return s
}

// queryVariations derives lookup queries from an OCR-damaged title: the raw
// string, an alphanumeric-only strip, each segment around a subtitle
// separator, and digit/letter confusion swaps in both directions. Order
// matters; the cheapest, most faithful query goes first. Duplicates are
// removed.
func queryVariations(rawTitle string) []string {
	raw := strings.TrimSpace(rawTitle)
	if raw == "" {
		return nil
	}
	variations := []string{raw, stripNonAlnum(raw)}
	for _, sep := range []string{":", "-"} {
		if !strings.Contains(raw, sep) {
			continue
		}
		for _, seg := range strings.Split(raw, sep) {
			if seg = strings.TrimSpace(seg); seg != "" {
				variations = append(variations, seg)
			}
		}
	}
	variations = append(variations, digitsToLetters(raw), lettersToDigits(raw))

	seen := make(map[string]bool, len(variations))
	out := variations[:0]
	for _, v := range variations {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// The digit/letter pairs tesseract most often confuses. Both directions are
// tried: digits misread for letters and letters misread for digits.

func digitsToLetters(s string) string {
	return strings.NewReplacer("0", "o", "1", "l", "5", "s").Replace(s)
}

func lettersToDigits(s string) string {
	return strings.NewReplacer("o", "0", "O", "0", "l", "1", "L", "1", "s", "5", "S", "5").Replace(s)
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// similarity is a normalized Levenshtein ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := levenshtein(a, b)
	max := len(a)
	if len(b) > max {
		max = len(b)
	}
	return 1 - float64(d)/float64(max)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
