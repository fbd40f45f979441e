package fields

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/cinelog/ticket-scanner/constants"
)

// TitleValidator canonicalizes a raw extracted title against the movie
// catalog. ok=false means no confident match; the raw text stands.
type TitleValidator interface {
	ValidateTitle(ctx context.Context, raw string) (canonical string, ok bool)
}

// knownTitlePatterns are hard-coded recoveries for titles tesseract
// reliably mangles. Each maps the damaged shape to the real title.
var knownTitlePatterns = []struct {
	re    *regexp.Regexp
	title string
}{
	{regexp.MustCompile(`(?i)\bdune\s*[:;]?\s*part\s*(?:two|tw0|2)\b`), "Dune: Part Two"},
	{regexp.MustCompile(`(?i)\bopp?enhe[il]mer\b`), "Oppenheimer"},
	{regexp.MustCompile(`(?i)\bsp[il]der[\s-]*man\b`), "Spider-Man"},
	{regexp.MustCompile(`(?i)\bm[il]ss[il]on\s*[:;]?\s*[il]mposs[il]b[l1]e\b`), "Mission: Impossible"},
}

var reQuotedTitle = regexp.MustCompile(`"([^"]{3,60})"`)

// TitleExtractor recovers the movie title from recognized text. Unlike the
// other extractors it may consult the catalog, so it carries a context.
type TitleExtractor struct {
	validator TitleValidator
	log       *slog.Logger
}

func NewTitleExtractor(validator TitleValidator, log *slog.Logger) *TitleExtractor {
	if log == nil {
		log = slog.Default()
	}
	return &TitleExtractor{validator: validator, log: log}
}

// Extract runs two passes. Pass one checks each line against the
// known-pattern table and accepts immediately on catalog validation. Pass
// two collects every plausible candidate, scores each for title-likelihood,
// and validates candidates in score order; the first to validate wins. With
// no validator, the top-scoring candidate is returned as-is.
func (e *TitleExtractor) Extract(ctx context.Context, text string) (string, bool) {
	lines := textLines(text)

	for _, ln := range lines {
		for _, kp := range knownTitlePatterns {
			if !kp.re.MatchString(ln) {
				continue
			}
			if canonical, ok := e.validate(ctx, kp.title); ok {
				return canonical, true
			}
			return kp.title, true
		}
	}

	candidates := e.collectCandidates(lines, text)
	if len(candidates) == 0 {
		return "", false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if e.validator != nil {
		for _, c := range candidates {
			if canonical, ok := e.validate(ctx, c.text); ok {
				return canonical, true
			}
		}
	}
	if candidates[0].score <= 0 {
		return "", false
	}
	return candidates[0].text, true
}

func (e *TitleExtractor) validate(ctx context.Context, raw string) (string, bool) {
	if e.validator == nil {
		return "", false
	}
	canonical, ok := e.validator.ValidateTitle(ctx, raw)
	if !ok {
		e.log.Debug("fields.title.unvalidated", "candidate", raw)
	}
	return canonical, ok
}

type scoredCandidate struct {
	text  string
	score float64
}

func (e *TitleExtractor) collectCandidates(lines []string, text string) []scoredCandidate {
	seen := make(map[string]bool)
	var out []scoredCandidate
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, scoredCandidate{text: s, score: titleLikelihood(s)})
	}

	if v, ok := labeledValue("movie", "film", "feature", "now showing")(text); ok {
		add(v)
	}
	for _, m := range reQuotedTitle.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	// venue header aside, titles print in the top half of the ticket
	top := len(lines)/2 + 1
	for i, ln := range lines {
		if i >= top {
			break
		}
		add(ln)
	}
	return out
}

// titleLikelihood scores a candidate line: title-case and ALL-CAPS shapes,
// subtitle colons and Part/Chapter markers score up; ticket vocabulary,
// digit runs and off-length lines score down.
func titleLikelihood(s string) float64 {
	score := 0.0
	n := len(s)
	switch {
	case n >= 10 && n <= 50:
		score += 0.3
	case n < 4 || n > 70:
		score -= 0.5
	}
	if isTitleCase(s) || isAllCaps(s) {
		score += 0.3
	}
	if strings.Contains(s, ":") {
		score += 0.15
	}
	lower := strings.ToLower(s)
	for _, marker := range []string{"part ", "chapter ", "episode "} {
		if strings.Contains(lower, marker) {
			score += 0.15
			break
		}
	}
	if constants.CountVocabularyHits(s) > 0 {
		score -= 0.4
	}
	if isMostlyDigits(s) {
		score -= 0.6
	}
	return score
}

func isTitleCase(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 {
		return false
	}
	capped := 0
	for _, w := range words {
		r := []rune(w)[0]
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			capped++
		}
	}
	return capped*2 > len(words)
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

func isMostlyDigits(s string) bool {
	digits, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return total > 0 && digits*2 > total
}
