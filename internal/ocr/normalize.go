package ocr

import (
	"regexp"
	"strings"

	"github.com/cinelog/ticket-scanner/constants"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=|]{3,}\s*$`)
)

// Normalize cleans raw tesseract output conservatively: drop non-printable
// bytes, collapse runs of whitespace, keep line breaks. Line structure is
// load-bearing for the field extractors, so nothing is joined.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = stripNonPrintable(s)
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reBoxNoise.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripNonPrintable keeps printable ASCII plus newline. Thermal-print
// tickets are ASCII; everything else tesseract emits is recognition noise.
func stripNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 0x20 && r < 0x7f) || r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsLikelyTicket gates the field extractors: text that mentions fewer than
// MinVocabularyHits ticket words is probably not an admission ticket at all,
// and running the extractors on it only produces junk fields.
func IsLikelyTicket(text string) bool {
	return constants.CountVocabularyHits(text) >= constants.MinVocabularyHits
}
