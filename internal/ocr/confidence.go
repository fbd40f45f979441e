package ocr

import (
	"regexp"
	"strings"
)

var (
	reDateish  = regexp.MustCompile(`\b\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}\b|\b20\d{2}\b`)
	reTimeish  = regexp.MustCompile(`\b\d{1,2}:\d{2}\s*(am|pm)?\b`)
	rePriceish = regexp.MustCompile(`[$£€]\s*\d+(\.\d{2})?|\b\d+\.\d{2}\b`)
	reSeatish  = regexp.MustCompile(`\b(seat|row)\b|\b[a-z]\d{1,2}\b`)
)

// heuristicConfidence estimates text quality from ticket-shaped artifacts:
// date-ish, time-ish, price-ish and seat-ish patterns each add a step over a
// small base.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDateish.MatchString(txtL) {
		score += 0.2
	}
	if reTimeish.MatchString(txtL) {
		score += 0.2
	}
	if rePriceish.MatchString(txtL) {
		score += 0.15
	}
	if reSeatish.MatchString(txtL) {
		score += 0.15
	}
	if len(txt) > 80 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
