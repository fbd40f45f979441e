package fields

import (
	"regexp"
	"strings"
	"time"
)

var (
	reNumericDate = regexp.MustCompile(`\b(\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4})\b`)
	reISODate     = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
	reWordDate    = regexp.MustCompile(`(?i)\b((?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})\b`)
	reClockTime   = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*(?:am|pm))\b`)
	re24hTime     = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
)

// ExtractShowDate finds the show date: a labeled line first, then bare
// date-shaped patterns anywhere in the text. Values are returned exactly as
// printed; no reformatting.
var ExtractShowDate = FirstMatch(
	Validated(labeledValue("date", "show date", "showdate"), looksLikeDate),
	regexCapture(reNumericDate),
	regexCapture(reISODate),
	regexCapture(reWordDate),
)

// ExtractShowTime finds the showtime: labeled line, then a 12-hour clock
// with meridiem, then a bare 24-hour clock.
var ExtractShowTime = FirstMatch(
	Validated(labeledValue("time", "show time", "showtime", "start"), looksLikeTime),
	regexCapture(reClockTime),
	func(text string) (string, bool) {
		m := re24hTime.FindString(text)
		if m == "" {
			return "", false
		}
		return m, true
	},
)

// looksLikeDate accepts only a value that is a date in its entirety, so a
// labeled line with trailing prose falls through to the pattern strategies.
func looksLikeDate(s string) bool {
	for _, re := range []*regexp.Regexp{reNumericDate, reISODate, reWordDate} {
		if re.FindString(s) == s {
			return true
		}
	}
	for _, layout := range []string{"01/02/2006", "1/2/2006", "01/02/06", "2006-01-02", "Jan 2, 2006", "January 2, 2006"} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func looksLikeTime(s string) bool {
	return reClockTime.MatchString(s) || re24hTime.MatchString(strings.TrimSpace(s))
}
