package fields

import "regexp"

// MPAA ratings plus the common international fallbacks tickets print.
var reRating = regexp.MustCompile(`(?i)\b(PG-13|NC-17|PG|G|R|NR|TV-MA|18A?|15|12A)\b`)

var reRatedLine = regexp.MustCompile(`(?i)\brated\s*:?\s*(PG-13|NC-17|PG|G|R|NR)\b`)

// ExtractMovieRating finds the certification: a "Rated X" line first, then
// a bare rating token anywhere.
var ExtractMovieRating = FirstMatch(
	regexCapture(reRatedLine),
	regexCapture(reRating),
)
