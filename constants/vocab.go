package constants

import "strings"

// TicketVocabulary is the keyword set used to reject-fast non-ticket images
// before running per-field extraction.
var TicketVocabulary = []string{
	"ticket",
	"cinema",
	"theater",
	"theatre",
	"admit",
	"admission",
	"seat",
	"row",
	"screen",
	"auditorium",
	"showtime",
	"matinee",
	"feature",
	"presentation",
}

// MinVocabularyHits is how many vocabulary words must appear before a text
// blob is treated as a plausible ticket.
const MinVocabularyHits = 2

// CountVocabularyHits returns how many distinct vocabulary words occur in
// the lowercased text.
func CountVocabularyHits(text string) int {
	lower := strings.ToLower(text)
	hits := 0
	for _, w := range TicketVocabulary {
		if strings.Contains(lower, w) {
			hits++
		}
	}
	return hits
}
