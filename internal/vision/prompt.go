package vision

import "strings"

// fieldExamples pairs every canonical field with one illustrative value.
// Order matters only for prompt readability.
var fieldExamples = []struct {
	key     string
	example string
}{
	{"movieTitle", "Dune: Part Two"},
	{"showTime", "7:45 PM"},
	{"showDate", "05/13/2025"},
	{"price", "$14.99"},
	{"seatNumber", "G12"},
	{"movieRating", "PG-13"},
	{"theaterRoom", "Screen 8"},
	{"ticketNumber", "T-0048211"},
	{"theaterName", "Lincoln Square 13"},
	{"theaterChain", "AMC"},
	{"ticketType", "Adult"},
}

// buildTicketPrompt constructs the natural-language instruction shared by
// every backend: enumerate the eleven target fields with one example each,
// demand a bare JSON object, null for anything unreadable.
func buildTicketPrompt() string {
	var b strings.Builder
	b.WriteString("You are reading a photographed movie-theater admission ticket. ")
	b.WriteString("Extract the following fields exactly as printed on the ticket:\n\n")
	for _, fe := range fieldExamples {
		b.WriteString("- ")
		b.WriteString(fe.key)
		b.WriteString(" (e.g. \"")
		b.WriteString(fe.example)
		b.WriteString("\")\n")
	}
	b.WriteString("\nAnswer with ONLY a JSON object containing exactly these keys. ")
	b.WriteString("No markdown, no commentary. ")
	b.WriteString("Use null for any field you cannot read on the ticket. ")
	b.WriteString("Never invent values and never reformat what is printed.")
	return b.String()
}
