package fields

import "regexp"

var (
	reTicketLabel  = regexp.MustCompile(`(?i)\b(?:ticket|tkt|trans|transaction|conf|confirmation)\s*(?:no|num|number|#|id)?\s*[:#]?\s*([A-Z0-9][A-Z0-9-]{4,19})\b`)
	reLongNumber   = regexp.MustCompile(`\b(\d{8,16})\b`)
	reTicketType   = regexp.MustCompile(`(?i)\b(adult|child|senior|student|matinee|military|member)\b`)
)

// ExtractTicketNumber finds the ticket or transaction identifier: a labeled
// token first, then any long bare digit run. Short numbers are never taken;
// they collide with dates, times and room numbers.
var ExtractTicketNumber = FirstMatch(
	regexCapture(reTicketLabel),
	regexCapture(reLongNumber),
)

// ExtractTicketType finds the admission class printed on the ticket.
var ExtractTicketType = FirstMatch(
	Validated(labeledValue("type", "admission type"), func(s string) bool { return len(s) <= 20 }),
	regexCapture(reTicketType),
)
