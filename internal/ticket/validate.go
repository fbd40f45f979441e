package ticket

import (
	"strings"

	"github.com/cinelog/ticket-scanner/constants"
)

// MinPopulatedFields is the acceptance threshold for non-title fields. The
// value balances rejecting plausible-but-sparse tickets against accepting
// near-empty scans.
const MinPopulatedFields = 3

// ValidateTicketData reports whether an extraction is complete enough to
// trust: the movie title must be present and not a sentinel, and at least
// MinPopulatedFields of the remaining ten fields must be non-null. The rule
// is reproducible from the field set alone; both the vision path and the
// legacy pipeline apply this same function.
func ValidateTicketData(f Fields) bool {
	title := strings.TrimSpace(f.Title())
	if title == "" {
		return false
	}
	if _, sentinel := constants.SentinelTitles[strings.ToLower(title)]; sentinel {
		return false
	}
	return f.CountPopulated() >= MinPopulatedFields
}
