package fields

import (
	"regexp"
	"strings"
)

var (
	reSeatToken = regexp.MustCompile(`(?i)\bseat\s*:?\s*#?\s*([A-Z]{1,2}\s?-?\s?\d{1,3})\b`)
	reRowSeat   = regexp.MustCompile(`(?i)\brow\s*:?\s*([A-Z]{1,2})\s*,?\s*seat\s*:?\s*(\d{1,3})\b`)
	reRoomToken = regexp.MustCompile(`(?i)\b(?:screen|auditorium|aud|cinema|theatre|theater|sala|room|hall)\s*:?\s*#?\s*(\d{1,2})\b`)
)

// ExtractSeatNumber finds the seat assignment: "Seat G12", "Row G Seat 12",
// or a labeled seat line.
var ExtractSeatNumber = FirstMatch(
	func(text string) (string, bool) {
		m := reRowSeat.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.ToUpper(m[1]) + m[2], true
	},
	func(text string) (string, bool) {
		m := reSeatToken.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(m[1], " ", ""), "-", "")), true
	},
	Validated(labeledValue("seat"), func(s string) bool { return len(s) <= 8 }),
)

// ExtractTheaterRoom finds the auditorium: "Screen 8", "Auditorium 3",
// "Hall 2". The room number alone is not enough; the label word has to be
// there or any digit on the ticket would qualify.
var ExtractTheaterRoom = FirstMatch(
	func(text string) (string, bool) {
		m := reRoomToken.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	},
)
