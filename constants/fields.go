package constants

// Canonical ticket field keys. This is the stable wire shape for extracted
// ticket data; every extraction result carries exactly these eleven keys.
const (
	FieldMovieTitle   = "movieTitle"
	FieldShowTime     = "showTime"
	FieldShowDate     = "showDate"
	FieldPrice        = "price"
	FieldSeatNumber   = "seatNumber"
	FieldMovieRating  = "movieRating"
	FieldTheaterRoom  = "theaterRoom"
	FieldTicketNumber = "ticketNumber"
	FieldTheaterName  = "theaterName"
	FieldTheaterChain = "theaterChain"
	FieldTicketType   = "ticketType"
)

var allFields = []string{
	FieldMovieTitle,
	FieldShowTime,
	FieldShowDate,
	FieldPrice,
	FieldSeatNumber,
	FieldMovieRating,
	FieldTheaterRoom,
	FieldTicketNumber,
	FieldTheaterName,
	FieldTheaterChain,
	FieldTicketType,
}

// FieldKeys returns the canonical field keys in declaration order.
func FieldKeys() []string {
	out := make([]string, len(allFields))
	copy(out, allFields)
	return out
}

// Sentinel titles some backends return instead of null.
var SentinelTitles = map[string]struct{}{
	"unknown":       {},
	"unknown movie": {},
}
