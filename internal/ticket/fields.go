package ticket

import (
	"strings"

	"github.com/cinelog/ticket-scanner/constants"
)

// Fields is the canonical extraction result. Every attribute is always
// present on the wire; nil means "not found on the ticket". No attribute is
// trusted to have a canonical format — all are free text as read off the
// image.
type Fields struct {
	MovieTitle   *string `json:"movieTitle"`
	ShowTime     *string `json:"showTime"`
	ShowDate     *string `json:"showDate"`
	Price        *string `json:"price"`
	SeatNumber   *string `json:"seatNumber"`
	MovieRating  *string `json:"movieRating"`
	TheaterRoom  *string `json:"theaterRoom"`
	TicketNumber *string `json:"ticketNumber"`
	TheaterName  *string `json:"theaterName"`
	TheaterChain *string `json:"theaterChain"`
	TicketType   *string `json:"ticketType"`
}

// EmptyFields returns the all-null template.
func EmptyFields() Fields {
	return Fields{}
}

// FieldsFromMap intersects an untyped JSON object with the all-null template
// so the result always carries exactly the eleven canonical keys, regardless
// of what the backend omitted or hallucinated as extra keys. Non-string and
// empty values become null.
func FieldsFromMap(m map[string]any) Fields {
	var f Fields
	for _, key := range constants.FieldKeys() {
		v, ok := m[key]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" || strings.EqualFold(s, "null") {
			continue
		}
		f.set(key, s)
	}
	return f
}

// ToMap returns the fields as a fully-keyed map, null for absent values.
func (f Fields) ToMap() map[string]*string {
	return map[string]*string{
		constants.FieldMovieTitle:   f.MovieTitle,
		constants.FieldShowTime:     f.ShowTime,
		constants.FieldShowDate:     f.ShowDate,
		constants.FieldPrice:        f.Price,
		constants.FieldSeatNumber:   f.SeatNumber,
		constants.FieldMovieRating:  f.MovieRating,
		constants.FieldTheaterRoom:  f.TheaterRoom,
		constants.FieldTicketNumber: f.TicketNumber,
		constants.FieldTheaterName:  f.TheaterName,
		constants.FieldTheaterChain: f.TheaterChain,
		constants.FieldTicketType:   f.TicketType,
	}
}

func (f *Fields) set(key, value string) {
	v := value
	switch key {
	case constants.FieldMovieTitle:
		f.MovieTitle = &v
	case constants.FieldShowTime:
		f.ShowTime = &v
	case constants.FieldShowDate:
		f.ShowDate = &v
	case constants.FieldPrice:
		f.Price = &v
	case constants.FieldSeatNumber:
		f.SeatNumber = &v
	case constants.FieldMovieRating:
		f.MovieRating = &v
	case constants.FieldTheaterRoom:
		f.TheaterRoom = &v
	case constants.FieldTicketNumber:
		f.TicketNumber = &v
	case constants.FieldTheaterName:
		f.TheaterName = &v
	case constants.FieldTheaterChain:
		f.TheaterChain = &v
	case constants.FieldTicketType:
		f.TicketType = &v
	}
}

// Set assigns a field by canonical key. Unknown keys are ignored.
func (f *Fields) Set(key, value string) {
	f.set(key, value)
}

// Title returns the movie title or "" when absent.
func (f Fields) Title() string {
	if f.MovieTitle == nil {
		return ""
	}
	return *f.MovieTitle
}

// CountPopulated returns how many of the ten non-title fields are non-null.
func (f Fields) CountPopulated() int {
	n := 0
	for key, v := range f.ToMap() {
		if key == constants.FieldMovieTitle {
			continue
		}
		if v != nil && strings.TrimSpace(*v) != "" {
			n++
		}
	}
	return n
}

// StringPtr is a small helper for building Fields values in callers/tests.
func StringPtr(s string) *string {
	return &s
}
