package fields

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFields(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fields Suite")
}

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

const sampleTicket = `AMC Lincoln Square 13
ADMIT ONE
DUNE: PART TWO
Rated PG-13
Date: 05/13/2025
Time: 7:45 PM
Screen 8
Seat G12
Adult
Total: $14.99
Ticket # 4821100394`

var _ = Describe("FirstMatch", func() {
	miss := func(string) (string, bool) { return "", false }
	hit := func(v string) Strategy {
		return func(string) (string, bool) { return v, true }
	}

	It("prefers the earlier strategy when both match", func() {
		v, ok := FirstMatch(hit("first"), hit("second"))("text")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("first"))
	})

	It("falls through misses in order", func() {
		v, ok := FirstMatch(miss, miss, hit("third"))("text")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("third"))
	})

	It("misses when every strategy misses", func() {
		_, ok := FirstMatch(miss, miss)("text")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("field extractors", func() {
	Describe("ExtractShowDate", func() {
		It("reads a labeled date line", func() {
			v, ok := ExtractShowDate("Date: 05/13/2025")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("05/13/2025"))
		})

		It("finds a bare numeric date", func() {
			v, ok := ExtractShowDate("valid for showing on 12/31/2025 only")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("12/31/2025"))
		})

		It("finds a written-out date", func() {
			v, ok := ExtractShowDate("Showing March 14, 2025 evening")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("March 14, 2025"))
		})

		It("misses when no date is present", func() {
			_, ok := ExtractShowDate("no calendar information here")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ExtractShowTime", func() {
		It("reads a labeled time line", func() {
			v, ok := ExtractShowTime("Time: 7:45 PM")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("7:45 PM"))
		})

		It("finds a bare 12-hour clock", func() {
			v, ok := ExtractShowTime("doors open 6:30 pm sharp")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("6:30 pm"))
		})

		It("falls back to a 24-hour clock", func() {
			v, ok := ExtractShowTime("session 19:45 hall two")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("19:45"))
		})
	})

	Describe("ExtractPrice", func() {
		It("reads a labeled total", func() {
			v, ok := ExtractPrice("Total: $14.99")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("$14.99"))
		})

		It("finds any currency-marked amount", func() {
			v, ok := ExtractPrice("you paid $9.50 for this showing")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("$9.50"))
		})

		It("prefers the labeled line over an earlier bare amount", func() {
			v, ok := ExtractPrice("booking fee $1.50\nTotal: $14.99")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("$14.99"))
		})
	})

	Describe("ExtractSeatNumber", func() {
		It("reads a seat token", func() {
			v, ok := ExtractSeatNumber("Seat: G12")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("G12"))
		})

		It("combines row and seat", func() {
			v, ok := ExtractSeatNumber("Row G Seat 12")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("G12"))
		})
	})

	Describe("ExtractTheaterRoom", func() {
		It("reads a screen number", func() {
			v, ok := ExtractTheaterRoom("Screen 8")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("8"))
		})

		It("reads an auditorium number", func() {
			v, ok := ExtractTheaterRoom("Auditorium: 3")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("3"))
		})

		It("does not take bare digits", func() {
			_, ok := ExtractTheaterRoom("order 8 of 12")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ExtractMovieRating", func() {
		It("reads a rated line", func() {
			v, ok := ExtractMovieRating("Rated PG-13")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("PG-13"))
		})

		It("prefers the longer rating token", func() {
			v, ok := ExtractMovieRating("feature is PG-13 tonight")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("PG-13"))
		})
	})

	Describe("ExtractTicketNumber", func() {
		It("reads a labeled ticket number", func() {
			v, ok := ExtractTicketNumber("Ticket # 4821100394")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("4821100394"))
		})

		It("falls back to a long digit run", func() {
			v, ok := ExtractTicketNumber("ref 998877665544")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("998877665544"))
		})

		It("ignores short numbers", func() {
			_, ok := ExtractTicketNumber("screen 8 at 19:45")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ExtractTicketType", func() {
		It("finds the admission class", func() {
			v, ok := ExtractTicketType("1 x Adult")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("Adult"))
		})
	})

	Describe("theater extractors", func() {
		It("maps a chain marker to its canonical name", func() {
			v, ok := ExtractTheaterChain("amc lincoln square 13")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("AMC"))
		})

		It("does not match chain markers inside words", func() {
			_, ok := ExtractTheaterChain("the grand revue hall")
			Expect(ok).To(BeFalse())
		})

		It("uses the chain line as the venue name", func() {
			v, ok := ExtractTheaterName("AMC Lincoln Square 13\nADMIT ONE")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("AMC Lincoln Square 13"))
		})
	})
})

type stubValidator struct {
	known map[string]string
}

func (s stubValidator) ValidateTitle(ctx context.Context, raw string) (string, bool) {
	v, ok := s.known[raw]
	return v, ok
}

var _ = Describe("TitleExtractor", func() {
	It("recovers a known hard-to-read title", func() {
		e := NewTitleExtractor(nil, discardLog)
		v, ok := e.Extract(context.Background(), "DUNE: PART TW0\nSeat G12")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("Dune: Part Two"))
	})

	It("prefers a catalog-validated candidate", func() {
		e := NewTitleExtractor(stubValidator{known: map[string]string{
			"OPPENHEIMER": "Oppenheimer",
		}}, discardLog)
		v, ok := e.Extract(context.Background(), "Cinema City\nOPPENHEIMER\nSeat A1\nScreen 2\nTotal $12.00")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("Oppenheimer"))
	})

	It("returns the top-scoring candidate without a validator", func() {
		e := NewTitleExtractor(nil, discardLog)
		v, ok := e.Extract(context.Background(), "THE LONG GOODBYE RETURNS\n05/13/2025\n1234567890")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("THE LONG GOODBYE RETURNS"))
	})

	It("misses on empty text", func() {
		e := NewTitleExtractor(nil, discardLog)
		_, ok := e.Extract(context.Background(), "")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("TicketParser", func() {
	var parser *TicketParser

	BeforeEach(func() {
		parser = NewTicketParser(nil, NewTitleExtractor(nil, discardLog), discardLog)
	})

	It("short-circuits text with no ticket vocabulary", func() {
		res := parser.ParseText(context.Background(), "a grocery list: milk, eggs, bread")
		Expect(res.Success).To(BeFalse())
		Expect(res.Fields.CountPopulated()).To(Equal(0))
	})

	It("extracts the full field set from a realistic ticket", func() {
		res := parser.ParseText(context.Background(), sampleTicket)
		Expect(res.Success).To(BeTrue())
		f := res.Fields
		Expect(f.Title()).To(Equal("Dune: Part Two"))
		Expect(*f.ShowDate).To(Equal("05/13/2025"))
		Expect(*f.ShowTime).To(Equal("7:45 PM"))
		Expect(*f.Price).To(Equal("$14.99"))
		Expect(*f.SeatNumber).To(Equal("G12"))
		Expect(*f.TheaterRoom).To(Equal("8"))
		Expect(*f.MovieRating).To(Equal("PG-13"))
		Expect(*f.TheaterChain).To(Equal("AMC"))
		Expect(*f.TicketNumber).To(Equal("4821100394"))
		Expect(*f.TicketType).To(Equal("Adult"))
	})

	It("passes the completeness rule for the realistic ticket", func() {
		res := parser.ParseText(context.Background(), sampleTicket)
		Expect(parser.Validate(res.Fields)).To(BeTrue())
	})
})
