package vision

import (
	"io"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

func TestVision(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vision Suite")
}

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("ParseTicketJSON", func() {
	var (
		raw    string
		fields ticket.Fields
		err    error
	)

	JustBeforeEach(func() {
		fields, err = ParseTicketJSON(discardLog, raw)
	})

	When("the reply is a bare JSON object", func() {
		BeforeEach(func() {
			raw = `{"movieTitle": "Dune: Part Two", "showDate": "05/13/2025", "price": null}`
		})

		It("parses without error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("populates the present fields", func() {
			Expect(fields.Title()).To(Equal("Dune: Part Two"))
			Expect(*fields.ShowDate).To(Equal("05/13/2025"))
		})

		It("leaves null fields nil", func() {
			Expect(fields.Price).To(BeNil())
		})
	})

	When("the reply is fenced markdown", func() {
		BeforeEach(func() {
			raw = "```json\n{\"movieTitle\": \"Oppenheimer\", \"showTime\": \"7:45 PM\"}\n```"
		})

		It("parses without error", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields.Title()).To(Equal("Oppenheimer"))
		})
	})

	When("the reply wraps JSON in prose", func() {
		BeforeEach(func() {
			raw = `Here is the extracted data: {"movieTitle": "Barbie", "seatNumber": "G12"} Hope that helps!`
		})

		It("recovers the embedded object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields.Title()).To(Equal("Barbie"))
			Expect(*fields.SeatNumber).To(Equal("G12"))
		})
	})

	When("the object contains nested braces inside strings", func() {
		BeforeEach(func() {
			raw = `Result: {"movieTitle": "Movie {with} braces", "price": "$10.00"} done`
		})

		It("balances braces across string literals", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields.Title()).To(Equal("Movie {with} braces"))
		})
	})

	When("the reply carries extra keys", func() {
		BeforeEach(func() {
			raw = `{"movieTitle": "Wicked", "confidence": 0.98, "notes": "clear image"}`
		})

		It("intersects with the canonical template", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(fields.Title()).To(Equal("Wicked"))
			Expect(fields.CountPopulated()).To(Equal(0))
		})
	})

	When("the reply is JSON but carries no canonical field", func() {
		BeforeEach(func() {
			raw = `{"confidence": 0.98, "notes": "could not read the ticket"}`
		})

		It("rejects the shape instead of returning an empty success", func() {
			Expect(err).To(HaveOccurred())
			Expect(fields).To(Equal(ticket.EmptyFields()))
		})
	})

	When("the reply has no JSON at all", func() {
		BeforeEach(func() {
			raw = "I could not read the ticket, sorry."
		})

		It("returns a parse error with the all-null template", func() {
			Expect(err).To(HaveOccurred())
			Expect(fields).To(Equal(ticket.EmptyFields()))
		})
	})

	When("the reply is empty", func() {
		BeforeEach(func() {
			raw = "   "
		})

		It("returns an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("backoffDelay", func() {
	It("grows exponentially from one second", func() {
		Expect(backoffDelay(1)).To(Equal(2 * time.Second))
		Expect(backoffDelay(2)).To(Equal(4 * time.Second))
		Expect(backoffDelay(3)).To(Equal(8 * time.Second))
	})

	It("caps at ten seconds", func() {
		Expect(backoffDelay(4)).To(Equal(10 * time.Second))
		Expect(backoffDelay(30)).To(Equal(10 * time.Second))
	})
})
