package vision

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cinelog/ticket-scanner/internal/ticket"
)

type fakeProvider struct {
	name      string
	connected bool
	panics    bool
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	return ticket.ExtractionResult{Success: true, Fields: ticket.EmptyFields()}
}

func (f *fakeProvider) TestConnection(ctx context.Context) bool {
	if f.panics {
		panic("backend exploded")
	}
	return f.connected
}

func newTestRegistry(providers ...Provider) *Registry {
	return NewRegistryWithProviders(discardLog, providers...)
}

var _ = Describe("Registry", func() {
	var reg *Registry

	BeforeEach(func() {
		reg = newTestRegistry(
			&fakeProvider{name: "alpha", connected: true},
			&fakeProvider{name: "beta", connected: false},
		)
	})

	Describe("Get", func() {
		It("returns registered providers by name", func() {
			p, err := reg.Get("beta")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal("beta"))
		})

		It("normalizes the lookup name", func() {
			p, err := reg.Get("  ALPHA ")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal("alpha"))
		})

		It("fails for unknown names", func() {
			_, err := reg.Get("gamma")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("default active provider", func() {
		It("starts with the first provider registered, not the alphabetically first", func() {
			reg = newTestRegistry(
				&fakeProvider{name: "zulu", connected: true},
				&fakeProvider{name: "alpha", connected: true},
			)
			Expect(reg.ActiveName()).To(Equal("zulu"))
		})

		It("falls back to registration order after removals", func() {
			reg = newTestRegistry(
				&fakeProvider{name: "zulu", connected: true},
				&fakeProvider{name: "mike", connected: true},
				&fakeProvider{name: "alpha", connected: true},
			)
			reg.Remove("zulu")
			Expect(reg.ActiveName()).To(Equal("mike"))
		})
	})

	Describe("SetActive", func() {
		It("switches to a registered provider", func() {
			Expect(reg.SetActive("beta")).To(Succeed())
			Expect(reg.ActiveName()).To(Equal("beta"))
		})

		It("rejects unknown names and keeps the previous selection", func() {
			Expect(reg.SetActive("gamma")).NotTo(Succeed())
			Expect(reg.ActiveName()).To(Equal("alpha"))
		})
	})

	Describe("Remove", func() {
		It("reassigns the active pointer when the active provider is removed", func() {
			reg.Remove("alpha")
			Expect(reg.ActiveName()).To(Equal("beta"))
		})

		It("leaves the active pointer alone otherwise", func() {
			reg.Remove("beta")
			Expect(reg.ActiveName()).To(Equal("alpha"))
		})

		It("clears the active pointer when nothing remains", func() {
			reg.Remove("alpha")
			reg.Remove("beta")
			Expect(reg.ActiveName()).To(BeEmpty())
			_, err := reg.Active()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("TestAll", func() {
		It("reports per-provider connectivity", func() {
			results := reg.TestAll(context.Background())
			Expect(results).To(HaveLen(2))
			Expect(results["alpha"]).To(BeTrue())
			Expect(results["beta"]).To(BeFalse())
		})

		It("records a panicking provider as unreachable", func() {
			reg = newTestRegistry(
				&fakeProvider{name: "alpha", connected: true},
				&fakeProvider{name: "boom", panics: true},
			)
			results := reg.TestAll(context.Background())
			Expect(results["alpha"]).To(BeTrue())
			Expect(results["boom"]).To(BeFalse())
		})
	})
})
