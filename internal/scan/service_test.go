package scan_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cinelog/ticket-scanner/internal/catalog"
	"github.com/cinelog/ticket-scanner/internal/scan"
	"github.com/cinelog/ticket-scanner/internal/ticket"
	"github.com/cinelog/ticket-scanner/internal/vision"
)

func TestScan(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Scan Suite")
}

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeProvider struct {
	name   string
	result ticket.ExtractionResult
	calls  int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ExtractTicketData(ctx context.Context, imagePath string) ticket.ExtractionResult {
	f.calls++
	return f.result
}

func (f *fakeProvider) TestConnection(ctx context.Context) bool { return true }

type fakeSearcher struct {
	results map[string][]catalog.Candidate
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]catalog.Candidate, error) {
	return f.results[query], nil
}

func richResult(title string) ticket.ExtractionResult {
	f := ticket.EmptyFields()
	f.MovieTitle = ticket.StringPtr(title)
	f.ShowDate = ticket.StringPtr("05/13/2025")
	f.ShowTime = ticket.StringPtr("7:45 PM")
	f.Price = ticket.StringPtr("$14.99")
	return ticket.ExtractionResult{Success: true, Fields: f, RawResponse: "{}"}
}

var _ = Describe("Service.Scan", func() {
	var (
		primary   *fakeProvider
		secondary *fakeProvider
		svc       *scan.Service
	)

	BeforeEach(func() {
		primary = &fakeProvider{name: "alpha", result: richResult("Dune: Part Two")}
		secondary = &fakeProvider{name: "beta", result: richResult("Oppenheimer")}
		registry := vision.NewRegistryWithProviders(discardLog, primary, secondary)
		svc = scan.NewService(registry, nil, nil, nil, nil, discardLog)
	})

	When("no provider name is given", func() {
		It("uses the active provider", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Provider).To(Equal("alpha"))
			Expect(primary.calls).To(Equal(1))
			Expect(secondary.calls).To(Equal(0))
		})
	})

	When("an explicit provider is requested", func() {
		It("bypasses the active pointer", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "beta")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Provider).To(Equal("beta"))
			Expect(outcome.Fields.Title()).To(Equal("Oppenheimer"))
		})

		It("fails for an unregistered name without calling anything", func() {
			_, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "gamma")
			Expect(err).To(HaveOccurred())
			Expect(primary.calls).To(Equal(0))
		})
	})

	When("no provider is registered at all", func() {
		It("fails with a configuration error", func() {
			empty := vision.NewRegistryWithProviders(discardLog)
			svc = scan.NewService(empty, nil, nil, nil, nil, discardLog)
			_, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).To(HaveOccurred())
		})
	})

	When("extraction fails", func() {
		BeforeEach(func() {
			primary.result = ticket.Failure("raw payload", "model replied garbage")
		})

		It("surfaces the failure with the raw payload preserved", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).To(HaveOccurred())
			Expect(outcome.RawPayload).To(Equal("raw payload"))
			Expect(outcome.Fields).To(Equal(ticket.EmptyFields()))
		})
	})

	When("extraction succeeds with too few fields", func() {
		BeforeEach(func() {
			f := ticket.EmptyFields()
			f.MovieTitle = ticket.StringPtr("Dune: Part Two")
			f.ShowDate = ticket.StringPtr("05/13/2025")
			primary.result = ticket.ExtractionResult{Success: true, Fields: f}
		})

		It("returns the data flagged as sparse, not an error", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Sparse).To(BeTrue())
			Expect(outcome.Fields.Title()).To(Equal("Dune: Part Two"))
		})
	})

	When("the catalog confirms the title", func() {
		BeforeEach(func() {
			primary.result = richResult("Dune Part Tw0")
			searcher := &fakeSearcher{results: map[string][]catalog.Candidate{
				"Dune Part Two": {{Title: "Dune: Part Two", ReleaseDate: "2024-03-01", Popularity: 150}},
			}}
			registry := vision.NewRegistryWithProviders(discardLog, primary)
			svc = scan.NewService(registry, catalog.NewMatcher(searcher, discardLog), nil, nil, nil, discardLog)
		})

		It("replaces the extracted title with the canonical one", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Fields.Title()).To(Equal("Dune: Part Two"))
		})
	})

	When("the catalog has no confident match", func() {
		BeforeEach(func() {
			primary.result = richResult("Some Obscure Film")
			registry := vision.NewRegistryWithProviders(discardLog, primary)
			svc = scan.NewService(registry, catalog.NewMatcher(&fakeSearcher{}, discardLog), nil, nil, nil, discardLog)
		})

		It("keeps the extracted title", func() {
			outcome, err := svc.Scan(context.Background(), "u1", "ticket.jpg", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Fields.Title()).To(Equal("Some Obscure Film"))
		})
	})
})

var _ = Describe("Service.ProvidersStatus", func() {
	It("marks the active provider", func() {
		registry := vision.NewRegistryWithProviders(discardLog,
			&fakeProvider{name: "alpha"},
			&fakeProvider{name: "beta"},
		)
		svc := scan.NewService(registry, nil, nil, nil, nil, discardLog)
		Expect(svc.SetActiveProvider("beta")).To(Succeed())

		statuses := svc.ProvidersStatus(context.Background())
		Expect(statuses).To(HaveLen(2))
		byName := map[string]scan.ProviderStatus{}
		for _, s := range statuses {
			byName[s.Name] = s
		}
		Expect(byName["beta"].IsActive).To(BeTrue())
		Expect(byName["alpha"].IsActive).To(BeFalse())
		Expect(byName["alpha"].IsConnected).To(BeTrue())
	})
})
