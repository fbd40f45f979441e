// Package scan is the top-level orchestrator: it resolves a vision
// provider, runs extraction, enriches the title through the catalog, and
// composes the persisted-shape outcome.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cinelog/ticket-scanner/constants"
	"github.com/cinelog/ticket-scanner/internal/catalog"
	"github.com/cinelog/ticket-scanner/internal/common"
	"github.com/cinelog/ticket-scanner/internal/fields"
	"github.com/cinelog/ticket-scanner/internal/repository"
	"github.com/cinelog/ticket-scanner/internal/scancache"
	"github.com/cinelog/ticket-scanner/internal/ticket"
	"github.com/cinelog/ticket-scanner/internal/vision"
)

// ProviderStatus is one row of the providers report.
type ProviderStatus struct {
	Name        string `json:"name"`
	IsActive    bool   `json:"isActive"`
	IsConnected bool   `json:"isConnected"`
}

// Service wires the extraction paths together. Matcher, repo and cache are
// optional; a nil collaborator disables that concern.
type Service struct {
	registry *vision.Registry
	matcher  *catalog.Matcher
	parser   *fields.TicketParser
	repo     repository.OutcomeRepository
	cache    *scancache.Cache
	log      *slog.Logger
}

func NewService(registry *vision.Registry, matcher *catalog.Matcher, parser *fields.TicketParser, repo repository.OutcomeRepository, cache *scancache.Cache, log *slog.Logger) *Service {
	return &Service{
		registry: registry,
		matcher:  matcher,
		parser:   parser,
		repo:     repo,
		cache:    cache,
		log:      log,
	}
}

// Scan runs the vision path: resolve a provider, extract, enrich, compose.
// An unresolvable provider is the only fatal error; extraction failures
// come back as (outcome, error) with the raw payload preserved, and a
// too-sparse result is a success with Sparse set.
func (s *Service) Scan(ctx context.Context, userID, imagePath, providerName string) (ticket.ScanOutcome, error) {
	if !constants.IsAllowedExt(filepath.Ext(imagePath)) {
		return ticket.ScanOutcome{}, common.NewAppError("UNSUPPORTED_IMAGE", "unsupported image extension: "+filepath.Ext(imagePath), common.ErrInvalidInput)
	}

	reqID := uuid.New()
	ctx = common.WithRequestID(ctx, reqID.String())
	ctx = common.WithUserID(ctx, userID)
	start := time.Now()

	provider, err := s.resolveProvider(providerName)
	if err != nil {
		return ticket.ScanOutcome{}, err
	}
	s.log.Info("scan.start", "req_id", reqID, "user_id", userID, "provider", provider.Name(), "image", imagePath)

	result := provider.ExtractTicketData(ctx, imagePath)
	outcome := s.compose(ctx, reqID, userID, imagePath, provider.Name(), result)

	if !result.Success {
		s.log.Error("scan.failed", "req_id", reqID, "provider", provider.Name(), "error", result.Error)
		return outcome, common.NewAppError("EXTRACTION_FAILED", result.Error, common.ErrInternal)
	}

	s.persist(ctx, outcome)
	s.log.Info("scan.done",
		"req_id", reqID,
		"provider", provider.Name(),
		"sparse", outcome.Sparse,
		"populated", outcome.Fields.CountPopulated(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return outcome, nil
}

// ScanLegacy runs the deterministic fallback path over the same composition
// and persistence flow, recorded under the "legacy" provider name.
func (s *Service) ScanLegacy(ctx context.Context, userID, imagePath string) (ticket.ScanOutcome, error) {
	if s.parser == nil {
		return ticket.ScanOutcome{}, common.NewAppError("NO_LEGACY_PIPELINE", "deterministic pipeline not configured", common.ErrNoProvider)
	}
	reqID := uuid.New()
	ctx = common.WithRequestID(ctx, reqID.String())
	s.log.Info("scan.start", "req_id", reqID, "user_id", userID, "provider", "legacy", "image", imagePath)

	result, err := s.parser.Parse(ctx, imagePath)
	outcome := s.compose(ctx, reqID, userID, imagePath, "legacy", result)
	if err != nil {
		return outcome, common.NewAppError("EXTRACTION_FAILED", result.Error, err)
	}
	if !result.Success {
		return outcome, common.NewAppError("EXTRACTION_FAILED", result.Error, common.ErrInternal)
	}

	s.persist(ctx, outcome)
	return outcome, nil
}

func (s *Service) resolveProvider(name string) (vision.Provider, error) {
	if name != "" {
		return s.registry.Get(name)
	}
	return s.registry.Active()
}

// compose enriches the title and applies the completeness rule. Catalog
// enrichment replaces the title only on a confident match; any lookup
// trouble keeps the extracted text.
func (s *Service) compose(ctx context.Context, reqID uuid.UUID, userID, imagePath, providerName string, result ticket.ExtractionResult) ticket.ScanOutcome {
	f := result.Fields
	if result.Success && s.matcher != nil && f.Title() != "" {
		if match, ok := s.matcher.BestMatch(ctx, f.Title()); ok && match.Candidate.Title != f.Title() {
			s.log.Info("scan.title.canonicalized", "req_id", reqID, "from", f.Title(), "to", match.Candidate.Title)
			f.MovieTitle = ticket.StringPtr(match.Candidate.Title)
		}
	}
	return ticket.ScanOutcome{
		ID:         reqID,
		UserID:     userID,
		ImagePath:  imagePath,
		Provider:   providerName,
		RawPayload: result.RawResponse,
		Fields:     f,
		Sparse:     result.Success && !ticket.ValidateTicketData(f),
		CreatedAt:  time.Now().UTC(),
	}
}

// persist saves and caches best-effort; storage trouble never fails a scan.
func (s *Service) persist(ctx context.Context, outcome ticket.ScanOutcome) {
	if s.repo != nil {
		if err := s.repo.Save(ctx, outcome); err != nil {
			s.log.Error("scan.persist.failed", "scan_id", outcome.ID, "error", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.PutRecent(outcome.UserID, outcome); err != nil {
			s.log.Warn("scan.cache.failed", "scan_id", outcome.ID, "error", err)
		}
	}
}

// RecentScan returns the user's cached most recent scan.
func (s *Service) RecentScan(userID string) (ticket.ScanOutcome, error) {
	if s.cache == nil {
		return ticket.ScanOutcome{}, common.NewAppError("NO_CACHE", "scan cache not configured", common.ErrNotFound)
	}
	return s.cache.GetRecent(userID)
}

// ValidateTicketData re-exports the canonical completeness rule.
func (s *Service) ValidateTicketData(f ticket.Fields) bool {
	return ticket.ValidateTicketData(f)
}

// ProvidersStatus reports every registered provider with its connectivity.
func (s *Service) ProvidersStatus(ctx context.Context) []ProviderStatus {
	connected := s.registry.TestAll(ctx)
	active := s.registry.ActiveName()
	names := s.registry.Names()
	out := make([]ProviderStatus, 0, len(names))
	for _, name := range names {
		out = append(out, ProviderStatus{
			Name:        name,
			IsActive:    name == active,
			IsConnected: connected[name],
		})
	}
	return out
}

// SetActiveProvider switches the default provider.
func (s *Service) SetActiveProvider(name string) error {
	return s.registry.SetActive(name)
}

// TestAllProviders probes every registered backend.
func (s *Service) TestAllProviders(ctx context.Context) map[string]bool {
	return s.registry.TestAll(ctx)
}

// TitleValidatorAdapter exposes the catalog matcher through the interface
// the title extractor wants.
type TitleValidatorAdapter struct {
	Matcher *catalog.Matcher
}

func (a TitleValidatorAdapter) ValidateTitle(ctx context.Context, raw string) (string, bool) {
	if a.Matcher == nil {
		return "", false
	}
	match, ok := a.Matcher.BestMatch(ctx, raw)
	if !ok {
		return "", false
	}
	return match.Candidate.Title, true
}

var _ fields.TitleValidator = TitleValidatorAdapter{}

// Describe renders a short human-readable summary of an outcome for CLI
// output.
func Describe(o ticket.ScanOutcome) string {
	state := "ok"
	if o.Sparse {
		state = "sparse"
	}
	return fmt.Sprintf("scan %s (%s via %s): title=%q populated=%d", o.ID, state, o.Provider, o.Fields.Title(), o.Fields.CountPopulated())
}
