package fields

import (
	"context"
	"log/slog"

	"github.com/cinelog/ticket-scanner/constants"
	"github.com/cinelog/ticket-scanner/internal/ocr"
	"github.com/cinelog/ticket-scanner/internal/ticket"
)

// TicketParser is the deterministic fallback path: recognize text from the
// image, gate on the ticket-vocabulary check, then run every field
// extractor over the text.
type TicketParser struct {
	extractor *ocr.Extractor
	title     *TitleExtractor
	log       *slog.Logger
}

func NewTicketParser(extractor *ocr.Extractor, title *TitleExtractor, log *slog.Logger) *TicketParser {
	if log == nil {
		log = slog.Default()
	}
	return &TicketParser{extractor: extractor, title: title, log: log}
}

// Parse runs recognition and extraction. Text that does not look like a
// ticket short-circuits before any field extractor runs. The result mirrors
// the vision path: failures come back as a failed ExtractionResult, never
// an error, except for recognition itself failing.
func (p *TicketParser) Parse(ctx context.Context, imagePath string) (ticket.ExtractionResult, error) {
	res, err := p.extractor.ExtractText(ctx, imagePath)
	if err != nil {
		return ticket.Failure("", "text recognition failed: "+err.Error()), err
	}
	return p.ParseText(ctx, res.Text), nil
}

// ParseText extracts fields from already-recognized text.
func (p *TicketParser) ParseText(ctx context.Context, text string) ticket.ExtractionResult {
	if !ocr.IsLikelyTicket(text) {
		p.log.Info("fields.parse.rejected", "reason", "not enough ticket vocabulary", "chars", len(text))
		return ticket.Failure(text, "text does not look like a movie ticket")
	}

	var f ticket.Fields
	if title, ok := p.title.Extract(ctx, text); ok {
		f.Set(constants.FieldMovieTitle, title)
	}
	for key, extract := range map[string]Strategy{
		constants.FieldShowDate:     ExtractShowDate,
		constants.FieldShowTime:     ExtractShowTime,
		constants.FieldPrice:        ExtractPrice,
		constants.FieldSeatNumber:   ExtractSeatNumber,
		constants.FieldMovieRating:  ExtractMovieRating,
		constants.FieldTheaterRoom:  ExtractTheaterRoom,
		constants.FieldTicketNumber: ExtractTicketNumber,
		constants.FieldTheaterName:  ExtractTheaterName,
		constants.FieldTheaterChain: ExtractTheaterChain,
		constants.FieldTicketType:   ExtractTicketType,
	} {
		if v, ok := extract(text); ok {
			f.Set(key, v)
		}
	}

	p.log.Info("fields.parse.done", "populated", f.CountPopulated(), "has_title", f.Title() != "")
	return ticket.ExtractionResult{Success: true, Fields: f, RawResponse: text}
}

// Validate applies the canonical completeness rule to a parsed result.
func (p *TicketParser) Validate(f ticket.Fields) bool {
	return ticket.ValidateTicketData(f)
}
