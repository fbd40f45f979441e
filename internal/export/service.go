// Package export renders a user's scan history as an XLSX workbook.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cinelog/ticket-scanner/internal/repository"
)

// Service is a tiny façade over the outcome repository that produces XLSX
// bytes for exports.
type Service struct {
	repo   repository.OutcomeRepository
	logger *slog.Logger
}

func NewService(repo repository.OutcomeRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportHistoryXLSX returns an XLSX workbook (as bytes) with the user's most
// recent scans, newest first. limit <= 0 exports everything the repository
// returns under its own default.
func (s *Service) ExportHistoryXLSX(ctx context.Context, userID string, limit int) ([]byte, error) {
	start := time.Now()

	outcomes, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query scan history: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Scans"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Scanned At",
		"Movie Title",
		"Show Date",
		"Show Time",
		"Price",
		"Seat",
		"Room",
		"Theater",
		"Chain",
		"Ticket #",
		"Type",
		"Rating",
		"Provider",
		"Sparse",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, o := range outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, o.CreatedAt.Format("2006-01-02 15:04"))
		write(2, deref(o.Fields.MovieTitle))
		write(3, deref(o.Fields.ShowDate))
		write(4, deref(o.Fields.ShowTime))
		write(5, deref(o.Fields.Price))
		write(6, deref(o.Fields.SeatNumber))
		write(7, deref(o.Fields.TheaterRoom))
		write(8, deref(o.Fields.TheaterName))
		write(9, deref(o.Fields.TheaterChain))
		write(10, deref(o.Fields.TicketNumber))
		write(11, deref(o.Fields.TicketType))
		write(12, deref(o.Fields.MovieRating))
		write(13, o.Provider)
		write(14, o.Sparse)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "E", 12)
	_ = f.SetColWidth(sheet, "H", "H", 28)
	_ = f.SetColWidth(sheet, "J", "J", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"user_id", userID,
		"rows", len(outcomes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
