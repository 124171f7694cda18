package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"listing-tracker/internal/repository"
)

// Service is a tiny façade over the listing repository that produces XLSX
// bytes for exports.
type Service struct {
	listings repository.ListingRepository
	logger   *slog.Logger
}

func NewService(listings repository.ListingRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{listings: listings, logger: logger}
}

// ExportListingsXLSX returns an XLSX workbook (as bytes) with one row per
// saved listing, newest first.
func (s *Service) ExportListingsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	listings, err := s.listings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Listings"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Display ID",
		"Created",
		"Price",
		"Address",
		"Region",
		"Beds",
		"Baths",
		"SqFt",
		"Lot SqFt",
		"Year Built",
		"Days on Market",
		"MLS #",
		"URL",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}

	row := 2
	for _, l := range listings {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, l.DisplayID)
		write(2, l.CreatedAt)
		write(3, str(l.Price))
		write(4, str(l.Address))
		write(5, str(l.Region))
		write(6, str(l.Beds))
		write(7, str(l.Baths))
		write(8, str(l.Sqft))
		if l.SqftLot != nil {
			write(9, *l.SqftLot)
		} else {
			write(9, "")
		}
		write(10, str(l.YearBuilt))
		write(11, str(l.DaysOnMarket))
		write(12, str(l.ARMLS))
		write(13, l.URL)

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 12) // display id
	_ = f.SetColWidth(sheet, "B", "B", 12) // created
	_ = f.SetColWidth(sheet, "C", "C", 14) // price
	_ = f.SetColWidth(sheet, "D", "D", 40) // address
	_ = f.SetColWidth(sheet, "E", "E", 16) // region
	_ = f.SetColWidth(sheet, "L", "L", 14) // mls
	_ = f.SetColWidth(sheet, "M", "M", 60) // url

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(listings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
