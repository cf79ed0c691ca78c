package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/profit"
	repo "github.com/mamadbah2/fishprofit/internal/repository/sheets"
	"github.com/mamadbah2/fishprofit/internal/service/ledger"
)

const batchesExportRange = "Batches!A:H"

// ErrExportDisabled is returned when no spreadsheet is configured.
var ErrExportDisabled = errors.New("sheet export is not configured")

// LedgerReader is the read side of the ledger the reports are built from.
type LedgerReader interface {
	ListBatches() []ledger.Entry
	Summary() profit.Summary
}

// Service renders text summaries for chat and exports batch rows to a sheet.
type Service struct {
	ledger  LedgerReader
	sheets  repo.Repository
	margins []float64
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. sheets may be nil.
func NewService(ledger LedgerReader, sheets repo.Repository, margins []float64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, sheets: sheets, margins: margins, logger: logger, now: time.Now}
}

// BatchesSummary lists every batch with revenue, profit and margin.
func (s *Service) BatchesSummary() string {
	entries := s.ledger.ListBatches()
	if len(entries) == 0 {
		return "No batches yet. Send /batch to start one."
	}

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(formatEntry(e))
		b.WriteByte('\n')
	}

	sum := s.ledger.Summary()
	fmt.Fprintf(&b, "Total: revenue %s, profit %s across %d batches.", money(sum.TotalRevenue), money(sum.TotalProfit), sum.Batches)
	return b.String()
}

// MonthSummary reports total profit, the fixed monthly costs and net profit.
func (s *Service) MonthSummary() string {
	sum := s.ledger.Summary()
	c := sum.MonthlyCosts
	return fmt.Sprintf("Month (%s): profit from batches %s, rent %s, ads %s, other %s. Net profit %s.",
		s.now().Format("2006-01"), money(sum.TotalProfit), money(c.Rent), money(c.Ads), money(c.Other), money(sum.NetProfit))
}

// PriceAdvice lists the minimum price per kg for each target margin of a batch.
func (s *Service) PriceAdvice(e ledger.Entry, margins ...float64) string {
	if len(margins) == 0 {
		margins = s.margins
	}
	if e.OutputKg <= 0 {
		return fmt.Sprintf("Batch %s has no output yet; set outputKg first.", shortID(e.ID))
	}

	parts := make([]string, 0, len(margins))
	for _, m := range margins {
		price := e.Metrics.MinPriceForMargin(m)
		if price <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%.0f%% -> %s/kg", m*100, money(price)))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Batch %s: no reachable margin in the requested range.", shortID(e.ID))
	}
	return fmt.Sprintf("Batch %s minimum price: %s.", shortID(e.ID), strings.Join(parts, ", "))
}

// ExportToSheet appends one row per batch to the configured spreadsheet.
func (s *Service) ExportToSheet(ctx context.Context) (int, error) {
	if s.sheets == nil {
		return 0, ErrExportDisabled
	}

	entries := s.ledger.ListBatches()
	if len(entries) == 0 {
		return 0, nil
	}

	exportedAt := s.now().UTC().Format(time.RFC3339)
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.Date,
			e.ID,
			round2(e.Metrics.Revenue),
			round2(e.PurchaseCost + e.Metrics.VariableCosts),
			round2(e.Metrics.Profit),
			round2(e.Metrics.Margin),
			e.Metrics.SoldGrams,
			exportedAt,
		})
	}

	if err := s.sheets.AppendRows(ctx, batchesExportRange, rows); err != nil {
		return 0, fmt.Errorf("export batches: %w", err)
	}

	s.logger.Info("batches exported to sheet", zap.Int("rows", len(rows)))
	return len(rows), nil
}

func formatEntry(e ledger.Entry) string {
	line := fmt.Sprintf("%s [%s]: revenue %s, profit %s, margin %.1f%%",
		e.Date, shortID(e.ID), money(e.Metrics.Revenue), money(e.Metrics.Profit), e.Metrics.Margin*100)
	if len(e.Sales) > 0 {
		line += fmt.Sprintf(" (%d sales, %.0fg)", len(e.Sales), e.Metrics.SoldGrams)
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func money(v float64) string {
	return fmt.Sprintf("%.0ftl", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
