package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/service/ledger"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// Ledger is the subset of the ledger service the chat channel drives.
type Ledger interface {
	ResolveBatchID(ref string) (string, error)
	GetBatch(id string) (ledger.Entry, error)
	AddBatch(ctx context.Context) (ledger.Entry, error)
	UpdateBatchField(ctx context.Context, id, field, value string) (ledger.Entry, error)
	RemoveBatch(ctx context.Context, id string) error
	AddSale(ctx context.Context, batchID string, grams, totalPrice float64) (models.Sale, error)
	RemoveSale(ctx context.Context, batchID, saleID string) error
	SetMonthlyCost(ctx context.Context, field, value string) (models.MonthlyCosts, error)
}

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	BatchesSummary() string
	MonthSummary() string
	PriceAdvice(e ledger.Entry, margins ...float64) string
}

// Dispatcher executes parsed commands against the ledger.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	ledger    Ledger
	reporting ReportingAdapter
	logger    *zap.Logger
}

// NewService constructs a command dispatcher.
func NewService(ledger Ledger, reporting ReportingAdapter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:    ledger,
		reporting: reporting,
		logger:    logger,
	}
}

// HandleCommand runs the command and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Any("args", cmd.Args))

	switch cmd.Type {
	case models.CommandNewBatch:
		e, err := s.ledger.AddBatch(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Batch %s created for %s. Fill it with /set %s <field> <value>.", short(e.ID), e.Date, short(e.ID)), nil
	case models.CommandSet:
		if len(cmd.Args) < 3 {
			return "", ErrInvalidArguments
		}
		id, err := s.ledger.ResolveBatchID(cmd.Args[0])
		if err != nil {
			return "", err
		}
		e, err := s.ledger.UpdateBatchField(ctx, id, cmd.Args[1], strings.Join(cmd.Args[2:], " "))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Batch %s updated. %s", short(e.ID), metricsLine(e)), nil
	case models.CommandSale:
		if len(cmd.Args) < 3 {
			return "", ErrInvalidArguments
		}
		id, err := s.ledger.ResolveBatchID(cmd.Args[0])
		if err != nil {
			return "", err
		}
		grams, err := ledger.ParseNumber(cmd.Args[1])
		if err != nil {
			return "", ErrInvalidArguments
		}
		price, err := ledger.ParseNumber(cmd.Args[2])
		if err != nil {
			return "", ErrInvalidArguments
		}
		sale, err := s.ledger.AddSale(ctx, id, grams, price)
		if err != nil {
			return "", err
		}
		e, err := s.ledger.GetBatch(id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Sale %s recorded: %.0fg = %.0ftl. %s", short(sale.ID), sale.GramsAmount, sale.TotalPrice, metricsLine(e)), nil
	case models.CommandRemoveSale:
		if len(cmd.Args) < 2 {
			return "", ErrInvalidArguments
		}
		id, err := s.ledger.ResolveBatchID(cmd.Args[0])
		if err != nil {
			return "", err
		}
		e, err := s.ledger.GetBatch(id)
		if err != nil {
			return "", err
		}
		saleID, err := resolveSaleID(e.Sales, cmd.Args[1])
		if err != nil {
			return "", err
		}
		if err := s.ledger.RemoveSale(ctx, id, saleID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Sale %s removed from batch %s.", short(saleID), short(id)), nil
	case models.CommandDrop:
		if len(cmd.Args) < 1 {
			return "", ErrInvalidArguments
		}
		id, err := s.ledger.ResolveBatchID(cmd.Args[0])
		if err != nil {
			return "", err
		}
		if err := s.ledger.RemoveBatch(ctx, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("Batch %s deleted.", short(id)), nil
	case models.CommandProfit:
		return s.reporting.BatchesSummary(), nil
	case models.CommandMonth:
		if len(cmd.Args) == 1 || len(cmd.Args) > 2 {
			return "", ErrInvalidArguments
		}
		if len(cmd.Args) == 2 {
			if _, err := s.ledger.SetMonthlyCost(ctx, cmd.Args[0], cmd.Args[1]); err != nil {
				return "", err
			}
		}
		return s.reporting.MonthSummary(), nil
	case models.CommandPrice:
		if len(cmd.Args) < 1 {
			return "", ErrInvalidArguments
		}
		id, err := s.ledger.ResolveBatchID(cmd.Args[0])
		if err != nil {
			return "", err
		}
		e, err := s.ledger.GetBatch(id)
		if err != nil {
			return "", err
		}
		var margins []float64
		for _, arg := range cmd.Args[1:] {
			pct, err := ledger.ParseNumber(strings.TrimSuffix(arg, "%"))
			if err != nil {
				return "", ErrInvalidArguments
			}
			margins = append(margins, pct/100)
		}
		return s.reporting.PriceAdvice(e, margins...), nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func resolveSaleID(sales []models.Sale, ref string) (string, error) {
	match := ""
	for _, sale := range sales {
		if sale.ID == ref {
			return sale.ID, nil
		}
		if strings.HasPrefix(strings.ToLower(sale.ID), ref) {
			if match != "" {
				return "", ErrInvalidArguments
			}
			match = sale.ID
		}
	}
	if match == "" {
		return "", ledger.ErrSaleNotFound
	}
	return match, nil
}

func metricsLine(e ledger.Entry) string {
	return fmt.Sprintf("Revenue %.0ftl, profit %.0ftl, margin %.1f%%.", e.Metrics.Revenue, e.Metrics.Profit, e.Metrics.Margin*100)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
