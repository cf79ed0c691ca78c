package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/domain/profit"
	"github.com/mamadbah2/fishprofit/internal/repository/batches"
)

var (
	// ErrBatchNotFound indicates no batch matches the identifier.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrAmbiguousBatchID indicates an id prefix matches more than one batch.
	ErrAmbiguousBatchID = errors.New("batch id prefix is ambiguous")
	// ErrSaleNotFound indicates the batch holds no sale with the identifier.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrUnknownField indicates a field-level update names a field that does not exist.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue indicates a numeric field received a non-numeric value.
	ErrInvalidValue = errors.New("invalid value")
)

// Entry is a batch together with its derived metrics.
type Entry struct {
	models.Batch
	Metrics profit.Metrics `json:"metrics"`
}

// Service owns the batch collection. Every mutation is serialized and the full
// collection is saved before the change becomes visible.
type Service struct {
	mu      sync.Mutex
	repo    batches.Repository
	batches []models.Batch
	costs   models.MonthlyCosts
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService loads the stored collection and monthly costs.
func NewService(ctx context.Context, repo batches.Repository, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loaded, err := repo.LoadBatches(ctx)
	if err != nil {
		return nil, err
	}
	costs, err := repo.LoadMonthlyCosts(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("ledger loaded", zap.Int("batches", len(loaded)))

	return &Service{
		repo:    repo,
		batches: loaded,
		costs:   costs,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}, nil
}

// ListBatches returns every batch with its metrics, in creation order.
func (s *Service) ListBatches() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, newEntry(b))
	}
	return out
}

// GetBatch returns one batch with its metrics.
func (s *Service) GetBatch(id string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("get batch %s: %w", id, ErrBatchNotFound)
	}
	return newEntry(s.batches[i]), nil
}

// ResolveBatchID maps an exact id or a unique id prefix to the full id.
func (s *Service) ResolveBatchID(ref string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimSpace(strings.ToLower(ref))
	if ref == "" {
		return "", ErrBatchNotFound
	}
	if i := s.indexOf(ref); i >= 0 {
		return s.batches[i].ID, nil
	}

	match := ""
	for _, b := range s.batches {
		if strings.HasPrefix(strings.ToLower(b.ID), ref) {
			if match != "" {
				return "", fmt.Errorf("resolve %s: %w", ref, ErrAmbiguousBatchID)
			}
			match = b.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("resolve %s: %w", ref, ErrBatchNotFound)
	}
	return match, nil
}

// AddBatch appends a zero-valued batch dated today.
func (s *Service) AddBatch(ctx context.Context) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := models.NewBatch(s.newID(), s.now())
	next := append(s.snapshot(), b)
	if err := s.commit(ctx, next); err != nil {
		return Entry{}, err
	}

	s.logger.Info("batch added", zap.String("batch_id", b.ID))
	return newEntry(b), nil
}

// UpdateBatchField sets one field of a batch from its raw form value.
func (s *Service) UpdateBatchField(ctx context.Context, id, field, value string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Entry{}, fmt.Errorf("update batch %s: %w", id, ErrBatchNotFound)
	}

	next := s.snapshot()
	if err := applyField(&next[i], field, value); err != nil {
		return Entry{}, err
	}
	if err := s.commit(ctx, next); err != nil {
		return Entry{}, err
	}

	s.logger.Debug("batch field updated", zap.String("batch_id", id), zap.String("field", field))
	return newEntry(next[i]), nil
}

// RemoveBatch deletes a batch and all of its sales.
func (s *Service) RemoveBatch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("remove batch %s: %w", id, ErrBatchNotFound)
	}

	current := s.snapshot()
	next := append(current[:i], current[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("batch removed", zap.String("batch_id", id))
	return nil
}

// AddSale appends a sale to a batch, stamped with the current time.
func (s *Service) AddSale(ctx context.Context, batchID string, grams, totalPrice float64) (models.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(batchID)
	if i < 0 {
		return models.Sale{}, fmt.Errorf("add sale to %s: %w", batchID, ErrBatchNotFound)
	}
	if !finite(grams) || !finite(totalPrice) {
		return models.Sale{}, fmt.Errorf("add sale to %s: %w", batchID, ErrInvalidValue)
	}

	sale := models.Sale{
		ID:          s.newID(),
		GramsAmount: grams,
		TotalPrice:  totalPrice,
		DateTime:    s.now().UTC(),
	}

	next := s.snapshot()
	next[i].Sales = append(next[i].Sales, sale)
	if err := s.commit(ctx, next); err != nil {
		return models.Sale{}, err
	}

	s.logger.Info("sale recorded",
		zap.String("batch_id", batchID),
		zap.String("sale_id", sale.ID),
		zap.Float64("grams", grams),
		zap.Float64("total_price", totalPrice))
	return sale, nil
}

// RemoveSale deletes one sale from a batch.
func (s *Service) RemoveSale(ctx context.Context, batchID, saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(batchID)
	if i < 0 {
		return fmt.Errorf("remove sale from %s: %w", batchID, ErrBatchNotFound)
	}

	next := s.snapshot()
	sales := next[i].Sales
	j := -1
	for k := range sales {
		if sales[k].ID == saleID {
			j = k
			break
		}
	}
	if j < 0 {
		return fmt.Errorf("remove sale %s: %w", saleID, ErrSaleNotFound)
	}
	next[i].Sales = append(sales[:j], sales[j+1:]...)

	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("sale removed", zap.String("batch_id", batchID), zap.String("sale_id", saleID))
	return nil
}

// MonthlyCosts returns the fixed costs applied at aggregation.
func (s *Service) MonthlyCosts() models.MonthlyCosts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.costs
}

// SetMonthlyCost updates rent, ads or other from a raw form value.
func (s *Service) SetMonthlyCost(ctx context.Context, field, value string) (models.MonthlyCosts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := ParseNumber(value)
	if err != nil {
		return s.costs, fmt.Errorf("monthly %s: %w", field, err)
	}

	next := s.costs
	switch normalizeField(field) {
	case "rent":
		next.Rent = v
	case "ads":
		next.Ads = v
	case "other":
		next.Other = v
	default:
		return s.costs, fmt.Errorf("monthly %s: %w", field, ErrUnknownField)
	}

	if err := s.repo.SaveMonthlyCosts(ctx, next); err != nil {
		return s.costs, err
	}
	s.costs = next
	return next, nil
}

// Summary aggregates every batch against the monthly costs.
func (s *Service) Summary() profit.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return profit.Summarize(s.batches, s.costs)
}

func (s *Service) indexOf(id string) int {
	for i := range s.batches {
		if s.batches[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) snapshot() []models.Batch {
	out := make([]models.Batch, len(s.batches))
	for i, b := range s.batches {
		out[i] = b.Clone()
	}
	return out
}

// commit saves next and only then makes it the current collection.
func (s *Service) commit(ctx context.Context, next []models.Batch) error {
	if err := s.repo.SaveBatches(ctx, next); err != nil {
		s.logger.Error("failed to persist batches", zap.Error(err))
		return err
	}
	s.batches = next
	return nil
}

func newEntry(b models.Batch) Entry {
	return Entry{Batch: b.Clone(), Metrics: profit.Calculate(b)}
}

func applyField(b *models.Batch, field, value string) error {
	name := normalizeField(field)
	if name == "date" {
		b.Date = strings.TrimSpace(value)
		return nil
	}

	target := numericField(b, name)
	if target == nil {
		return fmt.Errorf("field %s: %w", field, ErrUnknownField)
	}

	v, err := ParseNumber(value)
	if err != nil {
		return fmt.Errorf("field %s: %w", field, err)
	}
	if name == "discountpercent" {
		v /= 100
	}
	*target = v
	return nil
}

func numericField(b *models.Batch, name string) *float64 {
	switch name {
	case "purchasecost":
		return &b.PurchaseCost
	case "outputkg":
		return &b.OutputKg
	case "priceperkg":
		return &b.PricePerKg
	case "discount", "discountpercent":
		return &b.Discount
	case "electricity":
		return &b.Electricity
	case "water":
		return &b.Water
	case "fuel":
		return &b.Fuel
	case "packaging":
		return &b.Packaging
	}
	return nil
}

func normalizeField(field string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(field)))
}

// ParseNumber accepts blank input as zero and a comma as decimal separator.
func ParseNumber(value string) (float64, error) {
	v, err := models.ParseAmount(value)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", strings.TrimSpace(value), ErrInvalidValue)
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
