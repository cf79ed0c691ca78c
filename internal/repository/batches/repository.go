package batches

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/repository/kv"
)

// Namespace keys. The batches key matches the one the collection has always been stored under.
const (
	BatchesKey      = "fish_batches_v1"
	MonthlyCostsKey = "monthly_costs_v1"
)

// Repository loads and saves the full batch collection and the monthly costs.
type Repository interface {
	LoadBatches(ctx context.Context) ([]models.Batch, error)
	SaveBatches(ctx context.Context, batches []models.Batch) error
	LoadMonthlyCosts(ctx context.Context) (models.MonthlyCosts, error)
	SaveMonthlyCosts(ctx context.Context, costs models.MonthlyCosts) error
}

// KVRepository serializes collections as JSON values in a kv.Store.
type KVRepository struct {
	store  kv.Store
	logger *zap.Logger
}

// NewKVRepository wires a repository over the given namespace.
func NewKVRepository(store kv.Store, logger *zap.Logger) *KVRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KVRepository{store: store, logger: logger}
}

// LoadBatches returns the stored collection. Missing or malformed data yields
// an empty collection; an element that cannot be read is dropped on its own.
// Only storage failures are returned as errors.
func (r *KVRepository) LoadBatches(ctx context.Context) ([]models.Batch, error) {
	raw, ok, err := r.store.Get(ctx, BatchesKey)
	if err != nil {
		return nil, fmt.Errorf("load batches: %w", err)
	}
	if !ok || raw == "" {
		return []models.Batch{}, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		r.logger.Warn("stored batches are malformed, treating as empty", zap.Error(err))
		return []models.Batch{}, nil
	}

	out := make([]models.Batch, 0, len(elements))
	for i, element := range elements {
		trimmed := bytes.TrimSpace(element)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			r.logger.Warn("skipping stored batch that is not an object", zap.Int("index", i))
			continue
		}
		b, err := decodeBatch(trimmed)
		if err != nil {
			r.logger.Warn("skipping malformed stored batch", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// SaveBatches replaces the stored collection.
func (r *KVRepository) SaveBatches(ctx context.Context, batches []models.Batch) error {
	if batches == nil {
		batches = []models.Batch{}
	}
	payload, err := json.Marshal(batches)
	if err != nil {
		return fmt.Errorf("encode batches: %w", err)
	}
	if err := r.store.Put(ctx, BatchesKey, string(payload)); err != nil {
		return fmt.Errorf("save batches: %w", err)
	}
	return nil
}

// LoadMonthlyCosts returns the stored monthly costs, zero when absent or malformed.
func (r *KVRepository) LoadMonthlyCosts(ctx context.Context) (models.MonthlyCosts, error) {
	raw, ok, err := r.store.Get(ctx, MonthlyCostsKey)
	if err != nil {
		return models.MonthlyCosts{}, fmt.Errorf("load monthly costs: %w", err)
	}
	if !ok || raw == "" {
		return models.MonthlyCosts{}, nil
	}

	var costs models.MonthlyCosts
	if err := json.Unmarshal([]byte(raw), &costs); err != nil {
		r.logger.Warn("stored monthly costs are malformed, treating as zero", zap.Error(err))
		return models.MonthlyCosts{}, nil
	}
	return costs, nil
}

// SaveMonthlyCosts replaces the stored monthly costs.
func (r *KVRepository) SaveMonthlyCosts(ctx context.Context, costs models.MonthlyCosts) error {
	payload, err := json.Marshal(costs)
	if err != nil {
		return fmt.Errorf("encode monthly costs: %w", err)
	}
	if err := r.store.Put(ctx, MonthlyCostsKey, string(payload)); err != nil {
		return fmt.Errorf("save monthly costs: %w", err)
	}
	return nil
}
