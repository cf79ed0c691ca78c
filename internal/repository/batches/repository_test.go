package batches

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fishprofit/internal/domain/models"
	"github.com/mamadbah2/fishprofit/internal/repository/kv"
)

type failingStore struct{ kv.Store }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}

func TestLoadBatches_EmptyNamespace(t *testing.T) {
	repo := NewKVRepository(kv.NewMemoryStore(), nil)

	got, err := repo.LoadBatches(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoadBatches_MalformedIsEmpty(t *testing.T) {
	for name, raw := range map[string]string{
		"garbage": "{{{",
		"object":  `{"id":"a"}`,
		"null":    "null",
	} {
		t.Run(name, func(t *testing.T) {
			store := kv.NewMemoryStore()
			require.NoError(t, store.Put(context.Background(), BatchesKey, raw))

			got, err := NewKVRepository(store, nil).LoadBatches(context.Background())
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestBatches_RoundTripKeepsWireNames(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewKVRepository(store, nil)
	when := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

	in := []models.Batch{{
		ID:           "b1",
		Date:         "2026-03-04",
		PurchaseCost: 100,
		OutputKg:     10,
		Discount:     0.1,
		Sales:        []models.Sale{{ID: "s1", GramsAmount: 250, TotalPrice: 90, DateTime: when}},
	}}
	require.NoError(t, repo.SaveBatches(ctx, in))

	raw, _, err := store.Get(ctx, BatchesKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"purchaseCost":100`)
	assert.Contains(t, raw, `"gramsAmount":250`)

	out, err := repo.LoadBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadBatches_NilSalesNormalized(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Put(ctx, BatchesKey, `[{"id":"legacy","outputKg":3}]`))

	got, err := NewKVRepository(store, nil).LoadBatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Sales)
	assert.Empty(t, got[0].Sales)
}

func TestLoadBatches_FormTextAmounts(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	raw := `[
		{"id":"a","date":"2026-05-01","purchaseCost":"100","outputKg":"10","pricePerKg":"20","discount":0,
		 "electricity":"0","water":"","fuel":"2,5","packaging":"n/a","sales":[]},
		{"id":"b","date":"2026-05-02","purchaseCost":40,"outputKg":2,"pricePerKg":30,"discount":0.1,
		 "electricity":1,"water":1,"fuel":1,"packaging":1,
		 "sales":[{"id":"s1","gramsAmount":"500","totalPrice":"35","dateTime":"2026-05-02T09:30:00.000Z"}]}
	]`
	require.NoError(t, store.Put(ctx, BatchesKey, raw))

	got, err := NewKVRepository(store, nil).LoadBatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 100.0, got[0].PurchaseCost)
	assert.Equal(t, 10.0, got[0].OutputKg)
	assert.Zero(t, got[0].Electricity)
	assert.Zero(t, got[0].Water)
	assert.Equal(t, 2.5, got[0].Fuel)
	assert.Zero(t, got[0].Packaging)

	require.Len(t, got[1].Sales, 1)
	assert.Equal(t, 500.0, got[1].Sales[0].GramsAmount)
	assert.Equal(t, 35.0, got[1].Sales[0].TotalPrice)
	assert.Equal(t, time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC), got[1].Sales[0].DateTime.UTC())
}

func TestLoadBatches_DropsOnlyUnreadableElements(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	raw := `[{"id":"keep1","outputKg":1}, 42, {"id":"bad","sales":"oops"}, null, {"id":"keep2","water":""}]`
	require.NoError(t, store.Put(ctx, BatchesKey, raw))

	got, err := NewKVRepository(store, nil).LoadBatches(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "keep1", got[0].ID)
	assert.Equal(t, "keep2", got[1].ID)
	assert.NotNil(t, got[1].Sales)
}

func TestLoadBatches_StorageErrorPropagates(t *testing.T) {
	_, err := NewKVRepository(failingStore{}, nil).LoadBatches(context.Background())
	assert.Error(t, err)
}

func TestMonthlyCosts(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewKVRepository(store, nil)

	costs, err := repo.LoadMonthlyCosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, costs)

	require.NoError(t, repo.SaveMonthlyCosts(ctx, models.MonthlyCosts{Rent: 20, Ads: 5, Other: 5}))
	costs, err = repo.LoadMonthlyCosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.MonthlyCosts{Rent: 20, Ads: 5, Other: 5}, costs)

	require.NoError(t, store.Put(ctx, MonthlyCostsKey, "nope"))
	costs, err = repo.LoadMonthlyCosts(ctx)
	require.NoError(t, err)
	assert.Zero(t, costs)
}
