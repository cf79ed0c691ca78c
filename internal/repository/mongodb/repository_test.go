package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live server only when MONGODB_TEST_URI is set.
func TestMongoDBRepository_RoundTrip(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set, skipping mongodb integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := NewMongoDBRepository(ctx, uri, "fishprofit_test", "kv_"+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.collection().Drop(context.Background())
		_ = repo.Close(context.Background())
	})

	_, ok, err := repo.Get(ctx, "fish_batches_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Put(ctx, "fish_batches_v1", "[]"))
	require.NoError(t, repo.Put(ctx, "fish_batches_v1", `[{"id":"x"}]`))

	v, ok, err := repo.Get(ctx, "fish_batches_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"x"}]`, v)
}
