package implementation

import (
	"context"
	"os"
	"testing"
	"time"

	"brdgenius-be/internal/model"
	"brdgenius-be/internal/repository/contract"
	"brdgenius-be/pkg/database"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store contract.SnapshotStore) {
	ctx := context.Background()
	key := "brdGeniusState:test-" + uuid.NewString()

	_, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Put(ctx, key, []byte(`{"currentStep":1}`)))
	require.NoError(t, store.Put(ctx, key, []byte(`{"currentStep":2}`)))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"currentStep":2}`, string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, found, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSnapshotStore(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("Skipping integration test: REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	exerciseStore(t, NewRedisSnapshotStore(rdb, time.Minute))
}

func TestGormSnapshotStore(t *testing.T) {
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}
	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.WizardSnapshot{}))

	exerciseStore(t, NewGormSnapshotStore(db))
}
