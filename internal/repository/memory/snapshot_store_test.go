package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(time.Hour)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	payload := []byte(`{"currentStep":1}`)
	require.NoError(t, store.Put(ctx, "k", payload))
	payload[0] = 'X'

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"currentStep":1}`, string(got), "store keeps its own copy")

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(20 * time.Millisecond)
	require.NoError(t, store.Put(ctx, "k", []byte("{}")))

	time.Sleep(50 * time.Millisecond)
	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
