package memory

import (
	"context"
	"time"

	"brdgenius-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type SnapshotStore struct {
	cache *cache.Cache
}

var _ contract.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore keeps snapshots in process memory for ttl, purging
// expired entries every 10 minutes.
func NewSnapshotStore(ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (s *SnapshotStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if x, found := s.cache.Get(key); found {
		data := x.([]byte)
		return append([]byte(nil), data...), true, nil
	}
	return nil, false, nil
}

func (s *SnapshotStore) Put(_ context.Context, key string, data []byte) error {
	s.cache.Set(key, append([]byte(nil), data...), cache.DefaultExpiration)
	return nil
}

func (s *SnapshotStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}
