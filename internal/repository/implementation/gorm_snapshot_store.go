package implementation

import (
	"context"
	"errors"
	"time"

	"brdgenius-be/internal/model"
	"brdgenius-be/internal/repository/contract"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormSnapshotStore struct {
	db *gorm.DB
}

func NewGormSnapshotStore(db *gorm.DB) contract.SnapshotStore {
	return &GormSnapshotStore{db: db}
}

func (s *GormSnapshotStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var snap model.WizardSnapshot
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(snap.Data), true, nil
}

func (s *GormSnapshotStore) Put(ctx context.Context, key string, data []byte) error {
	snap := model.WizardSnapshot{
		Key:       key,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now(),
	}
	// Upsert: one row per key
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&snap).Error
}

func (s *GormSnapshotStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&model.WizardSnapshot{}).Error
}
