package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StateSlot is the GORM row shape for one key-value slot.
type StateSlot struct {
	Key   string `gorm:"primaryKey;type:varchar(255)"`
	Value string `gorm:"type:text"`
}

// TableName keeps the table name stable regardless of GORM pluralization.
func (StateSlot) TableName() string {
	return "state_slots"
}

// GORMStateStorage is a GORM implementation of StateStorage.
type GORMStateStorage struct {
	db *gorm.DB
}

// NewGORMStateStorage creates a new instance of GORMStateStorage.
func NewGORMStateStorage(db *gorm.DB) *GORMStateStorage {
	return &GORMStateStorage{
		db: db,
	}
}

// Get retrieves the value stored under key.
func (s *GORMStateStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var slot StateSlot
	if err := s.db.WithContext(ctx).First(&slot, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get state slot %s: %w", key, err)
	}
	return slot.Value, true, nil
}

// Set writes value under key, overwriting any existing slot.
func (s *GORMStateStorage) Set(ctx context.Context, key string, value string) error {
	slot := StateSlot{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("failed to set state slot %s: %w", key, err)
	}
	return nil
}

// Delete removes the slot under key. Deleting an absent slot is not an error.
func (s *GORMStateStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&StateSlot{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete state slot %s: %w", key, err)
	}
	return nil
}
