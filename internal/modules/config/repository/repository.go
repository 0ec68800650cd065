package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type ConfigRepository interface {
	// Get returns the stored document for key, or nil when absent.
	Get(ctx context.Context, key string) (*entity.AppConfig, error)
	// Insert creates the first version of a document.
	Insert(ctx context.Context, cfg *entity.AppConfig) error
	// UpdateIfVersion writes value only when the stored version still
	// matches expectedVersion. It reports whether the write happened.
	UpdateIfVersion(ctx context.Context, key, value string, expectedVersion int) (bool, error)
}

type configRepository struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) ConfigRepository {
	return &configRepository{db: db}
}

func (r *configRepository) Get(ctx context.Context, key string) (*entity.AppConfig, error) {
	var rows []entity.AppConfig
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *configRepository) Insert(ctx context.Context, cfg *entity.AppConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *configRepository) UpdateIfVersion(ctx context.Context, key, value string, expectedVersion int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.AppConfig{}).
		Where("key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]interface{}{
			"value":   value,
			"version": expectedVersion + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
