package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type WalletRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.PointHistory, int64, error)
	// SumByUser totals all ledger rows for a user.
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]entity.PointHistory, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []entity.PointHistory
	err := query.
		Order("transaction_date desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *walletRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).
		Model(&entity.PointHistory{}).
		Where("user_id = ?", userID).
		Select("sum(points_change)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
