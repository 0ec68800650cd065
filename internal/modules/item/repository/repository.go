package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
)

type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	List(ctx context.Context, tag string, offset, limit int) ([]entity.Item, int64, error)
	Update(ctx context.Context, item *entity.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasRedemptions(ctx context.Context, itemID uuid.UUID) (bool, error)
	ListRedemptions(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]entity.ItemsHistory, int64, error)
	CountRedemptions(ctx context.Context) (int64, error)
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, tag string, offset, limit int) ([]entity.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Item{})
	if tag != "" {
		query = query.Where("tag = ?", tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []entity.Item
	err := query.
		Order("required_points asc, created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Item{}, "id = ?", id).Error
}

func (r *itemRepository) HasRedemptions(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.ItemsHistory{}).
		Where("item_id = ?", itemID).
		Count(&count).Error
	return count > 0, err
}

func (r *itemRepository) ListRedemptions(ctx context.Context, userID *uuid.UUID, offset, limit int) ([]entity.ItemsHistory, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ItemsHistory{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []entity.ItemsHistory
	err := query.
		Preload("Item").
		Preload("User").
		Order("redemption_date desc").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *itemRepository) CountRedemptions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ItemsHistory{}).Count(&count).Error
	return count, err
}
