package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/item/dto"
	itemRepo "github.com/greenloop/greenloop-backend/internal/modules/item/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/storage"
)

type ItemService interface {
	CreateItem(ctx context.Context, req dto.CreateItemRequest, image io.Reader, imageName string) (*entity.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error)
	ListItems(ctx context.Context, tag string, p pagination.Params) ([]entity.Item, int64, error)
	UpdateItem(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest, image io.Reader, imageName string) (*entity.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// RedeemItem exchanges the caller's EcoTokens for one unit of the item.
	RedeemItem(ctx context.Context, userID, itemID uuid.UUID) (*dto.RedemptionResponse, error)
	ListRedemptions(ctx context.Context, userID *uuid.UUID, p pagination.Params) (*dto.PaginatedRedemptionResponse, error)
	MarkShipped(ctx context.Context, redemptionID uuid.UUID) error
}

type itemService struct {
	db      *gorm.DB
	repo    itemRepo.ItemRepository
	storage storage.ImageStorage
}

func NewItemService(db *gorm.DB, repo itemRepo.ItemRepository, imgStorage storage.ImageStorage) ItemService {
	return &itemService{
		db:      db,
		repo:    repo,
		storage: imgStorage,
	}
}

func (s *itemService) CreateItem(ctx context.Context, req dto.CreateItemRequest, image io.Reader, imageName string) (*entity.Item, error) {
	item := &entity.Item{
		Name:           req.Name,
		RequiredPoints: req.RequiredPoints,
		Tag:            req.Tag,
	}

	if image != nil && s.storage != nil {
		url, err := s.storage.UploadImage(ctx, image, "items", imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload item image: %w", err)
		}
		item.ImageURL = &url
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, tag string, p pagination.Params) ([]entity.Item, int64, error) {
	return s.repo.List(ctx, tag, p.Offset, p.Limit)
}

func (s *itemService) UpdateItem(ctx context.Context, id uuid.UUID, req dto.UpdateItemRequest, image io.Reader, imageName string) (*entity.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.RequiredPoints != nil {
		item.RequiredPoints = *req.RequiredPoints
	}
	if req.Tag != nil && *req.Tag != "" {
		item.Tag = *req.Tag
	}

	if image != nil && s.storage != nil {
		url, err := s.storage.UploadImage(ctx, image, "items", imageName)
		if err != nil {
			return nil, fmt.Errorf("failed to upload item image: %w", err)
		}
		old := item.ImageURL
		item.ImageURL = &url
		if old != nil && s.storage.IsRemoteURL(*old) {
			if err := s.storage.DeleteImage(ctx, *old); err != nil {
				log.Warn().Err(err).Msg("failed to delete old item image")
			}
		}
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes a catalog item. Items that have ever been redeemed are
// kept so redemption history stays resolvable.
func (s *itemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	redeemed, err := s.repo.HasRedemptions(ctx, id)
	if err != nil {
		return err
	}
	if redeemed {
		return apperror.Wrap(apperror.ErrConflict, "item has been redeemed and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if item.ImageURL != nil && s.storage != nil && s.storage.IsRemoteURL(*item.ImageURL) {
		if err := s.storage.DeleteImage(ctx, *item.ImageURL); err != nil {
			log.Warn().Err(err).Msg("failed to delete item image")
		}
	}
	return nil
}

func (s *itemService) RedeemItem(ctx context.Context, userID, itemID uuid.UUID) (*dto.RedemptionResponse, error) {
	var history entity.ItemsHistory
	var balanceAfter int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Wrap(apperror.ErrNotFound, "item not found")
			}
			return err
		}

		// Conditional debit: the WHERE clause guards the balance so two
		// concurrent redemptions cannot both succeed on insufficient funds.
		res := tx.Model(&entity.User{}).
			Where("id = ? AND current_points >= ?", userID, item.RequiredPoints).
			Update("current_points", gorm.Expr("current_points - ?", item.RequiredPoints))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var user entity.User
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperror.Wrap(apperror.ErrNotFound, "user not found")
				}
				return err
			}
			return apperror.Wrap(apperror.ErrInsufficientBalance,
				fmt.Sprintf("needs %d EcoTokens, you have %d", item.RequiredPoints, user.CurrentPoints))
		}

		history = entity.ItemsHistory{
			UserID: userID,
			ItemID: item.ID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		var user entity.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		balanceAfter = user.CurrentPoints
		history.Item = item
		history.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.ToRedemptionResponse(&history)
	resp.BalanceAfter = balanceAfter
	return &resp, nil
}

func (s *itemService) ListRedemptions(ctx context.Context, userID *uuid.UUID, p pagination.Params) (*dto.PaginatedRedemptionResponse, error) {
	rows, total, err := s.repo.ListRedemptions(ctx, userID, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaginatedRedemptionResponse{
		Redemptions: make([]dto.RedemptionResponse, 0, len(rows)),
		Total:       total,
		Page:        p.Page,
		Limit:       p.Limit,
	}
	for i := range rows {
		resp.Redemptions = append(resp.Redemptions, dto.ToRedemptionResponse(&rows[i]))
	}
	return resp, nil
}

func (s *itemService) MarkShipped(ctx context.Context, redemptionID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&entity.ItemsHistory{}).
		Where("id = ?", redemptionID).
		Update("is_shipped", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Wrap(apperror.ErrNotFound, "redemption not found")
	}
	return nil
}
