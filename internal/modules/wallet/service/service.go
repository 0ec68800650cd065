package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	userRepo "github.com/greenloop/greenloop-backend/internal/modules/user/repository"
	walletRepo "github.com/greenloop/greenloop-backend/internal/modules/wallet/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
)

// Wallet is a user's balance snapshot with a page of ledger history.
type Wallet struct {
	CurrentPoints int                   `json:"current_points"`
	Streak        int                   `json:"streak"`
	History       []entity.PointHistory `json:"history"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

type WalletService interface {
	GetWallet(ctx context.Context, userID uuid.UUID, p pagination.Params) (*Wallet, error)
}

type walletService struct {
	repo     walletRepo.WalletRepository
	userRepo userRepo.UserRepository
}

func NewWalletService(repo walletRepo.WalletRepository, userRepo userRepo.UserRepository) WalletService {
	return &walletService{repo: repo, userRepo: userRepo}
}

func (s *walletService) GetWallet(ctx context.Context, userID uuid.UUID, p pagination.Params) (*Wallet, error) {
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return nil, err
	}

	history, total, err := s.repo.ListByUser(ctx, userID, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		CurrentPoints: user.CurrentPoints,
		Streak:        user.Streak,
		History:       history,
		Total:         total,
		Page:          p.Page,
		Limit:         p.Limit,
	}, nil
}
