package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/admin/dto"
	itemRepo "github.com/greenloop/greenloop-backend/internal/modules/item/repository"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	userRepo "github.com/greenloop/greenloop-backend/internal/modules/user/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
)

type AdminService interface {
	ListUsers(ctx context.Context, p pagination.Params) ([]entity.User, int64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*entity.User, error)
	DeleteUser(ctx context.Context, actorID, id uuid.UUID) error
	Stats(ctx context.Context) (*dto.Stats, error)
}

type adminService struct {
	users userRepo.UserRepository
	posts postRepo.PostRepository
	items itemRepo.ItemRepository
}

func NewAdminService(users userRepo.UserRepository, posts postRepo.PostRepository, items itemRepo.ItemRepository) AdminService {
	return &adminService{
		users: users,
		posts: posts,
		items: items,
	}
}

func (s *adminService) ListUsers(ctx context.Context, p pagination.Params) ([]entity.User, int64, error) {
	users, total, err := s.users.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return nil, err
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.RoleID != nil {
		user.RoleID = *req.RoleID
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return apperror.Wrap(apperror.ErrInvalidInput, "you cannot delete your own account")
	}

	if _, err := s.users.FindByID(ctx, id.String()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return err
	}

	return s.users.Delete(ctx, id)
}

func (s *adminService) Stats(ctx context.Context) (*dto.Stats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := s.posts.CountByStatus(ctx, entity.StatusPending)
	if err != nil {
		return nil, err
	}
	approved, err := s.posts.CountByStatus(ctx, entity.StatusApproved)
	if err != nil {
		return nil, err
	}
	rejected, err := s.posts.CountByStatus(ctx, entity.StatusRejected)
	if err != nil {
		return nil, err
	}

	redemptions, err := s.items.CountRedemptions(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.Stats{
		TotalUsers:       totalUsers,
		PendingPosts:     pending,
		ApprovedPosts:    approved,
		RejectedPosts:    rejected,
		TotalRedemptions: redemptions,
	}, nil
}
