package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	commentRepo "github.com/greenloop/greenloop-backend/internal/modules/comment/repository"
	notifService "github.com/greenloop/greenloop-backend/internal/modules/notification/service"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uuid.UUID, content string) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID, p pagination.Params) ([]entity.Comment, int64, error)
	// DeleteComment removes a comment. Only the author may delete it.
	DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error
}

type commentService struct {
	repo          commentRepo.CommentRepository
	postRepo      postRepo.PostRepository
	notifications notifService.NotificationService
}

func NewCommentService(repo commentRepo.CommentRepository, postRepo postRepo.PostRepository, notifications notifService.NotificationService) CommentService {
	return &commentService{
		repo:          repo,
		postRepo:      postRepo,
		notifications: notifications,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, postID uuid.UUID, content string) (*entity.Comment, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "comment must not be empty")
	}

	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return nil, err
	}

	comment := &entity.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: trimmed,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	if post.UserID != userID && s.notifications != nil {
		go func() {
			notif := &entity.Notification{
				UserID:     post.UserID,
				ActorID:    userID,
				EntityID:   postID,
				EntityType: "post",
				Type:       "comment",
				Message:    fmt.Sprintf("%s commented on your post %q", created.User.Username, post.Title),
			}
			if err := s.notifications.CreateNotification(context.Background(), notif); err != nil {
				log.Warn().Err(err).Msg("failed to create comment notification")
			}
		}()
	}

	return created, nil
}

func (s *commentService) ListByPost(ctx context.Context, postID uuid.UUID, p pagination.Params) ([]entity.Comment, int64, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return nil, 0, err
	}
	return s.repo.ListByPost(ctx, postID, p.Offset, p.Limit)
}

func (s *commentService) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) error {
	comment, err := s.repo.FindByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "comment not found")
		}
		return err
	}

	if comment.UserID != actorID {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own comments")
	}

	return s.repo.Delete(ctx, commentID)
}
