package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	likeRepo "github.com/greenloop/greenloop-backend/internal/modules/like/repository"
	notifService "github.com/greenloop/greenloop-backend/internal/modules/notification/service"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

const countCacheTTL = 7 * 24 * time.Hour

type LikeStatus struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type LikeService interface {
	// ToggleLike flips the like state for (post, user) and returns the
	// resulting status.
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*LikeStatus, error)
	GetStatus(ctx context.Context, userID *uuid.UUID, postID uuid.UUID) (*LikeStatus, error)
}

type likeService struct {
	repo          likeRepo.LikeRepository
	postRepo      postRepo.PostRepository
	redisClient   *redis.Client
	notifications notifService.NotificationService
}

func NewLikeService(repo likeRepo.LikeRepository, postRepo postRepo.PostRepository, redisClient *redis.Client, notifications notifService.NotificationService) LikeService {
	return &likeService{
		repo:          repo,
		postRepo:      postRepo,
		redisClient:   redisClient,
		notifications: notifications,
	}
}

func (s *likeService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*LikeStatus, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return nil, err
	}

	liked, err := s.repo.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	// Cache update is best effort; the DB already holds the truth.
	if s.redisClient != nil {
		delta := int64(1)
		if !liked {
			delta = -1
		}
		if err := s.redisClient.IncrBy(ctx, countKey(postID), delta).Err(); err != nil {
			log.Warn().Err(err).Str("post_id", postID.String()).Msg("failed to update like count cache")
		}
	}

	count, err := s.count(ctx, postID)
	if err != nil {
		return nil, err
	}

	if liked && post.UserID != userID && s.notifications != nil {
		go func() {
			notif := &entity.Notification{
				UserID:     post.UserID,
				ActorID:    userID,
				EntityID:   postID,
				EntityType: "post",
				Type:       "like",
				Message:    fmt.Sprintf("Someone liked your post %q", post.Title),
			}
			if err := s.notifications.CreateNotification(context.Background(), notif); err != nil {
				log.Warn().Err(err).Msg("failed to create like notification")
			}
		}()
	}

	return &LikeStatus{Liked: liked, Count: count}, nil
}

func (s *likeService) GetStatus(ctx context.Context, userID *uuid.UUID, postID uuid.UUID) (*LikeStatus, error) {
	if _, err := s.postRepo.FindByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return nil, err
	}

	count, err := s.count(ctx, postID)
	if err != nil {
		return nil, err
	}

	status := &LikeStatus{Count: count}
	if userID != nil {
		liked, err := s.repo.ExistsForUser(ctx, postID, *userID)
		if err != nil {
			return nil, err
		}
		status.Liked = liked
	}

	return status, nil
}

// count reads the cached like count, rebuilding the cache from the DB on miss.
func (s *likeService) count(ctx context.Context, postID uuid.UUID) (int64, error) {
	if s.redisClient != nil {
		val, err := s.redisClient.Get(ctx, countKey(postID)).Result()
		if err == nil {
			if cached, perr := strconv.ParseInt(val, 10, 64); perr == nil && cached >= 0 {
				return cached, nil
			}
		}
	}

	count, err := s.repo.CountByPost(ctx, postID)
	if err != nil {
		return 0, err
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, countKey(postID), count, countCacheTTL).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to repopulate like count cache")
		}
	}

	return count, nil
}

func countKey(postID uuid.UUID) string {
	return fmt.Sprintf("counts:post_likes:%s", postID.String())
}
