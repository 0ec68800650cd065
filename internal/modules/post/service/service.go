package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	likeRepo "github.com/greenloop/greenloop-backend/internal/modules/like/repository"
	"github.com/greenloop/greenloop-backend/internal/modules/post/dto"
	postRepo "github.com/greenloop/greenloop-backend/internal/modules/post/repository"
	searchService "github.com/greenloop/greenloop-backend/internal/modules/search/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/ratelimiter"
	"github.com/greenloop/greenloop-backend/pkg/storage"
)

const createPostAction = "create_post"

var defaultPostCooldown = 1 * time.Minute

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest, image io.Reader, imageName string) (*dto.PostResponse, error)
	GetFeed(ctx context.Context, filter dto.PostFilter, p pagination.Params) (*dto.PaginatedPostResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, actor *entity.User, postID uuid.UUID) error
}

type postService struct {
	repo        postRepo.PostRepository
	likeRepo    likeRepo.LikeRepository
	storage     storage.ImageStorage
	redisClient *redis.Client
	search      searchService.SearchService
	cooldown    time.Duration
}

func NewPostService(repo postRepo.PostRepository, likeRepo likeRepo.LikeRepository, imgStorage storage.ImageStorage, redisClient *redis.Client, search searchService.SearchService) PostService {
	return &postService{
		repo:        repo,
		likeRepo:    likeRepo,
		storage:     imgStorage,
		redisClient: redisClient,
		search:      search,
		cooldown:    ratelimiter.DurationFromEnv("POST_CREATE_COOLDOWN", defaultPostCooldown),
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req dto.CreatePostRequest, image io.Reader, imageName string) (*dto.PostResponse, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "title and content must not be empty")
	}

	allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, userID, createPostAction, s.cooldown)
	if err != nil {
		log.Warn().Err(err).Msg("rate limit check failed, allowing request")
	} else if !allowed {
		retryAfter, _ := ratelimiter.TTL(ctx, s.redisClient, userID, createPostAction)
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can submit another post in %s", retryAfter.Round(time.Second)),
			RetryAfter: retryAfter,
		}
	}

	post := &entity.Post{
		UserID:  userID,
		Title:   title,
		Content: content,
		Tag:     strings.ToLower(strings.TrimSpace(req.Tag)),
	}

	if image != nil && s.storage != nil {
		url, err := s.storage.UploadImage(ctx, image, "posts", imageName)
		if err != nil {
			s.releaseCooldown(ctx, userID)
			return nil, fmt.Errorf("failed to upload post image: %w", err)
		}
		post.ImageURL = &url
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.releaseCooldown(ctx, userID)
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.ToPostResponse(created, 0)
	return &resp, nil
}

func (s *postService) GetFeed(ctx context.Context, filter dto.PostFilter, p pagination.Params) (*dto.PaginatedPostResponse, error) {
	posts, total, err := s.repo.List(ctx, filter, p.Offset, p.Limit)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}
	counts, err := s.likeRepo.CountsByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.PaginatedPostResponse{
		Posts: make([]dto.PostResponse, 0, len(posts)),
		Total: total,
		Page:  p.Page,
		Limit: p.Limit,
	}
	for i := range posts {
		resp.Posts = append(resp.Posts, dto.ToPostResponse(&posts[i], counts[posts[i].ID]))
	}
	return resp, nil
}

func (s *postService) GetByID(ctx context.Context, id uuid.UUID) (*dto.PostResponse, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return nil, err
	}

	count, err := s.likeRepo.CountByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.ToPostResponse(post, count)
	return &resp, nil
}

// DeletePost removes a post. Authors may delete their own posts while
// still pending; staff may delete any post.
func (s *postService) DeletePost(ctx context.Context, actor *entity.User, postID uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "post not found")
		}
		return err
	}

	if !actor.IsStaff() {
		if post.UserID != actor.ID {
			return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own posts")
		}
		if post.StatusID != entity.StatusPending {
			return apperror.Wrap(apperror.ErrConflict, "decided posts cannot be deleted")
		}
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}

	// Cleanup outside the happy path is best effort.
	if post.ImageURL != nil && s.storage != nil && s.storage.IsRemoteURL(*post.ImageURL) {
		if err := s.storage.DeleteImage(ctx, *post.ImageURL); err != nil {
			log.Warn().Err(err).Str("post_id", postID.String()).Msg("failed to delete post image")
		}
	}
	if s.search != nil && post.StatusID == entity.StatusApproved {
		if err := s.search.DeletePost(postID.String()); err != nil {
			log.Warn().Err(err).Str("post_id", postID.String()).Msg("failed to remove post from search index")
		}
	}

	return nil
}

func (s *postService) releaseCooldown(ctx context.Context, userID uuid.UUID) {
	if err := ratelimiter.Clear(ctx, s.redisClient, userID, createPostAction); err != nil {
		log.Warn().Err(err).Msg("failed to release post cooldown")
	}
}
