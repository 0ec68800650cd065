package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/story/dto"
	storyRepo "github.com/greenloop/greenloop-backend/internal/modules/story/repository"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/storage"
)

type StoryService interface {
	CreateStory(ctx context.Context, userID uuid.UUID, image io.Reader, imageName string) (*dto.StoryResponse, error)
	// ListActive returns all unexpired stories grouped per author, oldest
	// story first within each group.
	ListActive(ctx context.Context, viewerID uuid.UUID) ([]dto.UserStories, error)
	// ViewStory records that viewer saw the story. Views are idempotent and
	// the owner viewing their own story is a no-op.
	ViewStory(ctx context.Context, viewerID, storyID uuid.UUID) error
	DeleteStory(ctx context.Context, actorID, storyID uuid.UUID) error
}

type storyService struct {
	repo    storyRepo.StoryRepository
	storage storage.ImageStorage
}

func NewStoryService(repo storyRepo.StoryRepository, imgStorage storage.ImageStorage) StoryService {
	return &storyService{
		repo:    repo,
		storage: imgStorage,
	}
}

func (s *storyService) CreateStory(ctx context.Context, userID uuid.UUID, image io.Reader, imageName string) (*dto.StoryResponse, error) {
	if image == nil {
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "story image is required")
	}
	if s.storage == nil {
		return nil, apperror.Wrap(apperror.ErrInternal, "image storage is not configured")
	}

	url, err := s.storage.UploadImage(ctx, image, "stories", imageName)
	if err != nil {
		return nil, fmt.Errorf("failed to upload story image: %w", err)
	}

	story := &entity.Story{
		UserID:   userID,
		ImageURL: url,
	}
	if err := s.repo.Create(ctx, story); err != nil {
		return nil, err
	}

	created, err := s.repo.FindByID(ctx, story.ID)
	if err != nil {
		return nil, err
	}

	resp := dto.ToStoryResponse(created, 0, false)
	return &resp, nil
}

func (s *storyService) ListActive(ctx context.Context, viewerID uuid.UUID) ([]dto.UserStories, error) {
	stories, err := s.repo.ListActive(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(stories))
	for _, story := range stories {
		ids = append(ids, story.ID)
	}

	counts, err := s.repo.ViewCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	viewed, err := s.repo.ViewedByUser(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	// Group per author, preserving story order within each group.
	grouped := make(map[uuid.UUID]*dto.UserStories)
	order := make([]uuid.UUID, 0)
	for i := range stories {
		story := &stories[i]
		group, ok := grouped[story.UserID]
		if !ok {
			group = &dto.UserStories{
				UserID:    story.UserID,
				Username:  story.User.Username,
				AvatarURL: story.User.AvatarURL,
			}
			grouped[story.UserID] = group
			order = append(order, story.UserID)
		}
		group.Stories = append(group.Stories, dto.ToStoryResponse(story, counts[story.ID], viewed[story.ID]))
	}

	result := make([]dto.UserStories, 0, len(order))
	for _, userID := range order {
		result = append(result, *grouped[userID])
	}
	return result, nil
}

func (s *storyService) ViewStory(ctx context.Context, viewerID, storyID uuid.UUID) error {
	story, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "story not found")
		}
		return err
	}

	if story.ExpiresAt.Before(time.Now().UTC()) {
		return apperror.Wrap(apperror.ErrNotFound, "story not found")
	}

	// Owners do not count as viewers.
	if story.UserID == viewerID {
		return nil
	}

	return s.repo.RecordView(ctx, storyID, viewerID)
}

func (s *storyService) DeleteStory(ctx context.Context, actorID, storyID uuid.UUID) error {
	story, err := s.repo.FindByID(ctx, storyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "story not found")
		}
		return err
	}

	if story.UserID != actorID {
		return apperror.Wrap(apperror.ErrForbidden, "you can only delete your own stories")
	}

	if err := s.repo.Delete(ctx, storyID); err != nil {
		return err
	}

	if s.storage != nil && s.storage.IsRemoteURL(story.ImageURL) {
		if err := s.storage.DeleteImage(ctx, story.ImageURL); err != nil {
			log.Warn().Err(err).Str("story_id", storyID.String()).Msg("failed to delete story image")
		}
	}
	return nil
}
