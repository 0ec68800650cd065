package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/greenloop/greenloop-backend/internal/entity"
	notifService "github.com/greenloop/greenloop-backend/internal/modules/notification/service"
	"github.com/greenloop/greenloop-backend/internal/modules/post/dto"
	searchService "github.com/greenloop/greenloop-backend/internal/modules/search/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
)

// ModerationService applies approve/reject decisions to pending posts.
// A decision mutates the post, the author's points and streak, and the
// point ledger as one transaction.
type ModerationService interface {
	DecidePost(ctx context.Context, postID, deciderID uuid.UUID, req dto.DecideRequest) (*dto.PostResponse, error)
}

type moderationService struct {
	db            *gorm.DB
	notifications notifService.NotificationService
	search        searchService.SearchService
}

func NewModerationService(db *gorm.DB, notifications notifService.NotificationService, search searchService.SearchService) ModerationService {
	return &moderationService{
		db:            db,
		notifications: notifications,
		search:        search,
	}
}

func (s *moderationService) DecidePost(ctx context.Context, postID, deciderID uuid.UUID, req dto.DecideRequest) (*dto.PostResponse, error) {
	switch req.StatusID {
	case entity.StatusApproved:
		if req.AwardedPoints <= 0 {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "awarded points must be positive")
		}
	case entity.StatusRejected:
		if req.RejectReason == "" {
			return nil, apperror.Wrap(apperror.ErrInvalidInput, "reject reason is required")
		}
	default:
		return nil, apperror.Wrap(apperror.ErrInvalidInput, "decision must be approve or reject")
	}

	var post entity.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Wrap(apperror.ErrNotFound, "post not found")
			}
			return err
		}

		if post.StatusID != entity.StatusPending {
			return apperror.Wrap(apperror.ErrConflict, "post has already been decided")
		}

		var author entity.User
		if err := tx.First(&author, "id = ?", post.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Wrap(apperror.ErrNotFound, "post author not found")
			}
			return err
		}

		now := time.Now().UTC()

		if req.StatusID == entity.StatusRejected {
			reason := req.RejectReason
			return tx.Model(&post).Updates(map[string]interface{}{
				"status_id":        entity.StatusRejected,
				"admin_id":         deciderID,
				"decided_at":       now,
				"rejection_reason": reason,
			}).Error
		}

		// Approval: streak first, computed from the previous approval's
		// calendar date. Ties on decided_at break by post id.
		lastApproved, err := lastApprovedAt(tx, post.UserID, post.ID)
		if err != nil {
			return err
		}
		newStreak := NextStreak(lastApproved, now, author.Streak)

		if err := tx.Model(&post).Updates(map[string]interface{}{
			"status_id":      entity.StatusApproved,
			"admin_id":       deciderID,
			"decided_at":     now,
			"awarded_points": req.AwardedPoints,
		}).Error; err != nil {
			return err
		}

		// Atomic credit; no read-modify-write on the balance.
		if err := tx.Model(&entity.User{}).
			Where("id = ?", author.ID).
			Updates(map[string]interface{}{
				"current_points": gorm.Expr("current_points + ?", req.AwardedPoints),
				"streak":         newStreak,
			}).Error; err != nil {
			return err
		}

		ledgerRow := entity.PointHistory{
			UserID:          author.ID,
			PostID:          &post.ID,
			AdminID:         &deciderID,
			PointsChange:    req.AwardedPoints,
			TransactionDate: now,
		}
		return tx.Create(&ledgerRow).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Preload("User").First(&post, "id = ?", post.ID).Error; err != nil {
		return nil, err
	}

	s.afterDecision(&post)

	resp := dto.ToPostResponse(&post, 0)
	return &resp, nil
}

// afterDecision runs best-effort side effects outside the transaction:
// notify the author and index approved posts for search.
func (s *moderationService) afterDecision(post *entity.Post) {
	p := *post
	go func() {
		ctx := context.Background()

		if s.notifications != nil {
			msg := fmt.Sprintf("Your post %q was approved: +%d EcoTokens", p.Title, p.AwardedPoints)
			notifType := "post_approved"
			if p.StatusID == entity.StatusRejected {
				reason := ""
				if p.RejectionReason != nil {
					reason = *p.RejectionReason
				}
				msg = fmt.Sprintf("Your post %q was rejected: %s", p.Title, reason)
				notifType = "post_rejected"
			}

			notif := &entity.Notification{
				UserID:     p.UserID,
				ActorID:    derefUUID(p.AdminID),
				EntityID:   p.ID,
				EntityType: "post",
				Type:       notifType,
				Message:    msg,
			}
			if err := s.notifications.CreateNotification(ctx, notif); err != nil {
				log.Warn().Err(err).Str("post_id", p.ID.String()).Msg("failed to create decision notification")
			}
		}

		if s.search != nil && p.StatusID == entity.StatusApproved {
			if err := s.search.IndexPost(&p); err != nil {
				log.Warn().Err(err).Str("post_id", p.ID.String()).Msg("failed to index approved post")
			}
		}
	}()
}

func lastApprovedAt(tx *gorm.DB, userID, excludeID uuid.UUID) (*time.Time, error) {
	var prev entity.Post
	err := tx.
		Where("user_id = ? AND status_id = ? AND id <> ?", userID, entity.StatusApproved, excludeID).
		Order("decided_at desc, id desc").
		First(&prev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prev.DecidedAt, nil
}

func derefUUID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
