package http

import (
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/entity"
	"github.com/greenloop/greenloop-backend/internal/modules/post/dto"
	"github.com/greenloop/greenloop-backend/internal/modules/post/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/ratelimiter"
	"github.com/greenloop/greenloop-backend/pkg/response"
	pkgvalidator "github.com/greenloop/greenloop-backend/pkg/validator"
)

type PostHandler struct {
	service    service.PostService
	moderation service.ModerationService
}

func NewPostHandler(service service.PostService, moderation service.ModerationService) *PostHandler {
	return &PostHandler{service: service, moderation: moderation}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
			return
		}
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
		return
	}

	var image io.Reader
	var imageName string
	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "could not read uploaded image"))
			return
		}
		defer file.Close()
		image = file
		imageName = fileHeader.Filename
	}

	post, err := h.service.CreatePost(c.Request.Context(), userID, req, image, imageName)
	if err != nil {
		var rlErr *ratelimiter.RateLimitError
		if errors.As(err, &rlErr) {
			c.Header("Retry-After", fmt.Sprintf("%.0f", rlErr.RetryAfter.Seconds()))
		}
		response.Error(c, err)
		return
	}

	response.Created(c, "post submitted for review", post)
}

// GetFeed lists approved posts for everyone. Staff may pass status_id to see
// the moderation queue; regular users may list their own posts regardless of
// status via user_id=me.
func (h *PostHandler) GetFeed(c *gin.Context) {
	var filter dto.PostFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid query parameters"))
		return
	}

	actor := currentUser(c)

	switch userParam := c.Query("user_id"); userParam {
	case "":
	case "me":
		if actor == nil {
			response.Error(c, apperror.ErrUnauthorized)
			return
		}
		filter.UserID = &actor.ID
	default:
		userID, err := uuid.Parse(userParam)
		if err != nil {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid user_id"))
			return
		}
		filter.UserID = &userID
	}

	// Non-staff only ever see approved posts unless asking for their own.
	ownFeed := filter.UserID != nil && actor != nil && *filter.UserID == actor.ID
	if actor == nil || (!actor.IsStaff() && !ownFeed) {
		approved := uint(entity.StatusApproved)
		filter.StatusID = &approved
	}

	feed, err := h.service.GetFeed(c.Request.Context(), filter, pagination.Parse(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "posts fetched", feed)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid post id"))
		return
	}

	post, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Pending and rejected posts are only visible to their author and staff.
	if post.StatusID != entity.StatusApproved {
		actor := currentUser(c)
		if actor == nil || (!actor.IsStaff() && actor.ID != post.UserID) {
			response.Error(c, apperror.Wrap(apperror.ErrNotFound, "post not found"))
			return
		}
	}

	response.OK(c, "post fetched", post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid post id"))
		return
	}

	if err := h.service.DeletePost(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "post deleted", nil)
}

// DecidePost approves or rejects a pending post. Staff only (enforced by
// route middleware).
func (h *PostHandler) DecidePost(c *gin.Context) {
	deciderID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid post id"))
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
			return
		}
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
		return
	}

	post, err := h.moderation.DecidePost(c.Request.Context(), postID, deciderID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "post approved"
	if post.StatusID == entity.StatusRejected {
		msg = "post rejected"
	}
	response.OK(c, msg, post)
}

// currentUser returns the entity.User stashed by the auth middleware, or nil
// for anonymous requests.
func currentUser(c *gin.Context) *entity.User {
	raw, exists := c.Get("current_user")
	if !exists {
		return nil
	}
	user, ok := raw.(*entity.User)
	if !ok {
		return nil
	}
	return user
}
