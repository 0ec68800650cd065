package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/modules/comment/dto"
	"github.com/greenloop/greenloop-backend/internal/modules/comment/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/response"
	pkgvalidator "github.com/greenloop/greenloop-backend/pkg/validator"
)

type CommentHandler struct {
	service service.CommentService
}

func NewCommentHandler(service service.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid post id"))
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
			return
		}
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
		return
	}

	comment, err := h.service.CreateComment(c.Request.Context(), userID, postID, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.ToCommentResponse(comment)
	response.Created(c, "comment added", resp)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid post id"))
		return
	}

	p := pagination.Parse(c)
	comments, total, err := h.service.ListByPost(c.Request.Context(), postID, p)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := dto.PaginatedCommentResponse{
		Comments: make([]dto.CommentResponse, 0, len(comments)),
		Total:    total,
		Page:     p.Page,
		Limit:    p.Limit,
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, dto.ToCommentResponse(&comments[i]))
	}

	response.OK(c, "comments fetched", resp)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid comment id"))
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "comment deleted", nil)
}
