package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/modules/admin/dto"
	"github.com/greenloop/greenloop-backend/internal/modules/admin/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/response"
	pkgvalidator "github.com/greenloop/greenloop-backend/pkg/validator"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	users, total, err := h.service.ListUsers(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "users fetched", gin.H{
		"users": users,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid user id"))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
			return
		}
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
		return
	}

	user, err := h.service.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "user updated", user)
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid user id"))
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), actorID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "user deleted", nil)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "stats fetched", stats)
}
