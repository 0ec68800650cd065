package http

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/greenloop/greenloop-backend/internal/modules/item/dto"
	"github.com/greenloop/greenloop-backend/internal/modules/item/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/response"
	pkgvalidator "github.com/greenloop/greenloop-backend/pkg/validator"
)

type ItemHandler struct {
	service service.ItemService
}

func NewItemHandler(service service.ItemService) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	image, imageName := optionalImage(c)
	item, err := h.service.CreateItem(c.Request.Context(), req, image, imageName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "item created", item)
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid item id"))
		return
	}

	item, err := h.service.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "item fetched", item)
}

func (h *ItemHandler) ListItems(c *gin.Context) {
	p := pagination.Parse(c)
	items, total, err := h.service.ListItems(c.Request.Context(), c.Query("tag"), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "items fetched", gin.H{
		"items": items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	})
}

func (h *ItemHandler) UpdateItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid item id"))
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	image, imageName := optionalImage(c)
	item, err := h.service.UpdateItem(c.Request.Context(), id, req, image, imageName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "item updated", item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid item id"))
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "item deleted", nil)
}

func (h *ItemHandler) RedeemItem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid item id"))
		return
	}

	redemption, err := h.service.RedeemItem(c.Request.Context(), userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "item redeemed", redemption)
}

func (h *ItemHandler) MyRedemptions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.service.ListRedemptions(c.Request.Context(), &userID, pagination.Parse(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "redemptions fetched", list)
}

// AllRedemptions lists every redemption, for the admin fulfilment view.
func (h *ItemHandler) AllRedemptions(c *gin.Context) {
	list, err := h.service.ListRedemptions(c.Request.Context(), nil, pagination.Parse(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "redemptions fetched", list)
}

func (h *ItemHandler) MarkShipped(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid redemption id"))
		return
	}

	if err := h.service.MarkShipped(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "redemption marked as shipped", nil)
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
		return
	}
	response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
}

func optionalImage(c *gin.Context) (io.Reader, string) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return nil, ""
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, ""
	}
	// gin closes multipart form files when the request ends.
	return file, fileHeader.Filename
}
