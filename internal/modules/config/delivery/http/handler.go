package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/greenloop/greenloop-backend/internal/modules/config"
	"github.com/greenloop/greenloop-backend/internal/modules/config/service"
	"github.com/greenloop/greenloop-backend/pkg/apperror"
	"github.com/greenloop/greenloop-backend/pkg/response"
	pkgvalidator "github.com/greenloop/greenloop-backend/pkg/validator"
)

type ConfigHandler struct {
	service service.ConfigService
}

func NewConfigHandler(service service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

type updateGiftPriceRequest struct {
	ItemID string `json:"item_id" binding:"required,uuid"`
	Price  *int   `json:"price"`
}

type updateMilestoneRequest struct {
	Threshold string            `json:"threshold" binding:"required,max=10"`
	Milestone *config.Milestone `json:"milestone"`
}

type updateRewardRequest struct {
	Tag    string         `json:"tag" binding:"required,max=50"`
	Reward *config.Reward `json:"reward"`
}

// GetConfig returns all configuration documents merged with defaults.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "configuration fetched", cfg)
}

func (h *ConfigHandler) UpdateGiftPrice(c *gin.Context) {
	var req updateGiftPriceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateGiftPrice(c.Request.Context(), req.ItemID, req.Price); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "gift price updated", nil)
}

func (h *ConfigHandler) UpdateStreakMilestone(c *gin.Context) {
	var req updateMilestoneRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStreakMilestone(c.Request.Context(), req.Threshold, req.Milestone); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "streak milestone updated", nil)
}

func (h *ConfigHandler) UpdateActionReward(c *gin.Context) {
	var req updateRewardRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateActionReward(c.Request.Context(), req.Tag, req.Reward); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "action reward updated", nil)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, pkgvalidator.FormatValidationError(verrs)))
			return false
		}
		response.Error(c, apperror.Wrap(apperror.ErrInvalidInput, "invalid request body"))
		return false
	}
	return true
}
