package http

import (
	"github.com/gin-gonic/gin"

	"github.com/greenloop/greenloop-backend/internal/modules/wallet/service"
	"github.com/greenloop/greenloop-backend/pkg/pagination"
	"github.com/greenloop/greenloop-backend/pkg/response"
)

type WalletHandler struct {
	service service.WalletService
}

func NewWalletHandler(service service.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// GetMyWallet returns the caller's balance, streak and ledger history.
func (h *WalletHandler) GetMyWallet(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.service.GetWallet(c.Request.Context(), userID, pagination.Parse(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "wallet fetched", wallet)
}
