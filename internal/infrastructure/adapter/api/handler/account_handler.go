package handler

import (
	"net/http"
	"strconv"

	"github.com/kiarash-asgari/storefront-core/internal/domain/entity"
	domainerr "github.com/kiarash-asgari/storefront-core/internal/domain/error"
	coreport "github.com/kiarash-asgari/storefront-core/internal/domain/port/core"
	"github.com/kiarash-asgari/storefront-core/internal/domain/usecase/ledger"
	"github.com/kiarash-asgari/storefront-core/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	ledger *ledger.Ledger
	logger coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(ldgr *ledger.Ledger, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{
		ledger: ldgr,
		logger: logger,
	}
}

// GetBalance handles the GET /accounts/:ownerId/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	ownerIDParam := c.Param("ownerId")
	ownerID, err := strconv.ParseUint(ownerIDParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrValidation),
			Message: "Invalid owner ID format",
		})
		return
	}

	balanceCents, err := h.ledger.BalanceOf(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		OwnerID: ownerID,
		Balance: entity.FormatCents(balanceCents),
	})
}
