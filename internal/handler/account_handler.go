package handler

import (
	"errors"
	"net/http"

	"github.com/blues/cfl/internal/address"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/store"
	"github.com/gin-gonic/gin"
)

// AccountHandler 自由余额账户处理器。账户体系属于外部系统，这里只提供托管
// 记账所需的入金与查询。
type AccountHandler struct {
	ledger *ledger.Ledger
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(l *ledger.Ledger) *AccountHandler {
	return &AccountHandler{ledger: l}
}

// Deposit 账户充值
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.ledger.Deposit(req.Address, req.Amount)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "deposit accepted", AccountResponse{
		Address: account.Address,
		Balance: account.Balance,
	})
}

// GetAccount 查询账户余额
func (h *AccountHandler) GetAccount(c *gin.Context) {
	normalized, err := address.Normalize(c.Param("addr"))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	account, err := h.ledger.Store().Account(normalized)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// 没有记录等同于零余额
			SuccessResponse(c, http.StatusOK, "ok", AccountResponse{Address: normalized, Balance: 0})
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", AccountResponse{
		Address: account.Address,
		Balance: account.Balance,
	})
}
