package handler

import (
	"errors"
	"net/http"

	"github.com/blues/cfl/internal/address"
	"github.com/blues/cfl/internal/escrow"
	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// LedgerErrorResponse 按账本错误分类映射 HTTP 状态码
func LedgerErrorResponse(c *gin.Context, err error) {
	c.JSON(statusForError(err), Response{
		Success: false,
		Message: err.Error(),
		Data:    nil,
	})
}

// statusForError 账本错误分类：校验 400、授权 403、缺记录 404、状态冲突 409、
// 记账损坏 500
func statusForError(err error) int {
	switch {
	case errors.Is(err, ledger.ErrStartTimeNotFuture),
		errors.Is(err, ledger.ErrEndBeforeStart),
		errors.Is(err, ledger.ErrNonPositiveGoal),
		errors.Is(err, ledger.ErrNonPositiveAmount),
		errors.Is(err, address.ErrInvalidAddress),
		errors.Is(err, address.ErrEmptyTitle),
		errors.Is(err, escrow.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotAuthority),
		errors.Is(err, ledger.ErrNotDonor):
		return http.StatusForbidden
	case errors.Is(err, ledger.ErrCampaignNotFound),
		errors.Is(err, ledger.ErrContributionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateCampaign),
		errors.Is(err, ledger.ErrContributionAlreadyExists),
		errors.Is(err, ledger.ErrAlreadyStarted),
		errors.Is(err, ledger.ErrCampaignNotStarted),
		errors.Is(err, ledger.ErrCampaignOver),
		errors.Is(err, ledger.ErrCampaignNotOver),
		errors.Is(err, ledger.ErrCampaignNotActive),
		errors.Is(err, ledger.ErrDonationCompleted),
		errors.Is(err, ledger.ErrCampaignCompleted),
		errors.Is(err, ledger.ErrAlreadyCancelled),
		errors.Is(err, ledger.ErrNoCompletedDonations),
		errors.Is(err, ledger.ErrAlreadyClaimed),
		errors.Is(err, ledger.ErrInvalidExtension),
		errors.Is(err, ledger.ErrCampaignNotTerminal),
		errors.Is(err, ledger.ErrEscrowNotDrained):
		return http.StatusConflict
	default:
		// escrow.ErrUnderfunded / escrow.ErrFrozen 属于内部记账缺陷
		return http.StatusInternalServerError
	}
}
