package handler

import (
	"errors"
	"net/http"

	"github.com/blues/cfl/internal/address"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/model"
	"github.com/blues/cfl/internal/store"
	"github.com/gin-gonic/gin"
)

// DonationHandler 捐赠处理器
type DonationHandler struct {
	ledger *ledger.Ledger
}

// NewDonationHandler 创建捐赠处理器
func NewDonationHandler(l *ledger.Ledger) *DonationHandler {
	return &DonationHandler{ledger: l}
}

// Donate 向活动捐赠
func (h *DonationHandler) Donate(c *gin.Context) {
	var req DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	contribution, err := h.ledger.Donate(c.Param("addr"), req.Donor, req.Amount)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	campaign, err := h.ledger.Store().Campaign(contribution.CampaignAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "donation received", newContributionResponse(contribution, campaign))
}

// GetContribution 获取捐赠记录
func (h *DonationHandler) GetContribution(c *gin.Context) {
	contribution, campaign, ok := h.lookup(c)
	if !ok {
		return
	}
	SuccessResponse(c, http.StatusOK, "ok", newContributionResponse(contribution, campaign))
}

// CancelDonation 捐赠人撤回捐赠
func (h *DonationHandler) CancelDonation(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	contributionAddr, err := address.Contribution(c.Param("donor"), c.Param("addr"))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	contribution, err := h.ledger.CancelDonation(c.Param("addr"), contributionAddr, req.Actor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	campaign, err := h.ledger.Store().Campaign(contribution.CampaignAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "donation cancelled", newContributionResponse(contribution, campaign))
}

// RefundDonation 窗口结束未达标后退款，任何人都可触发
func (h *DonationHandler) RefundDonation(c *gin.Context) {
	contributionAddr, err := address.Contribution(c.Param("donor"), c.Param("addr"))
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	contribution, err := h.ledger.RefundDonation(c.Param("addr"), contributionAddr)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	campaign, err := h.ledger.Store().Campaign(contribution.CampaignAddress)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "donation refunded", newContributionResponse(contribution, campaign))
}

// lookup 按路径参数定位捐赠记录及其所属活动
func (h *DonationHandler) lookup(c *gin.Context) (*model.Contribution, *model.Campaign, bool) {
	campaignRecord, err := h.ledger.Store().Campaign(c.Param("addr"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "campaign not found")
			return nil, nil, false
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}

	contributionAddr, err := address.Contribution(c.Param("donor"), campaignRecord.Address)
	if err != nil {
		LedgerErrorResponse(c, err)
		return nil, nil, false
	}

	contributionRecord, err := h.ledger.Store().Contribution(contributionAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "contribution not found")
			return nil, nil, false
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return nil, nil, false
	}

	return contributionRecord, campaignRecord, true
}
