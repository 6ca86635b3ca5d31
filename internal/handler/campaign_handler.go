package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/store"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 活动处理器
type CampaignHandler struct {
	ledger *ledger.Ledger
}

// NewCampaignHandler 创建活动处理器
func NewCampaignHandler(l *ledger.Ledger) *CampaignHandler {
	return &CampaignHandler{ledger: l}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.CreateCampaign(ledger.CreateCampaignInput{
		Authority:    req.Authority,
		Title:        req.Title,
		Description:  req.Description,
		OrgName:      req.OrgName,
		ProjectLink:  req.ProjectLink,
		ProjectImage: req.ProjectImage,
		Goal:         req.Goal,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	})
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "campaign created", newCampaignResponse(campaign, h.ledger.Now()))
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.ledger.Store().Campaign(c.Param("addr"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "campaign not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "ok", newCampaignResponse(campaign, h.ledger.Now()))
}

// UpdateCampaign 更新活动元数据
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	var req UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.UpdateCampaignMetadata(c.Param("addr"), req.Actor, ledger.UpdateMetadataInput{
		Description:  req.Description,
		OrgName:      req.OrgName,
		ProjectLink:  req.ProjectLink,
		ProjectImage: req.ProjectImage,
	})
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign updated", newCampaignResponse(campaign, h.ledger.Now()))
}

// CancelCampaign 取消未开始的活动
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.CancelCampaign(c.Param("addr"), req.Actor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign cancelled", newCampaignResponse(campaign, h.ledger.Now()))
}

// ExtendCampaign 延长活动窗口
func (h *CampaignHandler) ExtendCampaign(c *gin.Context) {
	var req ExtendCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.ExtendCampaign(c.Param("addr"), req.Actor, req.NewEndAt)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign extended", newCampaignResponse(campaign, h.ledger.Now()))
}

// CloseCampaign 提前关闭活动
func (h *CampaignHandler) CloseCampaign(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.CloseCampaign(c.Param("addr"), req.Actor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign closed", newCampaignResponse(campaign, h.ledger.Now()))
}

// ClaimDonations 领取达标活动的托管资金
func (h *CampaignHandler) ClaimDonations(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.ledger.ClaimDonations(c.Param("addr"), req.Actor)
	if err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "donations claimed", newCampaignResponse(campaign, h.ledger.Now()))
}

// DestroyCampaign 销毁已结清的活动
func (h *CampaignHandler) DestroyCampaign(c *gin.Context) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.ledger.DestroyCampaign(c.Param("addr"), req.Actor); err != nil {
		LedgerErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "campaign destroyed", nil)
}

// GetCampaignContributions 获取活动捐赠记录
func (h *CampaignHandler) GetCampaignContributions(c *gin.Context) {
	campaignAddr := c.Param("addr")
	campaign, err := h.ledger.Store().Campaign(campaignAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "campaign not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	contributions, total, err := h.ledger.Store().ContributionsByCampaign(campaignAddr, page, pageSize)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	responses := make([]ContributionResponse, 0, len(contributions))
	for i := range contributions {
		responses = append(responses, newContributionResponse(&contributions[i], campaign))
	}

	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"contributions": responses,
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: totalPage,
		},
	})
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	campaignAddr := c.Param("addr")
	campaign, err := h.ledger.Store().Campaign(campaignAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ErrorResponse(c, http.StatusNotFound, "campaign not found")
			return
		}
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	_, total, err := h.ledger.Store().ContributionsByCampaign(campaignAddr, 1, 1)
	if err != nil {
		ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	now := h.ledger.Now()

	// 计算完成百分比
	completionPercentage := float64(0)
	if campaign.Goal > 0 {
		completionPercentage = campaign.TotalDonated / campaign.Goal * 100
	}

	// 计算剩余时间
	remainingTime := time.Duration(0)
	if campaign.EffectiveStatus(now) == "active" && now.Before(campaign.EndAt) {
		remainingTime = campaign.EndAt.Sub(now)
	}

	SuccessResponse(c, http.StatusOK, "ok", gin.H{
		"campaign_address":      campaign.Address,
		"total_donated":         campaign.TotalDonated,
		"goal":                  campaign.Goal,
		"completion_percentage": completionPercentage,
		"contribution_count":    total,
		"remaining_time":        remainingTime.String(),
		"status":                string(campaign.EffectiveStatus(now)),
		"claimed":               campaign.Claimed,
	})
}
