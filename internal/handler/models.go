package handler

import (
	"time"

	"github.com/blues/cfl/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Authority    string    `json:"authority" binding:"required"`
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	OrgName      string    `json:"orgName"`
	ProjectLink  string    `json:"projectLink"`
	ProjectImage string    `json:"projectImage"`
	Goal         float64   `json:"goal" binding:"required"`
	StartAt      time.Time `json:"startAt" binding:"required"`
	EndAt        time.Time `json:"endAt" binding:"required"`
}

// ActorRequest 只携带操作者身份的请求
type ActorRequest struct {
	Actor string `json:"actor" binding:"required"`
}

// DonateRequest 捐赠请求
type DonateRequest struct {
	Donor  string  `json:"donor" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// UpdateMetadataRequest 更新活动元数据请求，缺省字段保持不变
type UpdateMetadataRequest struct {
	Actor        string  `json:"actor" binding:"required"`
	Description  *string `json:"description"`
	OrgName      *string `json:"orgName"`
	ProjectLink  *string `json:"projectLink"`
	ProjectImage *string `json:"projectImage"`
}

// ExtendCampaignRequest 活动延期请求
type ExtendCampaignRequest struct {
	Actor    string    `json:"actor" binding:"required"`
	NewEndAt time.Time `json:"newEndAt" binding:"required"`
}

// DepositRequest 账户充值请求
type DepositRequest struct {
	Address string  `json:"address" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	Address      string    `json:"address"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	OrgName      string    `json:"orgName"`
	ProjectLink  string    `json:"projectLink"`
	ProjectImage string    `json:"projectImage"`
	Authority    string    `json:"authority"`
	Goal         float64   `json:"goal"`
	TotalDonated float64   `json:"totalDonated"`
	Status       string    `json:"status"`
	Claimed      bool      `json:"claimed"`
	StartAt      time.Time `json:"startAt"`
	EndAt        time.Time `json:"endAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ContributionResponse 捐赠响应模型
type ContributionResponse struct {
	Address         string    `json:"address"`
	CampaignAddress string    `json:"campaignAddress"`
	Donor           string    `json:"donor"`
	Amount          float64   `json:"amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AccountResponse 账户响应模型
type AccountResponse struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

// newCampaignResponse 构造活动响应，状态按给定时间折算
func newCampaignResponse(c *model.Campaign, now time.Time) CampaignResponse {
	return CampaignResponse{
		Address:      c.Address,
		Title:        c.Title,
		Description:  c.Description,
		OrgName:      c.OrgName,
		ProjectLink:  c.ProjectLink,
		ProjectImage: c.ProjectImage,
		Authority:    c.Authority,
		Goal:         c.Goal,
		TotalDonated: c.TotalDonated,
		Status:       string(c.EffectiveStatus(now)),
		Claimed:      c.Claimed,
		StartAt:      c.StartAt,
		EndAt:        c.EndAt,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

// newContributionResponse 构造捐赠响应，claimed 状态由所属活动折算
func newContributionResponse(ct *model.Contribution, campaign *model.Campaign) ContributionResponse {
	return ContributionResponse{
		Address:         ct.Address,
		CampaignAddress: ct.CampaignAddress,
		Donor:           ct.Donor,
		Amount:          ct.Amount,
		Status:          string(ct.EffectiveStatus(campaign)),
		CreatedAt:       ct.CreatedAt,
		UpdatedAt:       ct.UpdatedAt,
	}
}
