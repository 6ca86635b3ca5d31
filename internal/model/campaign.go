package model

import (
	"time"
)

// Campaign 众筹活动模型，记录地址由 (发起人, 标题) 派生，全局唯一
type Campaign struct {
	Address   string    `json:"address" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title        string `json:"title" gorm:"not null"`
	Description  string `json:"description" gorm:"type:text"`
	OrgName      string `json:"org_name"`
	ProjectLink  string `json:"project_link"`
	ProjectImage string `json:"project_image"`

	// 发起人信息，创建后不可变更
	Authority string `json:"authority" gorm:"not null;index"`

	// 众筹信息
	Goal         float64 `json:"goal" gorm:"not null"`
	TotalDonated float64 `json:"total_donated" gorm:"default:0"`

	// 时间窗口
	StartAt time.Time `json:"start_at" gorm:"not null"`
	EndAt   time.Time `json:"end_at" gorm:"not null"`

	// 状态
	Status  CampaignStatus `json:"status" gorm:"default:'pending'"`
	Claimed bool           `json:"claimed" gorm:"default:false"`
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusPending   CampaignStatus = "pending"   // 待开始
	CampaignStatusActive    CampaignStatus = "active"    // 进行中
	CampaignStatusCompleted CampaignStatus = "completed" // 已达标
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
	CampaignStatusClosed    CampaignStatus = "closed"    // 已关闭
)

// TableName 自定义表名
func (Campaign) TableName() string {
	return "campaign"
}

// EffectiveStatus 按给定时间折算后的状态。pending 活动一旦进入捐赠窗口即视为
// active；窗口过期本身不产生新状态，达标与否由 Status 字段记录。
func (c *Campaign) EffectiveStatus(now time.Time) CampaignStatus {
	if c.Status == CampaignStatusPending && !now.Before(c.StartAt) {
		return CampaignStatusActive
	}
	return c.Status
}

// InDonationWindow 当前时间是否落在捐赠窗口 [start_at, end_at) 内
func (c *Campaign) InDonationWindow(now time.Time) bool {
	return !now.Before(c.StartAt) && now.Before(c.EndAt)
}

// Expired 捐赠窗口是否已经结束
func (c *Campaign) Expired(now time.Time) bool {
	return !now.Before(c.EndAt)
}
