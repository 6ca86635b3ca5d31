package model

import (
	"time"
)

// Contribution 捐赠记录，记录地址由 (捐赠人, 活动地址) 派生，每人每活动一条
type Contribution struct {
	Address   string    `json:"address" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignAddress string  `json:"campaign_address" gorm:"not null;index"`
	Donor           string  `json:"donor" gorm:"not null"`
	Amount          float64 `json:"amount" gorm:"not null"`

	// 状态，claimed 不落库，由所属活动的 Claimed 标志折算
	Status ContributionStatus `json:"status" gorm:"default:'active'"`
}

// ContributionStatus 捐赠状态
type ContributionStatus string

const (
	ContributionStatusActive    ContributionStatus = "active"    // 生效中
	ContributionStatusCancelled ContributionStatus = "cancelled" // 已取消/已退款
	ContributionStatusClaimed   ContributionStatus = "claimed"   // 已被发起人领取
)

// TableName 自定义表名
func (Contribution) TableName() string {
	return "contribution"
}

// EffectiveStatus 折算后的捐赠状态。活动领取后，所有仍然生效的捐赠视为已领取，
// 避免领取时按捐赠人数量逐条改写记录。
func (ct *Contribution) EffectiveStatus(campaign *Campaign) ContributionStatus {
	if ct.Status == ContributionStatusActive && campaign != nil && campaign.Claimed {
		return ContributionStatusClaimed
	}
	return ct.Status
}
