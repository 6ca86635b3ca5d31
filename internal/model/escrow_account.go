package model

import (
	"time"
)

// EscrowAccount 托管账户，按活动记一笔托管余额。余额恒等于该活动所有生效捐赠
// 的金额之和；一旦发现不一致即冻结，后续资金操作全部拒绝。
type EscrowAccount struct {
	CampaignAddress string    `json:"campaign_address" gorm:"primaryKey"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Balance float64 `json:"balance" gorm:"default:0"`
	Frozen  bool    `json:"frozen" gorm:"default:false"`
}

// TableName 自定义表名
func (EscrowAccount) TableName() string {
	return "escrow_account"
}
