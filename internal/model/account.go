package model

import (
	"time"
)

// Account 自由余额账户。账户体系与签名属于外部系统，这里只保留托管记账所需的
// 最小余额视图。
type Account struct {
	Address   string    `json:"address" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Balance float64 `json:"balance" gorm:"default:0"`
}

// TableName 自定义表名
func (Account) TableName() string {
	return "account"
}
