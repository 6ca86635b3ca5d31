package model

import (
	"time"
)

// EventModel 账本事件记录，每次成功的状态迁移落一条
type EventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CampaignAddress string `json:"campaign_address" gorm:"not null;index"`
	EventType       string `json:"event_type" gorm:"not null"`
	Data            string `json:"data" gorm:"type:text"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
