package event

import (
	"time"
)

// 账本事件类型，每个成功的状态迁移对应一种
const (
	TypeCampaignCreated         = "CampaignCreated"
	TypeCampaignCancelled       = "CampaignCancelled"
	TypeDonationReceived        = "DonationReceived"
	TypeDonationCancelled       = "DonationCancelled"
	TypeDonationsClaimed        = "DonationsClaimed"
	TypeCampaignMetadataUpdated = "CampaignMetadataUpdated"
	TypeDonationRefunded        = "DonationRefunded"
	TypeCampaignExtended        = "CampaignExtended"
	TypeCampaignClosed          = "CampaignClosed"
)

// Event 一次成功状态迁移的事件，链下索引服务消费
type Event struct {
	Type       string      `json:"type"`
	Campaign   string      `json:"campaign"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// CampaignCreatedData 活动创建事件数据
type CampaignCreatedData struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Authority   string    `json:"authority"`
	Goal        float64   `json:"goal"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
}

// CampaignCancelledData 活动取消事件数据
type CampaignCancelledData struct {
	Authority string `json:"authority"`
}

// DonationReceivedData 收到捐赠事件数据
type DonationReceivedData struct {
	Contribution string  `json:"contribution"`
	Donor        string  `json:"donor"`
	Amount       float64 `json:"amount"`
	TotalDonated float64 `json:"total_donated"`
	Completed    bool    `json:"completed"`
}

// DonationCancelledData 捐赠取消事件数据
type DonationCancelledData struct {
	Contribution string  `json:"contribution"`
	Donor        string  `json:"donor"`
	Amount       float64 `json:"amount"`
	TotalDonated float64 `json:"total_donated"`
}

// DonationsClaimedData 捐赠领取事件数据
type DonationsClaimedData struct {
	Authority string  `json:"authority"`
	Amount    float64 `json:"amount"`
}

// CampaignMetadataUpdatedData 活动元数据更新事件数据
type CampaignMetadataUpdatedData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OrgName     string `json:"org_name"`
}

// DonationRefundedData 捐赠退款事件数据
type DonationRefundedData struct {
	Contribution string  `json:"contribution"`
	Donor        string  `json:"donor"`
	Amount       float64 `json:"amount"`
	TotalDonated float64 `json:"total_donated"`
}

// CampaignExtendedData 活动延期事件数据
type CampaignExtendedData struct {
	NewEndAt time.Time `json:"new_end_at"`
}

// CampaignClosedData 活动关闭事件数据
type CampaignClosedData struct {
	Authority string `json:"authority"`
}

// Emitter 事件出口。账本在事务提交后调用，消费侧不影响状态机结果。
type Emitter interface {
	Emit(ev Event)
}

// NopEmitter 丢弃所有事件，测试场景使用
type NopEmitter struct{}

// Emit 实现 Emitter 接口
func (NopEmitter) Emit(Event) {}
