package store

import (
	"errors"

	"github.com/blues/cfl/internal/model"
)

var (
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists 派生地址上已有记录
	ErrAlreadyExists = errors.New("record already exists")
)

// Store 账本持久层。记录一律按派生地址读写，除只读列表接口外不提供任何枚举
// 能力。Atomically 中的全部写入要么一起生效要么一起丢弃。
type Store interface {
	// Atomically 在单个事务内执行 fn，fn 收到的 Store 绑定该事务
	Atomically(fn func(Store) error) error

	CreateCampaign(c *model.Campaign) error
	Campaign(addr string) (*model.Campaign, error)
	SaveCampaign(c *model.Campaign) error
	DeleteCampaign(addr string) error

	CreateContribution(ct *model.Contribution) error
	Contribution(addr string) (*model.Contribution, error)
	SaveContribution(ct *model.Contribution) error
	// ContributionsByCampaign 只读列表，供查询接口和统计使用，核心状态机不依赖
	ContributionsByCampaign(campaignAddr string, page, pageSize int) ([]model.Contribution, int64, error)
	DeleteContributionsByCampaign(campaignAddr string) error

	Account(addr string) (*model.Account, error)
	SaveAccount(a *model.Account) error

	EscrowAccount(campaignAddr string) (*model.EscrowAccount, error)
	SaveEscrowAccount(e *model.EscrowAccount) error
	DeleteEscrowAccount(campaignAddr string) error

	SaveEvent(ev *model.EventModel) error
}
