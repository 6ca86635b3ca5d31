package store

import (
	"errors"

	"github.com/blues/cfl/internal/model"
	"gorm.io/gorm"
)

// GormStore 基于 gorm 的持久层实现
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 gorm 持久层
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically 在数据库事务内执行 fn
func (s *GormStore) Atomically(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// CreateCampaign 创建活动记录，地址已占用时返回 ErrAlreadyExists
func (s *GormStore) CreateCampaign(c *model.Campaign) error {
	var existing model.Campaign
	err := s.db.First(&existing, "address = ?", c.Address).Error
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(c).Error
}

// Campaign 按地址读取活动记录
func (s *GormStore) Campaign(addr string) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := s.db.First(&campaign, "address = ?", addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// SaveCampaign 保存活动记录
func (s *GormStore) SaveCampaign(c *model.Campaign) error {
	return s.db.Save(c).Error
}

// DeleteCampaign 删除活动记录
func (s *GormStore) DeleteCampaign(addr string) error {
	return s.db.Delete(&model.Campaign{}, "address = ?", addr).Error
}

// CreateContribution 创建捐赠记录，地址已占用时返回 ErrAlreadyExists
func (s *GormStore) CreateContribution(ct *model.Contribution) error {
	var existing model.Contribution
	err := s.db.First(&existing, "address = ?", ct.Address).Error
	if err == nil {
		return ErrAlreadyExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(ct).Error
}

// Contribution 按地址读取捐赠记录
func (s *GormStore) Contribution(addr string) (*model.Contribution, error) {
	var contribution model.Contribution
	if err := s.db.First(&contribution, "address = ?", addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &contribution, nil
}

// SaveContribution 保存捐赠记录
func (s *GormStore) SaveContribution(ct *model.Contribution) error {
	return s.db.Save(ct).Error
}

// ContributionsByCampaign 分页获取活动的捐赠记录
func (s *GormStore) ContributionsByCampaign(campaignAddr string, page, pageSize int) ([]model.Contribution, int64, error) {
	var contributions []model.Contribution
	var total int64

	// 获取总数
	if err := s.db.Model(&model.Contribution{}).
		Where("campaign_address = ?", campaignAddr).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取数据
	offset := (page - 1) * pageSize
	if err := s.db.Where("campaign_address = ?", campaignAddr).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&contributions).Error; err != nil {
		return nil, 0, err
	}

	return contributions, total, nil
}

// DeleteContributionsByCampaign 删除活动的全部捐赠记录，仅供销毁活动时回收存储
func (s *GormStore) DeleteContributionsByCampaign(campaignAddr string) error {
	return s.db.Delete(&model.Contribution{}, "campaign_address = ?", campaignAddr).Error
}

// Account 按地址读取自由余额账户
func (s *GormStore) Account(addr string) (*model.Account, error) {
	var account model.Account
	if err := s.db.First(&account, "address = ?", addr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// SaveAccount 保存自由余额账户
func (s *GormStore) SaveAccount(a *model.Account) error {
	return s.db.Save(a).Error
}

// EscrowAccount 按活动地址读取托管账户
func (s *GormStore) EscrowAccount(campaignAddr string) (*model.EscrowAccount, error) {
	var escrowAccount model.EscrowAccount
	if err := s.db.First(&escrowAccount, "campaign_address = ?", campaignAddr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &escrowAccount, nil
}

// SaveEscrowAccount 保存托管账户
func (s *GormStore) SaveEscrowAccount(e *model.EscrowAccount) error {
	return s.db.Save(e).Error
}

// DeleteEscrowAccount 删除托管账户
func (s *GormStore) DeleteEscrowAccount(campaignAddr string) error {
	return s.db.Delete(&model.EscrowAccount{}, "campaign_address = ?", campaignAddr).Error
}

// SaveEvent 保存事件记录
func (s *GormStore) SaveEvent(ev *model.EventModel) error {
	return s.db.Create(ev).Error
}
