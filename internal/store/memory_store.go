package store

import (
	"sort"

	"github.com/blues/cfl/internal/model"
)

// MemoryStore 纯内存持久层，测试和嵌入场景使用。Atomically 先在副本上执行，
// 成功才切换状态，保证失败的操作不留下任何局部写入。
type MemoryStore struct {
	campaigns     map[string]model.Campaign
	contributions map[string]model.Contribution
	accounts      map[string]model.Account
	escrows       map[string]model.EscrowAccount
	events        []model.EventModel
	nextEventId   int64
}

// NewMemoryStore 创建内存持久层
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns:     make(map[string]model.Campaign),
		contributions: make(map[string]model.Contribution),
		accounts:      make(map[string]model.Account),
		escrows:       make(map[string]model.EscrowAccount),
		nextEventId:   1,
	}
}

// Atomically 在状态副本上执行 fn，成功后整体提交
func (s *MemoryStore) Atomically(fn func(Store) error) error {
	staged := s.clone()
	if err := fn(staged); err != nil {
		return err
	}
	*s = *staged
	return nil
}

func (s *MemoryStore) clone() *MemoryStore {
	staged := NewMemoryStore()
	for k, v := range s.campaigns {
		staged.campaigns[k] = v
	}
	for k, v := range s.contributions {
		staged.contributions[k] = v
	}
	for k, v := range s.accounts {
		staged.accounts[k] = v
	}
	for k, v := range s.escrows {
		staged.escrows[k] = v
	}
	staged.events = append(staged.events, s.events...)
	staged.nextEventId = s.nextEventId
	return staged
}

// CreateCampaign 创建活动记录
func (s *MemoryStore) CreateCampaign(c *model.Campaign) error {
	if _, ok := s.campaigns[c.Address]; ok {
		return ErrAlreadyExists
	}
	s.campaigns[c.Address] = *c
	return nil
}

// Campaign 按地址读取活动记录
func (s *MemoryStore) Campaign(addr string) (*model.Campaign, error) {
	campaign, ok := s.campaigns[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &campaign, nil
}

// SaveCampaign 保存活动记录
func (s *MemoryStore) SaveCampaign(c *model.Campaign) error {
	s.campaigns[c.Address] = *c
	return nil
}

// DeleteCampaign 删除活动记录
func (s *MemoryStore) DeleteCampaign(addr string) error {
	delete(s.campaigns, addr)
	return nil
}

// CreateContribution 创建捐赠记录
func (s *MemoryStore) CreateContribution(ct *model.Contribution) error {
	if _, ok := s.contributions[ct.Address]; ok {
		return ErrAlreadyExists
	}
	s.contributions[ct.Address] = *ct
	return nil
}

// Contribution 按地址读取捐赠记录
func (s *MemoryStore) Contribution(addr string) (*model.Contribution, error) {
	contribution, ok := s.contributions[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &contribution, nil
}

// SaveContribution 保存捐赠记录
func (s *MemoryStore) SaveContribution(ct *model.Contribution) error {
	s.contributions[ct.Address] = *ct
	return nil
}

// ContributionsByCampaign 分页获取活动的捐赠记录
func (s *MemoryStore) ContributionsByCampaign(campaignAddr string, page, pageSize int) ([]model.Contribution, int64, error) {
	var all []model.Contribution
	for _, ct := range s.contributions {
		if ct.CampaignAddress == campaignAddr {
			all = append(all, ct)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// DeleteContributionsByCampaign 删除活动的全部捐赠记录
func (s *MemoryStore) DeleteContributionsByCampaign(campaignAddr string) error {
	for addr, ct := range s.contributions {
		if ct.CampaignAddress == campaignAddr {
			delete(s.contributions, addr)
		}
	}
	return nil
}

// Account 按地址读取自由余额账户
func (s *MemoryStore) Account(addr string) (*model.Account, error) {
	account, ok := s.accounts[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

// SaveAccount 保存自由余额账户
func (s *MemoryStore) SaveAccount(a *model.Account) error {
	s.accounts[a.Address] = *a
	return nil
}

// EscrowAccount 按活动地址读取托管账户
func (s *MemoryStore) EscrowAccount(campaignAddr string) (*model.EscrowAccount, error) {
	escrowAccount, ok := s.escrows[campaignAddr]
	if !ok {
		return nil, ErrNotFound
	}
	return &escrowAccount, nil
}

// SaveEscrowAccount 保存托管账户
func (s *MemoryStore) SaveEscrowAccount(e *model.EscrowAccount) error {
	s.escrows[e.CampaignAddress] = *e
	return nil
}

// DeleteEscrowAccount 删除托管账户
func (s *MemoryStore) DeleteEscrowAccount(campaignAddr string) error {
	delete(s.escrows, campaignAddr)
	return nil
}

// SaveEvent 保存事件记录
func (s *MemoryStore) SaveEvent(ev *model.EventModel) error {
	ev.Id = s.nextEventId
	s.nextEventId++
	s.events = append(s.events, *ev)
	return nil
}

// Events 返回全部事件记录，仅供测试断言
func (s *MemoryStore) Events() []model.EventModel {
	return append([]model.EventModel(nil), s.events...)
}
