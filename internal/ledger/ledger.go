package ledger

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/blues/cfl/internal/address"
	"github.com/blues/cfl/internal/escrow"
	"github.com/blues/cfl/internal/event"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/model"
	"github.com/blues/cfl/internal/store"
)

// Ledger 众筹账本核心。每个操作在单个事务内完成 校验 → 变更 → 记录事件，
// 失败的操作不留下任何局部变更。账本时间由 now 注入，状态机本身不读时钟。
type Ledger struct {
	store   store.Store
	escrow  *escrow.Engine
	emitter event.Emitter
	now     func() time.Time
}

// New 创建账本。now 为 nil 时使用系统时钟。
func New(s store.Store, emitter event.Emitter, now func() time.Time) *Ledger {
	if emitter == nil {
		emitter = event.NopEmitter{}
	}
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		store:   s,
		escrow:  escrow.NewEngine(),
		emitter: emitter,
		now:     now,
	}
}

// Now 当前账本时间
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Store 底层持久层，供只读查询使用
func (l *Ledger) Store() store.Store {
	return l.store
}

// CreateCampaignInput 创建活动参数
type CreateCampaignInput struct {
	Authority    string
	Title        string
	Description  string
	OrgName      string
	ProjectLink  string
	ProjectImage string
	Goal         float64
	StartAt      time.Time
	EndAt        time.Time
}

// CreateCampaign 创建活动，初始状态 pending。
// 按序校验：开始时间必须在未来、结束时间必须晚于开始时间、目标金额必须为正，
// 任何一条不满足立即失败，不产生记录。
func (l *Ledger) CreateCampaign(in CreateCampaignInput) (*model.Campaign, error) {
	now := l.now()

	authority, err := address.Normalize(in.Authority)
	if err != nil {
		return nil, err
	}
	if !in.StartAt.After(now) {
		return nil, ErrStartTimeNotFuture
	}
	if !in.EndAt.After(in.StartAt) {
		return nil, ErrEndBeforeStart
	}
	if in.Goal <= 0 {
		return nil, ErrNonPositiveGoal
	}

	campaignAddr, err := address.Campaign(authority, in.Title)
	if err != nil {
		return nil, err
	}

	campaign := &model.Campaign{
		Address:      campaignAddr,
		CreatedAt:    now,
		UpdatedAt:    now,
		Title:        in.Title,
		Description:  in.Description,
		OrgName:      in.OrgName,
		ProjectLink:  in.ProjectLink,
		ProjectImage: in.ProjectImage,
		Authority:    authority,
		Goal:         in.Goal,
		TotalDonated: 0,
		StartAt:      in.StartAt,
		EndAt:        in.EndAt,
		Status:       model.CampaignStatusPending,
		Claimed:      false,
	}

	ev := event.Event{
		Type:     event.TypeCampaignCreated,
		Campaign: campaignAddr,
		Data: event.CampaignCreatedData{
			Title:       campaign.Title,
			Description: campaign.Description,
			Authority:   campaign.Authority,
			Goal:        campaign.Goal,
			StartAt:     campaign.StartAt,
			EndAt:       campaign.EndAt,
		},
		OccurredAt: now,
	}

	err = l.store.Atomically(func(s store.Store) error {
		if err := s.CreateCampaign(campaign); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateCampaign
			}
			return err
		}
		if err := s.SaveEscrowAccount(&model.EscrowAccount{
			CampaignAddress: campaignAddr,
			CreatedAt:       now,
			UpdatedAt:       now,
		}); err != nil {
			return err
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Campaign '%s' created by %s at %s", campaign.Title, authority, campaignAddr)
	return campaign, nil
}

// CancelCampaign 取消活动，仅发起人可操作，且只能在开始前。开始前不可能有
// 捐赠，因此没有资金处置。
func (l *Ledger) CancelCampaign(campaignAddr, actor string) (*model.Campaign, error) {
	now := l.now()

	var campaign *model.Campaign
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		var err error
		campaign, err = loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}
		if campaign.Status != model.CampaignStatusPending || !now.Before(campaign.StartAt) {
			return ErrAlreadyStarted
		}

		campaign.Status = model.CampaignStatusCancelled
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:       event.TypeCampaignCancelled,
			Campaign:   campaign.Address,
			Data:       event.CampaignCancelledData{Authority: campaign.Authority},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Campaign %s cancelled by %s", campaign.Address, campaign.Authority)
	return campaign, nil
}

// Donate 向活动捐赠。每个身份对同一活动至多一条生效捐赠；带满目标的那笔
// 允许超额，入账后活动即转为 completed，此后一切捐赠被拒绝。
func (l *Ledger) Donate(campaignAddr, donor string, amount float64) (*model.Contribution, error) {
	now := l.now()

	normalizedDonor, err := address.Normalize(donor)
	if err != nil {
		return nil, err
	}

	var contribution *model.Contribution
	var ev event.Event
	err = l.store.Atomically(func(s store.Store) error {
		campaign, err := loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}

		switch campaign.Status {
		case model.CampaignStatusCancelled, model.CampaignStatusClosed:
			return ErrCampaignNotActive
		case model.CampaignStatusCompleted:
			return ErrDonationCompleted
		}
		if now.Before(campaign.StartAt) {
			return ErrCampaignNotStarted
		}
		if !now.Before(campaign.EndAt) {
			return ErrCampaignOver
		}
		if amount <= 0 {
			return ErrNonPositiveAmount
		}

		contributionAddr, err := address.Contribution(normalizedDonor, campaign.Address)
		if err != nil {
			return err
		}

		contribution = &model.Contribution{
			Address:         contributionAddr,
			CreatedAt:       now,
			UpdatedAt:       now,
			CampaignAddress: campaign.Address,
			Donor:           normalizedDonor,
			Amount:          amount,
			Status:          model.ContributionStatusActive,
		}
		if err := s.CreateContribution(contribution); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrContributionAlreadyExists
			}
			return err
		}

		if err := l.escrow.Hold(s, campaign.Address, normalizedDonor, amount, now); err != nil {
			return err
		}

		campaign.TotalDonated += amount
		campaign.Status = model.CampaignStatusActive
		if campaign.TotalDonated >= campaign.Goal {
			campaign.Status = model.CampaignStatusCompleted
		}
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:     event.TypeDonationReceived,
			Campaign: campaign.Address,
			Data: event.DonationReceivedData{
				Contribution: contributionAddr,
				Donor:        normalizedDonor,
				Amount:       amount,
				TotalDonated: campaign.TotalDonated,
				Completed:    campaign.Status == model.CampaignStatusCompleted,
			},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Donation of %f received for campaign %s from %s", amount, campaignAddr, normalizedDonor)
	return contribution, nil
}

// CancelDonation 捐赠人在活动达标前撤回自己的捐赠，资金原路退回
func (l *Ledger) CancelDonation(campaignAddr, contributionAddr, actor string) (*model.Contribution, error) {
	now := l.now()

	var contribution *model.Contribution
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		campaign, err := loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		contribution, err = loadContribution(s, campaign, contributionAddr)
		if err != nil {
			return err
		}

		normalizedActor, err := address.Normalize(actor)
		if err != nil {
			return err
		}
		if normalizedActor != contribution.Donor {
			return ErrNotDonor
		}
		if contribution.Status != model.ContributionStatusActive {
			return ErrAlreadyCancelled
		}
		if campaign.Status == model.CampaignStatusCompleted {
			return ErrCampaignCompleted
		}

		if err := l.escrow.Release(s, campaign.Address, contribution.Donor, contribution.Amount, now); err != nil {
			return err
		}

		contribution.Status = model.ContributionStatusCancelled
		contribution.UpdatedAt = now
		if err := s.SaveContribution(contribution); err != nil {
			return err
		}

		campaign.TotalDonated -= contribution.Amount
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:     event.TypeDonationCancelled,
			Campaign: campaign.Address,
			Data: event.DonationCancelledData{
				Contribution: contribution.Address,
				Donor:        contribution.Donor,
				Amount:       contribution.Amount,
				TotalDonated: campaign.TotalDonated,
			},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Donation of %f cancelled for campaign %s by %s", contribution.Amount, campaignAddr, contribution.Donor)
	return contribution, nil
}

// ClaimDonations 发起人一次性领取达标活动的全部托管资金。领取后活动进入终态，
// 所有仍然生效的捐赠折算为 claimed，不再逐条改写。
func (l *Ledger) ClaimDonations(campaignAddr, actor string) (*model.Campaign, error) {
	now := l.now()

	var campaign *model.Campaign
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		var err error
		campaign, err = loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}
		if campaign.Status != model.CampaignStatusCompleted {
			return ErrNoCompletedDonations
		}
		if campaign.Claimed {
			return ErrAlreadyClaimed
		}

		if err := l.escrow.Release(s, campaign.Address, campaign.Authority, campaign.TotalDonated, now); err != nil {
			return err
		}

		campaign.Claimed = true
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:     event.TypeDonationsClaimed,
			Campaign: campaign.Address,
			Data: event.DonationsClaimedData{
				Authority: campaign.Authority,
				Amount:    campaign.TotalDonated,
			},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Donations of %f claimed for campaign %s by %s", campaign.TotalDonated, campaignAddr, campaign.Authority)
	return campaign, nil
}

// RefundDonation 窗口结束仍未达标（或活动被提前关闭）后，按捐赠记录退款。
// 无需任何门限身份，任何人都可以替捐赠人触发，资金只会回到捐赠人账户。
func (l *Ledger) RefundDonation(campaignAddr, contributionAddr string) (*model.Contribution, error) {
	now := l.now()

	var contribution *model.Contribution
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		campaign, err := loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		contribution, err = loadContribution(s, campaign, contributionAddr)
		if err != nil {
			return err
		}

		if campaign.Status == model.CampaignStatusCompleted {
			return ErrCampaignCompleted
		}
		if campaign.Status != model.CampaignStatusClosed && !campaign.Expired(now) {
			return ErrCampaignNotOver
		}
		if contribution.Status != model.ContributionStatusActive {
			return ErrAlreadyCancelled
		}

		if err := l.escrow.Release(s, campaign.Address, contribution.Donor, contribution.Amount, now); err != nil {
			return err
		}

		contribution.Status = model.ContributionStatusCancelled
		contribution.UpdatedAt = now
		if err := s.SaveContribution(contribution); err != nil {
			return err
		}

		campaign.TotalDonated -= contribution.Amount
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:     event.TypeDonationRefunded,
			Campaign: campaign.Address,
			Data: event.DonationRefundedData{
				Contribution: contribution.Address,
				Donor:        contribution.Donor,
				Amount:       contribution.Amount,
				TotalDonated: campaign.TotalDonated,
			},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Donation of %f refunded for campaign %s to %s", contribution.Amount, campaignAddr, contribution.Donor)
	return contribution, nil
}

// UpdateMetadataInput 元数据更新参数，nil 字段保持不变。
// 标题参与地址派生，目标金额与发起人是结构性字段，均不可变更。
type UpdateMetadataInput struct {
	Description  *string
	OrgName      *string
	ProjectLink  *string
	ProjectImage *string
}

// UpdateCampaignMetadata 更新活动描述性字段，仅发起人可操作，活动达标或领取
// 后不再允许
func (l *Ledger) UpdateCampaignMetadata(campaignAddr, actor string, in UpdateMetadataInput) (*model.Campaign, error) {
	now := l.now()

	var campaign *model.Campaign
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		var err error
		campaign, err = loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}
		if campaign.Claimed {
			return ErrAlreadyClaimed
		}
		switch campaign.Status {
		case model.CampaignStatusCompleted:
			return ErrCampaignCompleted
		case model.CampaignStatusCancelled, model.CampaignStatusClosed:
			return ErrCampaignNotActive
		}

		if in.Description != nil {
			campaign.Description = *in.Description
		}
		if in.OrgName != nil {
			campaign.OrgName = *in.OrgName
		}
		if in.ProjectLink != nil {
			campaign.ProjectLink = *in.ProjectLink
		}
		if in.ProjectImage != nil {
			campaign.ProjectImage = *in.ProjectImage
		}
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:     event.TypeCampaignMetadataUpdated,
			Campaign: campaign.Address,
			Data: event.CampaignMetadataUpdatedData{
				Title:       campaign.Title,
				Description: campaign.Description,
				OrgName:     campaign.OrgName,
			},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Campaign metadata updated for campaign %s by %s", campaignAddr, campaign.Authority)
	return campaign, nil
}

// ExtendCampaign 在窗口结束前延长活动，只能向后延
func (l *Ledger) ExtendCampaign(campaignAddr, actor string, newEndAt time.Time) (*model.Campaign, error) {
	now := l.now()

	var campaign *model.Campaign
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		var err error
		campaign, err = loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}
		switch campaign.Status {
		case model.CampaignStatusCompleted:
			return ErrCampaignCompleted
		case model.CampaignStatusCancelled, model.CampaignStatusClosed:
			return ErrCampaignNotActive
		}
		if campaign.EffectiveStatus(now) != model.CampaignStatusActive {
			return ErrCampaignNotStarted
		}
		if !now.Before(campaign.EndAt) {
			return ErrCampaignOver
		}
		if !newEndAt.After(campaign.EndAt) {
			return ErrInvalidExtension
		}

		campaign.EndAt = newEndAt
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:       event.TypeCampaignExtended,
			Campaign:   campaign.Address,
			Data:       event.CampaignExtendedData{NewEndAt: newEndAt},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Campaign %s extended to new end time %s", campaignAddr, newEndAt)
	return campaign, nil
}

// CloseCampaign 发起人提前终止未达标的活动。关闭后不再接受捐赠，已有捐赠
// 通过退款路径逐笔返还。
func (l *Ledger) CloseCampaign(campaignAddr, actor string) (*model.Campaign, error) {
	now := l.now()

	var campaign *model.Campaign
	var ev event.Event
	err := l.store.Atomically(func(s store.Store) error {
		var err error
		campaign, err = loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}
		switch campaign.Status {
		case model.CampaignStatusCompleted:
			return ErrCampaignCompleted
		case model.CampaignStatusCancelled, model.CampaignStatusClosed:
			return ErrCampaignNotActive
		}
		if campaign.EffectiveStatus(now) != model.CampaignStatusActive {
			return ErrCampaignNotStarted
		}

		campaign.Status = model.CampaignStatusClosed
		campaign.UpdatedAt = now
		if err := s.SaveCampaign(campaign); err != nil {
			return err
		}

		ev = event.Event{
			Type:       event.TypeCampaignClosed,
			Campaign:   campaign.Address,
			Data:       event.CampaignClosedData{Authority: campaign.Authority},
			OccurredAt: now,
		}
		return persistEvent(s, ev)
	})
	if err != nil {
		return nil, err
	}

	l.emitter.Emit(ev)
	logger.Info("Campaign %s closed by %s", campaignAddr, campaign.Authority)
	return campaign, nil
}

// DestroyCampaign 销毁已结清的活动记录并回收存储。托管账户必须已清零：
// 要么发起人已领取，要么全部捐赠已退款/取消。
func (l *Ledger) DestroyCampaign(campaignAddr, actor string) error {
	now := l.now()

	err := l.store.Atomically(func(s store.Store) error {
		campaign, err := loadCampaign(s, campaignAddr)
		if err != nil {
			return err
		}
		if err := requireAuthority(campaign, actor); err != nil {
			return err
		}

		terminal := campaign.Claimed ||
			campaign.Status == model.CampaignStatusCancelled ||
			campaign.Status == model.CampaignStatusClosed ||
			(campaign.Status != model.CampaignStatusCompleted && campaign.Expired(now))
		if !terminal {
			return ErrCampaignNotTerminal
		}

		balance, err := l.escrow.Balance(s, campaign.Address)
		if err != nil {
			return err
		}
		if balance != 0 {
			return ErrEscrowNotDrained
		}

		if err := s.DeleteContributionsByCampaign(campaign.Address); err != nil {
			return err
		}
		if err := s.DeleteEscrowAccount(campaign.Address); err != nil {
			return err
		}
		return s.DeleteCampaign(campaign.Address)
	})
	if err != nil {
		return err
	}

	logger.Info("Campaign %s destroyed by %s", campaignAddr, actor)
	return nil
}

// Deposit 充值自由余额。账户体系属于外部系统，这里只提供托管记账所需的
// 最小入金入口。
func (l *Ledger) Deposit(addr string, amount float64) (*model.Account, error) {
	now := l.now()

	normalized, err := address.Normalize(addr)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrNonPositiveAmount
	}

	var account *model.Account
	err = l.store.Atomically(func(s store.Store) error {
		var err error
		account, err = s.Account(normalized)
		if errors.Is(err, store.ErrNotFound) {
			account = &model.Account{Address: normalized, CreatedAt: now}
		} else if err != nil {
			return err
		}
		account.Balance += amount
		account.UpdatedAt = now
		return s.SaveAccount(account)
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func loadCampaign(s store.Store, campaignAddr string) (*model.Campaign, error) {
	campaign, err := s.Campaign(campaignAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return campaign, nil
}

func loadContribution(s store.Store, campaign *model.Campaign, contributionAddr string) (*model.Contribution, error) {
	contribution, err := s.Contribution(contributionAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrContributionNotFound
		}
		return nil, err
	}
	if contribution.CampaignAddress != campaign.Address {
		return nil, ErrContributionNotFound
	}
	return contribution, nil
}

func requireAuthority(campaign *model.Campaign, actor string) error {
	normalized, err := address.Normalize(actor)
	if err != nil {
		return err
	}
	if normalized != campaign.Authority {
		return ErrNotAuthority
	}
	return nil
}

func persistEvent(s store.Store, ev event.Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}
	return s.SaveEvent(&model.EventModel{
		CreatedAt:       ev.OccurredAt,
		CampaignAddress: ev.Campaign,
		EventType:       ev.Type,
		Data:            string(data),
	})
}
