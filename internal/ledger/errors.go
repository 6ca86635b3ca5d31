package ledger

import (
	"errors"
)

// 校验类错误：创建参数不合法
var (
	ErrStartTimeNotFuture = errors.New("the start time must be in the future")
	ErrEndBeforeStart     = errors.New("the end time must be after the start time")
	ErrNonPositiveGoal    = errors.New("the goal must be greater than zero")
	ErrNonPositiveAmount  = errors.New("the donation amount must be greater than zero")
)

// 授权类错误：签名身份与操作门限不符
var (
	ErrNotAuthority = errors.New("caller is not the campaign authority")
	ErrNotDonor     = errors.New("caller is not the contribution donor")
)

// 状态类错误：操作落在合法状态/时间窗口之外
var (
	ErrDuplicateCampaign         = errors.New("a campaign already exists at the derived address")
	ErrCampaignNotFound          = errors.New("campaign not found")
	ErrContributionNotFound      = errors.New("contribution not found")
	ErrContributionAlreadyExists = errors.New("the donor already contributed to this campaign")
	ErrAlreadyStarted            = errors.New("the campaign has already started")
	ErrCampaignNotStarted        = errors.New("the campaign has not started")
	ErrCampaignOver              = errors.New("the campaign has already ended")
	ErrCampaignNotOver           = errors.New("the campaign is not yet over")
	ErrCampaignNotActive         = errors.New("the campaign is cancelled or closed")
	ErrDonationCompleted         = errors.New("the donation goal has been completed")
	ErrCampaignCompleted         = errors.New("the campaign has completed its goal")
	ErrAlreadyCancelled          = errors.New("the contribution has already been cancelled")
	ErrNoCompletedDonations      = errors.New("the donation goal has not been reached")
	ErrAlreadyClaimed            = errors.New("the donations have already been claimed")
	ErrInvalidExtension          = errors.New("the new end time must extend the campaign")
	ErrCampaignNotTerminal       = errors.New("the campaign is still live")
	ErrEscrowNotDrained          = errors.New("the campaign escrow still holds funds")
)
