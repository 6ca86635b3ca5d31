package escrow

import (
	"errors"
	"time"

	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/model"
	"github.com/blues/cfl/internal/store"
)

var (
	// ErrInsufficientFunds 捐赠人自由余额不足，属于调用方可修正的错误
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnderfunded 托管余额低于应释放金额。记账不变量被破坏，属于内部缺陷，
	// 账户随即冻结，不可由调用方恢复
	ErrUnderfunded = errors.New("escrow underfunded")
	// ErrFrozen 托管账户已因记账异常冻结，拒绝一切资金操作
	ErrFrozen = errors.New("escrow account frozen")
)

// Engine 托管记账引擎。所有方法都在调用方的事务内工作，资金移动与状态机变更
// 共同提交或共同回滚。
type Engine struct{}

// NewEngine 创建托管记账引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Hold 从捐赠人自由余额划入活动托管账户
func (e *Engine) Hold(s store.Store, campaignAddr, from string, amount float64, now time.Time) error {
	escrowAccount, err := e.loadEscrow(s, campaignAddr, now)
	if err != nil {
		return err
	}
	if escrowAccount.Frozen {
		return ErrFrozen
	}

	account, err := s.Account(from)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// 没有账户记录等同于零余额
			return ErrInsufficientFunds
		}
		return err
	}
	if account.Balance < amount {
		return ErrInsufficientFunds
	}

	account.Balance -= amount
	account.UpdatedAt = now
	if err := s.SaveAccount(account); err != nil {
		return err
	}

	escrowAccount.Balance += amount
	escrowAccount.UpdatedAt = now
	return s.SaveEscrowAccount(escrowAccount)
}

// Release 从活动托管账户释放资金给指定接收方。托管余额不足说明记账已经损坏，
// 账户立即冻结并返回 ErrUnderfunded。
func (e *Engine) Release(s store.Store, campaignAddr, to string, amount float64, now time.Time) error {
	escrowAccount, err := e.loadEscrow(s, campaignAddr, now)
	if err != nil {
		return err
	}
	if escrowAccount.Frozen {
		return ErrFrozen
	}
	if escrowAccount.Balance < amount {
		logger.Error("Escrow underfunded for campaign %s: balance=%f, release=%f",
			campaignAddr, escrowAccount.Balance, amount)
		escrowAccount.Frozen = true
		escrowAccount.UpdatedAt = now
		if saveErr := s.SaveEscrowAccount(escrowAccount); saveErr != nil {
			return saveErr
		}
		return ErrUnderfunded
	}

	escrowAccount.Balance -= amount
	escrowAccount.UpdatedAt = now
	if err := s.SaveEscrowAccount(escrowAccount); err != nil {
		return err
	}

	account, err := s.Account(to)
	if errors.Is(err, store.ErrNotFound) {
		account = &model.Account{Address: to, CreatedAt: now}
	} else if err != nil {
		return err
	}
	account.Balance += amount
	account.UpdatedAt = now
	return s.SaveAccount(account)
}

// Balance 查询活动托管余额，只用于不变量校验
func (e *Engine) Balance(s store.Store, campaignAddr string) (float64, error) {
	escrowAccount, err := s.EscrowAccount(campaignAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return escrowAccount.Balance, nil
}

func (e *Engine) loadEscrow(s store.Store, campaignAddr string, now time.Time) (*model.EscrowAccount, error) {
	escrowAccount, err := s.EscrowAccount(campaignAddr)
	if errors.Is(err, store.ErrNotFound) {
		return &model.EscrowAccount{CampaignAddress: campaignAddr, CreatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return escrowAccount, nil
}
