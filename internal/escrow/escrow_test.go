package escrow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/blues/cfl/internal/escrow"
	"github.com/blues/cfl/internal/model"
	"github.com/blues/cfl/internal/store"
)

const (
	testCampaign = "0x5000000000000000000000000000000000000005"
	testDonor    = "0x6000000000000000000000000000000000000006"
	testPayee    = "0x7000000000000000000000000000000000000007"
)

func newEngine(t *testing.T) (*escrow.Engine, *store.MemoryStore, time.Time) {
	t.Helper()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return escrow.NewEngine(), store.NewMemoryStore(), now
}

func setBalance(t *testing.T, s *store.MemoryStore, addr string, balance float64) {
	t.Helper()
	if err := s.SaveAccount(&model.Account{Address: addr, Balance: balance}); err != nil {
		t.Fatalf("save account: %v", err)
	}
}

func accountBalance(t *testing.T, s *store.MemoryStore, addr string) float64 {
	t.Helper()
	account, err := s.Account(addr)
	if errors.Is(err, store.ErrNotFound) {
		return 0
	}
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	return account.Balance
}

func TestHoldAndRelease(t *testing.T) {
	engine, s, now := newEngine(t)
	setBalance(t, s, testDonor, 10)

	if err := engine.Hold(s, testCampaign, testDonor, 4, now); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if got := accountBalance(t, s, testDonor); got != 6 {
		t.Fatalf("donor balance after hold = %f, want 6", got)
	}
	if got, _ := engine.Balance(s, testCampaign); got != 4 {
		t.Fatalf("escrow balance after hold = %f, want 4", got)
	}

	// 接收方没有账户记录时自动开户
	if err := engine.Release(s, testCampaign, testPayee, 4, now); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := accountBalance(t, s, testPayee); got != 4 {
		t.Fatalf("payee balance after release = %f, want 4", got)
	}
	if got, _ := engine.Balance(s, testCampaign); got != 0 {
		t.Fatalf("escrow balance after release = %f, want 0", got)
	}
}

func TestHoldInsufficientFunds(t *testing.T) {
	engine, s, now := newEngine(t)
	setBalance(t, s, testDonor, 3)

	if err := engine.Hold(s, testCampaign, testDonor, 4, now); !errors.Is(err, escrow.ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	// 拒绝的划转不动余额
	if got := accountBalance(t, s, testDonor); got != 3 {
		t.Fatalf("donor balance = %f, want 3", got)
	}

	// 没有账户记录等同于零余额
	if err := engine.Hold(s, testCampaign, testPayee, 1, now); !errors.Is(err, escrow.ErrInsufficientFunds) {
		t.Fatalf("unfunded account: got %v, want ErrInsufficientFunds", err)
	}
}

// 释放金额超过托管余额说明记账已经损坏，账户冻结后拒绝一切资金操作
func TestReleaseUnderfundedFreezesAccount(t *testing.T) {
	engine, s, now := newEngine(t)
	setBalance(t, s, testDonor, 10)
	if err := engine.Hold(s, testCampaign, testDonor, 5, now); err != nil {
		t.Fatalf("hold: %v", err)
	}

	if err := engine.Release(s, testCampaign, testPayee, 8, now); !errors.Is(err, escrow.ErrUnderfunded) {
		t.Fatalf("got %v, want ErrUnderfunded", err)
	}
	if got := accountBalance(t, s, testPayee); got != 0 {
		t.Fatalf("payee received funds from underfunded escrow: %f", got)
	}

	escrowAccount, err := s.EscrowAccount(testCampaign)
	if err != nil {
		t.Fatalf("load escrow account: %v", err)
	}
	if !escrowAccount.Frozen {
		t.Fatalf("escrow account not frozen after underfunded release")
	}

	if err := engine.Hold(s, testCampaign, testDonor, 1, now); !errors.Is(err, escrow.ErrFrozen) {
		t.Fatalf("hold on frozen account: got %v, want ErrFrozen", err)
	}
	if err := engine.Release(s, testCampaign, testPayee, 1, now); !errors.Is(err, escrow.ErrFrozen) {
		t.Fatalf("release on frozen account: got %v, want ErrFrozen", err)
	}
}

func TestBalanceOfUnknownCampaign(t *testing.T) {
	engine, s, _ := newEngine(t)
	balance, err := engine.Balance(s, testCampaign)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %f, want 0", balance)
	}
}
