package address

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// 派生域前缀，保证两类记录地址不会互相碰撞
const (
	campaignSeed     = "campaign"
	contributionSeed = "contribution"
)

var (
	// ErrInvalidAddress 地址不是合法的十六进制地址
	ErrInvalidAddress = errors.New("invalid hex address")
	// ErrEmptyTitle 活动标题为空，无法派生记录地址
	ErrEmptyTitle = errors.New("campaign title is required")
)

// Normalize 校验并归一化外部传入的身份地址
func Normalize(addr string) (string, error) {
	if !common.IsHexAddress(addr) {
		return "", ErrInvalidAddress
	}
	return common.HexToAddress(addr).Hex(), nil
}

// Campaign 由 (发起人, 标题) 派生活动记录地址。同一发起人同一标题永远得到
// 同一地址，记录唯一性由此保证，无需二级索引。
func Campaign(authority, title string) (string, error) {
	normalized, err := Normalize(authority)
	if err != nil {
		return "", err
	}
	if title == "" {
		return "", ErrEmptyTitle
	}

	hash := crypto.Keccak256Hash(
		[]byte(campaignSeed),
		common.HexToAddress(normalized).Bytes(),
		[]byte(title),
	)
	return common.BytesToAddress(hash.Bytes()[12:]).Hex(), nil
}

// Contribution 由 (捐赠人, 活动地址) 派生捐赠记录地址，每人每活动唯一
func Contribution(donor, campaignAddr string) (string, error) {
	normalizedDonor, err := Normalize(donor)
	if err != nil {
		return "", err
	}
	normalizedCampaign, err := Normalize(campaignAddr)
	if err != nil {
		return "", err
	}

	hash := crypto.Keccak256Hash(
		[]byte(contributionSeed),
		common.HexToAddress(normalizedDonor).Bytes(),
		common.HexToAddress(normalizedCampaign).Bytes(),
	)
	return common.BytesToAddress(hash.Bytes()[12:]).Hex(), nil
}
