package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rarity grades a milestone reward.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Aggregates are the account activity totals milestone rules are
// evaluated against.
type Aggregates struct {
	TransactionCount int
	TotalVolume      decimal.Decimal
	RewardBalance    decimal.Decimal
}

// Milestone is a static reward-eligibility rule.
type Milestone struct {
	Name   string
	Rarity Rarity
	Rule   func(Aggregates) bool
}

// AssetName is the on-ledger asset name minted for a milestone; it is
// also the key reconciliation matches orphaned mints against.
func (m Milestone) AssetName() string {
	return "reward:" + m.Name
}

// DefaultMilestones is the fixed rule set, evaluated in order.
func DefaultMilestones() []Milestone {
	volumeTarget := decimal.NewFromInt(100)
	rewardTarget := decimal.NewFromInt(50)

	return []Milestone{
		{
			Name:   "first-transaction",
			Rarity: RarityCommon,
			Rule:   func(a Aggregates) bool { return a.TransactionCount >= 1 },
		},
		{
			Name:   "five-transactions",
			Rarity: RarityCommon,
			Rule:   func(a Aggregates) bool { return a.TransactionCount >= 5 },
		},
		{
			Name:   "ten-transactions",
			Rarity: RarityRare,
			Rule:   func(a Aggregates) bool { return a.TransactionCount >= 10 },
		},
		{
			Name:   "volume-100",
			Rarity: RarityEpic,
			Rule:   func(a Aggregates) bool { return a.TotalVolume.GreaterThanOrEqual(volumeTarget) },
		},
		{
			Name:   "reward-balance-50",
			Rarity: RarityLegendary,
			Rule:   func(a Aggregates) bool { return a.RewardBalance.GreaterThanOrEqual(rewardTarget) },
		},
	}
}

// RewardRecord marks a milestone as issued for an account. At most one
// record per (account, milestone) ever exists.
type RewardRecord struct {
	MilestoneName string    `json:"milestone_name"`
	Rarity        Rarity    `json:"rarity"`
	IssuedAt      time.Time `json:"issued_at"`
	AssetID       uint64    `json:"asset_id,omitempty"`
}

// MintIntent is persisted before a mint call so that a crash between the
// mint and the RewardRecord write can be reconciled on startup.
type MintIntent struct {
	MilestoneName string    `json:"milestone_name"`
	CreatedAt     time.Time `json:"created_at"`
}
