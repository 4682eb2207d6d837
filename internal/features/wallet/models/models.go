package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection tells whether the active account sent or received.
type TransactionDirection string

const (
	DirectionSent     TransactionDirection = "sent"
	DirectionReceived TransactionDirection = "received"
)

// TransactionStatus tracks a submission through the ledger.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
)

// Account holds the key material of the single active ledger account.
type Account struct {
	Address   string `json:"address"`
	SecretKey []byte `json:"secret_key"`
	Mnemonic  string `json:"mnemonic"`
	CreatedAt int64  `json:"created_at"`
}

// WalletState is the single mutable snapshot owned by the wallet engine.
// Everything outside the engine reads a copy.
type WalletState struct {
	IsConnected    bool            `json:"is_connected"`
	Address        string          `json:"address,omitempty"`
	PrimaryBalance decimal.Decimal `json:"primary_balance"`
	RewardBalance  decimal.Decimal `json:"reward_balance"`
	IsLoading      bool            `json:"is_loading"`
	LastError      string          `json:"last_error,omitempty"`
}

// NewWalletState returns the disconnected default state.
func NewWalletState() WalletState {
	return WalletState{
		PrimaryBalance: decimal.Zero,
		RewardBalance:  decimal.Zero,
	}
}

// TransactionRecord is created when a submission begins and becomes
// read-only once the ledger reports a terminal status.
type TransactionRecord struct {
	ID             string               `json:"id"`
	Direction      TransactionDirection `json:"direction"`
	Amount         decimal.Decimal      `json:"amount"`
	From           string               `json:"from"`
	To             string               `json:"to"`
	Fee            decimal.Decimal      `json:"fee"`
	Note           string               `json:"note,omitempty"`
	Status         TransactionStatus    `json:"status"`
	ConfirmedRound uint64               `json:"confirmed_round,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}
