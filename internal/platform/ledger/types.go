package ledger

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// minorUnitExp is the decimal exponent of the ledger's minor unit: one
// currency unit equals 1e6 minor units.
const minorUnitExp = 6

// Params are the suggested transaction parameters of the ledger node.
type Params struct {
	FeeMinor   uint64 `json:"fee"`
	FirstRound uint64 `json:"first-round"`
	LastRound  uint64 `json:"last-round"`
	GenesisID  string `json:"genesis-id"`
}

// PendingInfo is the node's view of a submitted transaction.
type PendingInfo struct {
	ConfirmedRound uint64 `json:"confirmed-round"`
	PoolError      string `json:"pool-error"`
}

// Outcome is the terminal result of a confirmation wait.
type Outcome struct {
	TxID           string
	ConfirmedRound uint64
}

// HistoryEntry is one settled transaction touching an address.
type HistoryEntry struct {
	ID             string `json:"id"`
	Sender         string `json:"sender"`
	Receiver       string `json:"receiver"`
	AmountMinor    uint64 `json:"amount"`
	FeeMinor       uint64 `json:"fee"`
	Note           string `json:"note"`
	ConfirmedRound uint64 `json:"confirmed-round"`
}

// CreatedAsset is an asset created by an account, used to reconcile
// reward mints whose local record was lost.
type CreatedAsset struct {
	ID   uint64 `json:"index"`
	Name string `json:"name"`
}

// AssetMetadata describes a reward asset to be minted.
type AssetMetadata struct {
	Name     string `json:"name"`
	UnitName string `json:"unit-name"`
	Total    uint64 `json:"total"`
}

// FromMinorUnits converts a minor-unit amount into a decimal currency amount.
func FromMinorUnits(n uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(n), -minorUnitExp)
}

// ToMinorUnits converts a decimal currency amount into minor units,
// truncating any precision beyond the minor unit.
func ToMinorUnits(d decimal.Decimal) uint64 {
	return d.Shift(minorUnitExp).BigInt().Uint64()
}
