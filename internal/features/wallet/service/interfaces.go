package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/platform/ledger"
)

// LedgerClient is the slice of the ledger node API the wallet engine
// consumes. All calls block until done and honor ctx cancellation.
type LedgerClient interface {
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error)
	GetTransactionParams(ctx context.Context) (ledger.Params, error)
	SubmitSignedTransaction(ctx context.Context, raw []byte) (string, error)
	WaitForConfirmation(ctx context.Context, txID string, timeout time.Duration) (ledger.Outcome, error)
	GetTransactionHistory(ctx context.Context, address string) ([]ledger.HistoryEntry, error)
}

// RewardEvaluator runs milestone evaluation after confirmed transactions
// and balance refreshes. Failures are non-fatal for the payment flow.
type RewardEvaluator interface {
	EvaluateAndIssue(ctx context.Context, address string, history []models.TransactionRecord, rewardBalance decimal.Decimal) error
	ReconcileIntents(ctx context.Context, address string) error
}
