package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-core-backend/internal/features/reward/models"
	walletmodels "wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/platform/ledger"
)

const testAddr = "TESTACCOUNTADDRESSAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA22"

type fakeMinter struct {
	mintCalls   []string
	mintErr     error
	nextAssetID uint64
	created     []ledger.CreatedAsset
}

func (f *fakeMinter) MintRewardAsset(ctx context.Context, owner string, metadata ledger.AssetMetadata) (uint64, error) {
	f.mintCalls = append(f.mintCalls, metadata.Name)
	if f.mintErr != nil {
		return 0, f.mintErr
	}
	f.nextAssetID++
	f.created = append(f.created, ledger.CreatedAsset{ID: f.nextAssetID, Name: metadata.Name})
	return f.nextAssetID, nil
}

func (f *fakeMinter) GetCreatedAssets(ctx context.Context, address string) ([]ledger.CreatedAsset, error) {
	return f.created, nil
}

type fakeLedgerRepo struct {
	records map[string]models.RewardRecord
	intents map[string]models.MintIntent
	saves   int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		records: make(map[string]models.RewardRecord),
		intents: make(map[string]models.MintIntent),
	}
}

func (f *fakeLedgerRepo) GetRecord(ctx context.Context, address, name string) (*models.RewardRecord, error) {
	if record, ok := f.records[address+":"+name]; ok {
		return &record, nil
	}
	return nil, nil
}

func (f *fakeLedgerRepo) SaveRecord(ctx context.Context, address string, record models.RewardRecord) error {
	f.saves++
	f.records[address+":"+record.MilestoneName] = record
	return nil
}

func (f *fakeLedgerRepo) ListRecords(ctx context.Context, address string) ([]models.RewardRecord, error) {
	var out []models.RewardRecord
	for _, record := range f.records {
		out = append(out, record)
	}
	return out, nil
}

func (f *fakeLedgerRepo) SaveIntent(ctx context.Context, address string, intent models.MintIntent) error {
	f.intents[address+":"+intent.MilestoneName] = intent
	return nil
}

func (f *fakeLedgerRepo) DeleteIntent(ctx context.Context, address, name string) error {
	delete(f.intents, address+":"+name)
	return nil
}

func (f *fakeLedgerRepo) ListIntents(ctx context.Context, address string) ([]models.MintIntent, error) {
	var out []models.MintIntent
	for _, intent := range f.intents {
		out = append(out, intent)
	}
	return out, nil
}

func confirmedSent(n int, amount string) []walletmodels.TransactionRecord {
	history := make([]walletmodels.TransactionRecord, 0, n)
	for i := 0; i < n; i++ {
		history = append(history, walletmodels.TransactionRecord{
			ID:        fmt.Sprintf("TX%d", i),
			Direction: walletmodels.DirectionSent,
			Amount:    decimal.RequireFromString(amount),
			Status:    walletmodels.StatusConfirmed,
		})
	}
	return history
}

func TestEvaluateAndIssueFirstTransaction(t *testing.T) {
	minter := &fakeMinter{}
	repo := newFakeLedgerRepo()
	svc := NewService(minter, repo, zerolog.Nop())

	err := svc.EvaluateAndIssue(context.Background(), testAddr, confirmedSent(1, "2.5"), decimal.Zero)
	require.NoError(t, err)

	require.Len(t, minter.mintCalls, 1)
	assert.Equal(t, "reward:first-transaction", minter.mintCalls[0])

	record, err := repo.GetRecord(context.Background(), testAddr, "first-transaction")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint64(1), record.AssetID)
	assert.Empty(t, repo.intents, "intent must be cleared after the record write")
}

func TestEvaluateAndIssueIdempotent(t *testing.T) {
	minter := &fakeMinter{}
	repo := newFakeLedgerRepo()
	svc := NewService(minter, repo, zerolog.Nop())

	history := confirmedSent(5, "1")

	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))
	mintedOnce := len(minter.mintCalls)
	savedOnce := repo.saves

	// Re-running with unchanged inputs must not mint or persist again.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))
	}

	assert.Equal(t, mintedOnce, len(minter.mintCalls))
	assert.Equal(t, savedOnce, repo.saves)
	assert.Equal(t, 2, mintedOnce, "first-transaction and five-transactions")
}

func TestEvaluateAndIssueAllMilestones(t *testing.T) {
	minter := &fakeMinter{}
	repo := newFakeLedgerRepo()
	svc := NewService(minter, repo, zerolog.Nop())

	err := svc.EvaluateAndIssue(context.Background(), testAddr, confirmedSent(10, "10"), decimal.NewFromInt(50))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"reward:first-transaction",
		"reward:five-transactions",
		"reward:ten-transactions",
		"reward:volume-100",
		"reward:reward-balance-50",
	}, minter.mintCalls)
}

func TestEvaluateIgnoresUnconfirmedAndReceived(t *testing.T) {
	minter := &fakeMinter{}
	repo := newFakeLedgerRepo()
	svc := NewService(minter, repo, zerolog.Nop())

	history := []walletmodels.TransactionRecord{
		{ID: "TX1", Direction: walletmodels.DirectionSent, Amount: decimal.NewFromInt(500), Status: walletmodels.StatusFailed},
		{ID: "TX2", Direction: walletmodels.DirectionSent, Amount: decimal.NewFromInt(500), Status: walletmodels.StatusPending},
	}
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))
	assert.Empty(t, minter.mintCalls)

	// Received volume does not count toward the sent-volume milestone.
	history = []walletmodels.TransactionRecord{
		{ID: "TX3", Direction: walletmodels.DirectionReceived, Amount: decimal.NewFromInt(500), Status: walletmodels.StatusConfirmed},
	}
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))
	assert.Equal(t, []string{"reward:first-transaction"}, minter.mintCalls)
}

func TestEvaluateMintFailureRetries(t *testing.T) {
	minter := &fakeMinter{mintErr: fmt.Errorf("node down")}
	repo := newFakeLedgerRepo()
	svc := NewService(minter, repo, zerolog.Nop())

	history := confirmedSent(1, "1")
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))

	record, err := repo.GetRecord(context.Background(), testAddr, "first-transaction")
	require.NoError(t, err)
	assert.Nil(t, record, "no record may be persisted for a failed mint")
	assert.Empty(t, repo.intents)
	assert.Len(t, minter.mintCalls, 1, "no immediate retry loop")

	// Next evaluation retries and succeeds.
	minter.mintErr = nil
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, history, decimal.Zero))

	record, err = repo.GetRecord(context.Background(), testAddr, "first-transaction")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Len(t, minter.mintCalls, 2)
}

func TestReconcileIntentsBackfillsMintedAsset(t *testing.T) {
	minter := &fakeMinter{
		created: []ledger.CreatedAsset{{ID: 909, Name: "reward:first-transaction"}},
	}
	repo := newFakeLedgerRepo()
	// Simulate a crash after the mint succeeded but before the record write.
	require.NoError(t, repo.SaveIntent(context.Background(), testAddr, models.MintIntent{
		MilestoneName: "first-transaction",
		CreatedAt:     time.Now().Add(-time.Minute),
	}))

	svc := NewService(minter, repo, zerolog.Nop())
	require.NoError(t, svc.ReconcileIntents(context.Background(), testAddr))

	record, err := repo.GetRecord(context.Background(), testAddr, "first-transaction")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, uint64(909), record.AssetID)
	assert.Empty(t, repo.intents)

	// The milestone is now recorded and must not mint again.
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, confirmedSent(1, "1"), decimal.Zero))
	assert.Empty(t, minter.mintCalls)
}

func TestReconcileIntentsDropsUnmintedIntent(t *testing.T) {
	minter := &fakeMinter{}
	repo := newFakeLedgerRepo()
	require.NoError(t, repo.SaveIntent(context.Background(), testAddr, models.MintIntent{
		MilestoneName: "first-transaction",
		CreatedAt:     time.Now(),
	}))

	svc := NewService(minter, repo, zerolog.Nop())
	require.NoError(t, svc.ReconcileIntents(context.Background(), testAddr))

	record, err := repo.GetRecord(context.Background(), testAddr, "first-transaction")
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Empty(t, repo.intents)

	// The milestone stays eligible and issues on the next evaluation.
	require.NoError(t, svc.EvaluateAndIssue(context.Background(), testAddr, confirmedSent(1, "1"), decimal.Zero))
	assert.Len(t, minter.mintCalls, 1)
}
