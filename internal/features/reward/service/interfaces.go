package service

import (
	"context"

	"wallet-core-backend/internal/platform/ledger"
)

// LedgerMinter is the slice of the ledger client the reward engine needs.
type LedgerMinter interface {
	MintRewardAsset(ctx context.Context, owner string, metadata ledger.AssetMetadata) (uint64, error)
	GetCreatedAssets(ctx context.Context, address string) ([]ledger.CreatedAsset, error)
}
