package repository

import (
	"context"

	"wallet-core-backend/internal/features/reward/models"
)

// RewardLedger persists issued-milestone records and mint intents per
// account. Writers must be exclusive; the reward engine serializes access.
type RewardLedger interface {
	// GetRecord returns the record for a milestone, or nil when the
	// milestone was never issued.
	GetRecord(ctx context.Context, address, milestoneName string) (*models.RewardRecord, error)
	SaveRecord(ctx context.Context, address string, record models.RewardRecord) error
	ListRecords(ctx context.Context, address string) ([]models.RewardRecord, error)

	SaveIntent(ctx context.Context, address string, intent models.MintIntent) error
	DeleteIntent(ctx context.Context, address, milestoneName string) error
	ListIntents(ctx context.Context, address string) ([]models.MintIntent, error)
}
