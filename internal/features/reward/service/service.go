package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/common/errors"
	"wallet-core-backend/internal/features/reward/models"
	"wallet-core-backend/internal/features/reward/repository"
	walletmodels "wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/platform/ledger"
)

// Service evaluates milestone rules against account activity and issues
// each reward at most once. Evaluations for the same engine instance are
// serialized; the mutex doubles as the exclusive-writer discipline over
// the reward ledger.
type Service struct {
	minter     LedgerMinter
	repo       repository.RewardLedger
	milestones []models.Milestone
	logger     zerolog.Logger

	mu sync.Mutex
}

func NewService(minter LedgerMinter, repo repository.RewardLedger, logger zerolog.Logger) *Service {
	return &Service{
		minter:     minter,
		repo:       repo,
		milestones: models.DefaultMilestones(),
		logger:     logger.With().Str("component", "reward_engine").Logger(),
	}
}

// EvaluateAndIssue checks every milestone against the account's confirmed
// history and mints rewards for newly satisfied ones. A mint failure is
// logged and left retryable for the next evaluation; it never propagates
// into the payment flow.
func (s *Service) EvaluateAndIssue(ctx context.Context, address string, history []walletmodels.TransactionRecord, rewardBalance decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := aggregate(history, rewardBalance)

	for _, milestone := range s.milestones {
		if !milestone.Rule(agg) {
			continue
		}

		existing, err := s.repo.GetRecord(ctx, address, milestone.Name)
		if err != nil {
			return fmt.Errorf("failed to consult reward ledger: %w", err)
		}
		if existing != nil {
			continue
		}

		s.issue(ctx, address, milestone)
	}
	return nil
}

// issue performs one at-most-once mint: intent first, then the mint call,
// then the record write that closes the intent.
func (s *Service) issue(ctx context.Context, address string, milestone models.Milestone) {
	if err := s.repo.SaveIntent(ctx, address, models.MintIntent{
		MilestoneName: milestone.Name,
		CreatedAt:     time.Now(),
	}); err != nil {
		s.logger.Error().Err(err).
			Str("milestone", milestone.Name).
			Msg("Failed to persist mint intent, skipping issue")
		return
	}

	assetID, err := s.minter.MintRewardAsset(ctx, address, ledger.AssetMetadata{
		Name:     milestone.AssetName(),
		UnitName: "RWD",
		Total:    1,
	})
	if err != nil {
		// Leave no record so the milestone retries on the next
		// evaluation; the intent is cleared to keep it eligible.
		s.logger.Warn().Err(errors.NewRewardMintFailure(milestone.Name, err)).
			Str("milestone", milestone.Name).
			Msg("Reward mint failed, will retry on next evaluation")
		if derr := s.repo.DeleteIntent(ctx, address, milestone.Name); derr != nil {
			s.logger.Error().Err(derr).Str("milestone", milestone.Name).Msg("Failed to clear mint intent")
		}
		return
	}

	record := models.RewardRecord{
		MilestoneName: milestone.Name,
		Rarity:        milestone.Rarity,
		IssuedAt:      time.Now(),
		AssetID:       assetID,
	}
	if err := s.repo.SaveRecord(ctx, address, record); err != nil {
		// The intent stays behind and reconciliation will backfill the
		// record from the minted asset on the next start.
		s.logger.Error().Err(err).
			Str("milestone", milestone.Name).
			Uint64("asset_id", assetID).
			Msg("Minted reward but failed to persist record")
		return
	}
	if err := s.repo.DeleteIntent(ctx, address, milestone.Name); err != nil {
		s.logger.Error().Err(err).Str("milestone", milestone.Name).Msg("Failed to clear mint intent")
	}

	s.logger.Info().
		Str("milestone", milestone.Name).
		Str("rarity", string(milestone.Rarity)).
		Uint64("asset_id", assetID).
		Msg("Issued milestone reward")
}

// ReconcileIntents resolves mint intents orphaned by a crash between a
// successful mint and the record write. An intent whose asset exists on
// the ledger gets its record backfilled; otherwise the intent is dropped
// and the milestone becomes eligible again.
func (s *Service) ReconcileIntents(ctx context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intents, err := s.repo.ListIntents(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to list mint intents: %w", err)
	}
	if len(intents) == 0 {
		return nil
	}

	assets, err := s.minter.GetCreatedAssets(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to fetch created assets: %w", err)
	}

	for _, intent := range intents {
		milestone, ok := s.milestoneByName(intent.MilestoneName)
		if !ok {
			s.logger.Warn().Str("milestone", intent.MilestoneName).Msg("Dropping intent for unknown milestone")
			_ = s.repo.DeleteIntent(ctx, address, intent.MilestoneName)
			continue
		}

		var minted *ledger.CreatedAsset
		for i := range assets {
			if assets[i].Name == milestone.AssetName() {
				minted = &assets[i]
				break
			}
		}

		if minted != nil {
			record := models.RewardRecord{
				MilestoneName: milestone.Name,
				Rarity:        milestone.Rarity,
				IssuedAt:      intent.CreatedAt,
				AssetID:       minted.ID,
			}
			if err := s.repo.SaveRecord(ctx, address, record); err != nil {
				return fmt.Errorf("failed to backfill reward record: %w", err)
			}
			s.logger.Info().
				Str("milestone", milestone.Name).
				Uint64("asset_id", minted.ID).
				Msg("Backfilled reward record from orphaned mint intent")
		}

		if err := s.repo.DeleteIntent(ctx, address, intent.MilestoneName); err != nil {
			return fmt.Errorf("failed to clear mint intent: %w", err)
		}
	}
	return nil
}

// ListIssued returns the rewards already issued to the account.
func (s *Service) ListIssued(ctx context.Context, address string) ([]models.RewardRecord, error) {
	return s.repo.ListRecords(ctx, address)
}

func (s *Service) milestoneByName(name string) (models.Milestone, bool) {
	for _, m := range s.milestones {
		if m.Name == name {
			return m, true
		}
	}
	return models.Milestone{}, false
}

func aggregate(history []walletmodels.TransactionRecord, rewardBalance decimal.Decimal) models.Aggregates {
	agg := models.Aggregates{
		TotalVolume:   decimal.Zero,
		RewardBalance: rewardBalance,
	}
	for _, record := range history {
		if record.Status != walletmodels.StatusConfirmed {
			continue
		}
		agg.TransactionCount++
		if record.Direction == walletmodels.DirectionSent {
			agg.TotalVolume = agg.TotalVolume.Add(record.Amount)
		}
	}
	return agg
}
