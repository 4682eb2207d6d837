package service

import (
	"context"
	"math"
	"sort"
	"time"

	"wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/platform/ledger"
)

// syncLoop refreshes balances on a fixed cadence until the session context
// is cancelled. Transient ledger failures land in lastError and the loop
// keeps running.
func (e *WalletEngine) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Debug().Msg("Balance sync loop stopped")
			return
		case <-ticker.C:
			e.refresh(ctx)
		}
	}
}

// refresh performs one best-effort fetch of balances and history, commits
// a state update and runs reward evaluation on success.
func (e *WalletEngine) refresh(ctx context.Context) {
	e.mu.Lock()
	if e.account == nil {
		e.mu.Unlock()
		return
	}
	address := e.account.Address
	e.mu.Unlock()

	balance, err := e.ledger.GetBalance(ctx, address)
	if err != nil {
		e.recordSyncError(address, err)
		return
	}
	rewardBalance, err := e.ledger.GetRewardBalance(ctx, address)
	if err != nil {
		e.recordSyncError(address, err)
		return
	}
	history, err := e.ledger.GetTransactionHistory(ctx, address)
	if err != nil {
		e.recordSyncError(address, err)
		return
	}

	e.mu.Lock()
	if e.account == nil || e.account.Address != address {
		// Disconnected while the fetch was in flight.
		e.mu.Unlock()
		return
	}
	e.state.PrimaryBalance = balance
	e.state.RewardBalance = rewardBalance
	e.state.LastError = ""
	e.balanceKnown = true
	e.mergeHistoryLocked(address, history)
	recordsCopy := make([]models.TransactionRecord, len(e.records))
	copy(recordsCopy, e.records)
	e.commitLocked()
	e.mu.Unlock()

	if e.rewards != nil {
		if err := e.rewards.EvaluateAndIssue(ctx, address, recordsCopy, rewardBalance); err != nil {
			e.logger.Warn().Err(err).Msg("Reward evaluation failed")
		}
	}
}

func (e *WalletEngine) recordSyncError(address string, err error) {
	e.logger.Warn().Err(err).Str("address", address).Msg("Balance sync failed")

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.account == nil || e.account.Address != address {
		return
	}
	e.state.LastError = err.Error()
	e.commitLocked()
}

// mergeHistoryLocked folds fetched ledger history into the local record
// list. Records whose outcome was unknown (confirmation timeout) flip to
// confirmed when the ledger shows them settled; entries the engine never
// saw (received payments, submissions from other devices) are inserted.
// The list stays newest first: unsettled local records lead, settled
// ones follow in descending confirmation round.
func (e *WalletEngine) mergeHistoryLocked(address string, history []ledger.HistoryEntry) {
	known := make(map[string]int, len(e.records))
	for i, record := range e.records {
		known[record.ID] = i
	}

	for _, entry := range history {
		if i, ok := known[entry.ID]; ok {
			if e.records[i].Status != models.StatusConfirmed && entry.ConfirmedRound > 0 {
				e.records[i].Status = models.StatusConfirmed
				e.records[i].ConfirmedRound = entry.ConfirmedRound
				e.records[i].Fee = ledger.FromMinorUnits(entry.FeeMinor)
			}
			continue
		}

		direction := models.DirectionReceived
		if entry.Sender == address {
			direction = models.DirectionSent
		}
		e.records = append(e.records, models.TransactionRecord{
			ID:             entry.ID,
			Direction:      direction,
			Amount:         ledger.FromMinorUnits(entry.AmountMinor),
			From:           entry.Sender,
			To:             entry.Receiver,
			Fee:            ledger.FromMinorUnits(entry.FeeMinor),
			Note:           entry.Note,
			Status:         models.StatusConfirmed,
			ConfirmedRound: entry.ConfirmedRound,
		})
	}

	sort.SliceStable(e.records, func(i, j int) bool {
		return recordSortKey(e.records[i]) > recordSortKey(e.records[j])
	})
}

// recordSortKey orders records newest first. Unsettled local records
// have no round yet and sort ahead of everything settled.
func recordSortKey(r models.TransactionRecord) uint64 {
	if r.ConfirmedRound == 0 {
		return math.MaxUint64
	}
	return r.ConfirmedRound
}
