package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/common/errors"
	"wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/features/wallet/repository"
	"wallet-core-backend/internal/platform/ledger"
)

// Config tunes the engine's background behavior.
type Config struct {
	SyncInterval   time.Duration
	ConfirmTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.SyncInterval <= 0 {
		c.SyncInterval = 30 * time.Second
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = 90 * time.Second
	}
	return c
}

// WalletEngine owns the account lifecycle and the single mutable wallet
// state. All state reads and writes go through its API; subscribers
// observe copies.
//
// Lifecycle: Disconnected -> Connecting -> Connected -> (Submitting <->
// Connected) -> Disconnected.
type WalletEngine struct {
	store     repository.AccountStore
	ledger    LedgerClient
	rewards   RewardEvaluator
	publisher *StatePublisher
	logger    zerolog.Logger
	cfg       Config

	mu            sync.Mutex
	state         models.WalletState
	account       *models.Account
	records       []models.TransactionRecord
	balanceKnown  bool
	submitting    bool
	sessionCtx    context.Context
	sessionCancel context.CancelFunc
}

func NewWalletEngine(store repository.AccountStore, ledgerClient LedgerClient, rewards RewardEvaluator, cfg Config, logger zerolog.Logger) *WalletEngine {
	initial := models.NewWalletState()
	return &WalletEngine{
		store:     store,
		ledger:    ledgerClient,
		rewards:   rewards,
		publisher: NewStatePublisher(initial),
		logger:    logger.With().Str("component", "wallet_engine").Logger(),
		cfg:       cfg.withDefaults(),
		state:     initial,
	}
}

// Subscribe attaches a wallet-state listener; see StatePublisher.
func (e *WalletEngine) Subscribe(listener func(models.WalletState)) func() {
	return e.publisher.Subscribe(listener)
}

// State returns a copy of the current wallet state.
func (e *WalletEngine) State() models.WalletState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Transactions returns a copy of the known transaction records, newest first.
func (e *WalletEngine) Transactions() []models.TransactionRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.TransactionRecord, len(e.records))
	copy(out, e.records)
	return out
}

// commitLocked publishes the current state. Callers hold e.mu, which
// serializes snapshot ordering.
func (e *WalletEngine) commitLocked() {
	e.publisher.Publish(e.state)
}

// CreateAccount generates a fresh account, persists it and connects.
func (e *WalletEngine) CreateAccount(ctx context.Context) (*models.Account, error) {
	account, err := models.GenerateAccount()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "Failed to generate account")
	}
	if err := e.connect(ctx, account, true); err != nil {
		return nil, err
	}
	return account, nil
}

// ImportAccount recovers an account from its mnemonic, persists it and
// connects.
func (e *WalletEngine) ImportAccount(ctx context.Context, mnemonic string) (*models.Account, error) {
	account, err := models.AccountFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	if err := e.connect(ctx, account, true); err != nil {
		return nil, err
	}
	return account, nil
}

// RestoreSession reconnects an account left in secure storage by a
// previous run. It is a no-op when nothing is stored.
func (e *WalletEngine) RestoreSession(ctx context.Context) error {
	account, err := e.store.Load(ctx)
	if err != nil {
		return errors.NewStorageError("load account", err)
	}
	if account == nil {
		return nil
	}
	e.logger.Info().Str("address", account.Address).Msg("Restoring persisted wallet session")
	return e.connect(ctx, account, false)
}

func (e *WalletEngine) connect(ctx context.Context, account *models.Account, persist bool) error {
	e.mu.Lock()
	if e.account != nil {
		e.mu.Unlock()
		return errors.New(errors.ErrCodeAlreadyConnected, "A wallet is already connected")
	}

	// Disconnected -> Connecting
	e.state.IsLoading = true
	e.state.LastError = ""
	e.commitLocked()
	e.mu.Unlock()

	if persist {
		if err := e.store.Save(ctx, account); err != nil {
			e.mu.Lock()
			e.state.IsLoading = false
			e.state.LastError = "Failed to persist account"
			e.commitLocked()
			e.mu.Unlock()
			return errors.NewStorageError("save account", err)
		}
	}

	sessionCtx, cancel := context.WithCancel(context.Background())

	e.mu.Lock()
	if e.account != nil {
		// Lost the race to a concurrent connect.
		e.state.IsLoading = false
		e.commitLocked()
		e.mu.Unlock()
		cancel()
		return errors.New(errors.ErrCodeAlreadyConnected, "A wallet is already connected")
	}
	e.account = account
	e.sessionCtx = sessionCtx
	e.sessionCancel = cancel
	e.records = nil
	e.balanceKnown = false

	// Connecting -> Connected
	e.state.IsConnected = true
	e.state.Address = account.Address
	e.state.IsLoading = false
	e.commitLocked()
	e.mu.Unlock()

	e.logger.Info().Str("address", account.Address).Msg("Wallet connected")

	if e.rewards != nil {
		if err := e.rewards.ReconcileIntents(sessionCtx, account.Address); err != nil {
			e.logger.Warn().Err(err).Msg("Mint-intent reconciliation failed")
		}
	}

	// One immediate fetch, then the periodic loop.
	e.refresh(sessionCtx)
	go e.syncLoop(sessionCtx)

	return nil
}

// Disconnect cancels the sync loop and any in-flight confirmation wait,
// wipes the stored account and resets the state to defaults.
func (e *WalletEngine) Disconnect(ctx context.Context) error {
	e.mu.Lock()
	if e.account == nil {
		e.mu.Unlock()
		return nil
	}
	address := e.account.Address
	if e.sessionCancel != nil {
		e.sessionCancel()
	}
	e.account = nil
	e.sessionCtx = nil
	e.sessionCancel = nil
	e.records = nil
	e.balanceKnown = false
	e.submitting = false
	e.state = models.NewWalletState()
	e.commitLocked()
	e.mu.Unlock()

	if err := e.store.Delete(ctx); err != nil {
		e.logger.Error().Err(err).Msg("Failed to erase stored account")
		return errors.NewStorageError("delete account", err)
	}

	e.logger.Info().Str("address", address).Msg("Wallet disconnected")
	return nil
}

// SubmitPayment builds, signs, broadcasts and confirms one payment. A
// second call while one is in flight is rejected; the engine serializes
// submissions because the account has sequencing constraints on the
// ledger.
func (e *WalletEngine) SubmitPayment(ctx context.Context, to string, amount decimal.Decimal, note string) (models.TransactionRecord, error) {
	e.mu.Lock()
	if e.account == nil {
		e.mu.Unlock()
		return models.TransactionRecord{}, errors.NewNotConnectedError()
	}
	if err := models.ValidateAddress(to); err != nil {
		e.mu.Unlock()
		return models.TransactionRecord{}, err
	}
	if !amount.IsPositive() {
		e.mu.Unlock()
		return models.TransactionRecord{}, errors.New(errors.ErrCodeInvalidInput, "Payment amount must be positive")
	}
	if e.submitting {
		e.mu.Unlock()
		return models.TransactionRecord{}, errors.NewSubmissionInProgressError()
	}
	if e.balanceKnown && amount.GreaterThan(e.state.PrimaryBalance) {
		e.mu.Unlock()
		return models.TransactionRecord{}, errors.NewInsufficientBalanceError(
			amount.String(), e.state.PrimaryBalance.String())
	}

	account := e.account
	sessionCtx := e.sessionCtx
	e.submitting = true

	// Connected -> Submitting
	e.state.IsLoading = true
	e.state.LastError = ""
	e.commitLocked()
	e.mu.Unlock()

	record := models.TransactionRecord{
		ID:        uuid.New().String(),
		Direction: models.DirectionSent,
		Amount:    amount,
		From:      account.Address,
		To:        to,
		Fee:       decimal.Zero,
		Note:      note,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	outcome, err := e.broadcastAndConfirm(sessionCtx, account, &record)
	return e.finishSubmission(sessionCtx, record, outcome, err)
}

func (e *WalletEngine) broadcastAndConfirm(ctx context.Context, account *models.Account, record *models.TransactionRecord) (ledger.Outcome, error) {
	params, err := e.ledger.GetTransactionParams(ctx)
	if err != nil {
		return ledger.Outcome{}, err
	}

	raw, err := buildSignedPayment(account, record.To, ledger.ToMinorUnits(record.Amount), record.Note, params)
	if err != nil {
		return ledger.Outcome{}, errors.Wrap(err, errors.ErrCodeInternal, "Failed to build transaction")
	}

	txID, err := e.ledger.SubmitSignedTransaction(ctx, raw)
	if err != nil {
		return ledger.Outcome{}, err
	}
	record.ID = txID
	record.Fee = ledger.FromMinorUnits(params.FeeMinor)

	e.logger.Info().
		Str("tx_id", txID).
		Str("to", record.To).
		Str("amount", record.Amount.String()).
		Msg("Payment broadcast, waiting for confirmation")

	return e.ledger.WaitForConfirmation(ctx, txID, e.cfg.ConfirmTimeout)
}

// finishSubmission commits the terminal record, returns the engine to
// Connected and kicks off the post-confirmation refresh and reward
// evaluation. A submission that outlived its session (disconnect, or
// disconnect plus reconnect) only reports back to its caller; it must
// not touch the records or state of a newer session.
func (e *WalletEngine) finishSubmission(sessionCtx context.Context, record models.TransactionRecord, outcome ledger.Outcome, submitErr error) (models.TransactionRecord, error) {
	if submitErr == nil {
		record.Status = models.StatusConfirmed
		record.ConfirmedRound = outcome.ConfirmedRound
	} else {
		record.Status = models.StatusFailed
		if errors.CodeOf(submitErr) == errors.ErrCodeConfirmationTimeout {
			// Outcome unknown: the transaction may still settle. Keep the
			// record pending so the next history fetch reconciles it.
			record.Status = models.StatusPending
		}
	}

	e.mu.Lock()
	sameSession := e.account != nil && e.sessionCtx == sessionCtx
	if sameSession {
		e.submitting = false
		e.records = append([]models.TransactionRecord{record}, e.records...)

		// Submitting -> Connected
		e.state.IsLoading = false
		if submitErr != nil {
			e.state.LastError = submitErr.Error()
		} else {
			e.state.LastError = ""
		}
		e.commitLocked()
	}
	e.mu.Unlock()

	if submitErr != nil {
		e.logger.Warn().Err(submitErr).Str("tx_id", record.ID).Msg("Payment submission failed")
		return record, submitErr
	}

	e.logger.Info().
		Str("tx_id", record.ID).
		Uint64("round", outcome.ConfirmedRound).
		Msg("Payment confirmed")

	if sameSession {
		go e.refresh(sessionCtx)
	}
	return record, nil
}
