package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/common/errors"
)

const defaultPollInterval = 2 * time.Second

// Client implements ledger node access via its HTTP API.
type Client struct {
	baseURL       string
	token         string
	rewardAssetID uint64
	pollInterval  time.Duration
	httpClient    *http.Client
}

// NewClient initializes an HTTP-based ledger node client. rewardAssetID is
// the asset whose holding is reported as the reward balance; zero disables
// reward balance lookups.
func NewClient(baseURL, token string, rewardAssetID uint64) *Client {
	return &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		rewardAssetID: rewardAssetID,
		pollInterval:  defaultPollInterval,
		httpClient:    &http.Client{Timeout: 8 * time.Second},
	}
}

// WithPollInterval overrides the confirmation polling cadence.
func (c *Client) WithPollInterval(d time.Duration) *Client {
	if d > 0 {
		c.pollInterval = d
	}
	return c
}

type accountInfo struct {
	Address     string `json:"address"`
	AmountMinor uint64 `json:"amount"`
	Assets      []struct {
		AssetID     uint64 `json:"asset-id"`
		AmountMinor uint64 `json:"amount"`
	} `json:"assets"`
	CreatedAssets []struct {
		Index  uint64 `json:"index"`
		Params struct {
			Name string `json:"name"`
		} `json:"params"`
	} `json:"created-assets"`
}

// GetBalance returns the spendable balance of the address in currency units.
func (c *Client) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	info, err := c.getAccountInfo(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	return FromMinorUnits(info.AmountMinor), nil
}

// GetRewardBalance returns the reward-token holding of the address in
// whole token units.
func (c *Client) GetRewardBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	if c.rewardAssetID == 0 {
		return decimal.Zero, nil
	}
	info, err := c.getAccountInfo(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	for _, a := range info.Assets {
		if a.AssetID == c.rewardAssetID {
			return FromMinorUnits(a.AmountMinor), nil
		}
	}
	return decimal.Zero, nil
}

// GetCreatedAssets lists assets created by the address.
func (c *Client) GetCreatedAssets(ctx context.Context, address string) ([]CreatedAsset, error) {
	info, err := c.getAccountInfo(ctx, address)
	if err != nil {
		return nil, err
	}
	assets := make([]CreatedAsset, 0, len(info.CreatedAssets))
	for _, a := range info.CreatedAssets {
		assets = append(assets, CreatedAsset{ID: a.Index, Name: a.Params.Name})
	}
	return assets, nil
}

func (c *Client) getAccountInfo(ctx context.Context, address string) (*accountInfo, error) {
	var info accountInfo
	if err := c.doGet(ctx, "/v2/accounts/"+address, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetTransactionParams returns fee and validity-window parameters for
// building a transaction.
func (c *Client) GetTransactionParams(ctx context.Context) (Params, error) {
	var params Params
	if err := c.doGet(ctx, "/v2/transactions/params", &params); err != nil {
		return Params{}, err
	}
	return params, nil
}

// SubmitSignedTransaction broadcasts raw signed transaction bytes and
// returns the assigned transaction id.
func (c *Client) SubmitSignedTransaction(ctx context.Context, raw []byte) (string, error) {
	var out struct {
		TxID string `json:"txId"`
	}
	if err := c.doPost(ctx, "/v2/transactions", raw, &out); err != nil {
		return "", err
	}
	if out.TxID == "" {
		return "", errors.New(errors.ErrCodeTransactionRejected, "Ledger node returned no transaction id")
	}
	return out.TxID, nil
}

// WaitForConfirmation polls the pending-transaction endpoint until the
// transaction is settled, rejected, the timeout elapses or ctx is done.
func (c *Client) WaitForConfirmation(ctx context.Context, txID string, timeout time.Duration) (Outcome, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		info, err := c.getPendingInfo(ctx, txID)
		if err == nil {
			if info.PoolError != "" {
				return Outcome{}, errors.New(errors.ErrCodeTransactionRejected, "Transaction rejected by ledger node").
					WithDetail("tx_id", txID).
					WithDetail("pool_error", info.PoolError)
			}
			if info.ConfirmedRound > 0 {
				return Outcome{TxID: txID, ConfirmedRound: info.ConfirmedRound}, nil
			}
		} else if appErr, ok := errors.AsAppError(err); !ok ||
			(appErr.Code != errors.ErrCodeLedgerUnavailable && appErr.Code != errors.ErrCodeNotFound) {
			return Outcome{}, err
		}
		// Transient node failures and not-yet-visible transactions keep
		// polling until the deadline.

		if time.Now().After(deadline) {
			return Outcome{}, errors.NewConfirmationTimeoutError(txID)
		}

		select {
		case <-ctx.Done():
			return Outcome{}, errors.NewCancelledError(txID)
		case <-ticker.C:
		}
	}
}

func (c *Client) getPendingInfo(ctx context.Context, txID string) (PendingInfo, error) {
	var info PendingInfo
	if err := c.doGet(ctx, "/v2/transactions/pending/"+txID, &info); err != nil {
		return PendingInfo{}, err
	}
	return info, nil
}

// GetTransactionHistory returns settled transactions touching the address,
// newest first.
func (c *Client) GetTransactionHistory(ctx context.Context, address string) ([]HistoryEntry, error) {
	var out struct {
		Transactions []HistoryEntry `json:"transactions"`
	}
	if err := c.doGet(ctx, "/v2/accounts/"+address+"/transactions", &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// MintRewardAsset submits an asset-creation transaction for the owner and
// returns the new asset id.
func (c *Client) MintRewardAsset(ctx context.Context, owner string, metadata AssetMetadata) (uint64, error) {
	body, err := json.Marshal(struct {
		Owner string `json:"owner"`
		AssetMetadata
	}{Owner: owner, AssetMetadata: metadata})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal asset request: %w", err)
	}

	var out struct {
		AssetID uint64 `json:"assetId"`
	}
	if err := c.doPost(ctx, "/v2/assets", body, &out); err != nil {
		return 0, err
	}
	if out.AssetID == 0 {
		return 0, errors.New(errors.ErrCodeRewardMintFailure, "Ledger node returned no asset id")
	}
	return out.AssetID, nil
}

func (c *Client) doGet(ctx context.Context, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.NewLedgerUnavailableError(path, err)
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)
	return c.do(req, path, dest)
}

func (c *Client) doPost(ctx context.Context, path string, body []byte, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.NewLedgerUnavailableError(path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)
	return c.do(req, path, dest)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) do(req *http.Request, operation string, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return errors.NewCancelledError("")
		}
		return errors.NewLedgerUnavailableError(operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest:
		return errors.New(errors.ErrCodeTransactionRejected, "Ledger node rejected the request").
			WithDetail("operation", operation)
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "Ledger resource not found").
			WithDetail("operation", operation)
	default:
		return errors.NewLedgerUnavailableError(operation, fmt.Errorf("ledger node http %d", resp.StatusCode))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.NewLedgerUnavailableError(operation, fmt.Errorf("invalid response body: %w", err))
	}
	return nil
}
