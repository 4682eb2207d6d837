package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-core-backend/internal/common/errors"
)

const testAddr = "7ZUECA7HFLZTXENRV24SHLU4AVPUTMTTDUFUBNBD64C73F3UHRTHAIOF6Q"

func newTestNode(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-token", 77).WithPollInterval(5 * time.Millisecond)
}

func TestGetBalance(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/"+testAddr, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"address": testAddr,
			"amount":  12_500_000,
			"assets": []map[string]interface{}{
				{"asset-id": 77, "amount": 3_000_000},
				{"asset-id": 12, "amount": 999},
			},
		})
	})

	balance, err := client.GetBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("12.5")), "got %s", balance)

	reward, err := client.GetRewardBalance(context.Background(), testAddr)
	require.NoError(t, err)
	assert.True(t, reward.Equal(decimal.RequireFromString("3")), "got %s", reward)
}

func TestGetBalanceLedgerUnavailable(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.GetBalance(context.Background(), testAddr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLedgerUnavailable, errors.CodeOf(err))
}

func TestGetBalanceMalformedBaseURL(t *testing.T) {
	client := NewClient("http://ledger host:4001", "", 0)

	_, err := client.GetBalance(context.Background(), testAddr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLedgerUnavailable, errors.CodeOf(err))
}

func TestGetBalanceConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", 0)

	_, err := client.GetBalance(context.Background(), testAddr)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeLedgerUnavailable, errors.CodeOf(err))
}

func TestGetTransactionParams(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/transactions/params", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"fee":         1000,
			"first-round": 500,
			"last-round":  1500,
			"genesis-id":  "testnet-v1.0",
		})
	})

	params, err := client.GetTransactionParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), params.FeeMinor)
	assert.Equal(t, uint64(500), params.FirstRound)
	assert.Equal(t, uint64(1500), params.LastRound)
	assert.Equal(t, "testnet-v1.0", params.GenesisID)
}

func TestSubmitSignedTransaction(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/transactions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"txId": "TX123"})
	})

	txID, err := client.SubmitSignedTransaction(context.Background(), []byte(`{"txn":{}}`))
	require.NoError(t, err)
	assert.Equal(t, "TX123", txID)
}

func TestWaitForConfirmationConfirmed(t *testing.T) {
	var polls int32
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&polls, 1)
		info := map[string]interface{}{"confirmed-round": 0}
		if n >= 3 {
			info["confirmed-round"] = 4242
		}
		json.NewEncoder(w).Encode(info)
	})

	outcome, err := client.WaitForConfirmation(context.Background(), "TX123", time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint64(4242), outcome.ConfirmedRound)
	assert.Equal(t, "TX123", outcome.TxID)
}

func TestWaitForConfirmationTimeout(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"confirmed-round": 0})
	})

	_, err := client.WaitForConfirmation(context.Background(), "TX123", 30*time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfirmationTimeout, errors.CodeOf(err))
}

func TestWaitForConfirmationCancelled(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"confirmed-round": 0})
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.WaitForConfirmation(ctx, "TX123", time.Minute)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeCancelled, errors.CodeOf(err))
}

func TestWaitForConfirmationPoolError(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"confirmed-round": 0,
			"pool-error":      "overspend",
		})
	})

	_, err := client.WaitForConfirmation(context.Background(), "TX123", time.Second)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeTransactionRejected, errors.CodeOf(err))
}

func TestGetTransactionHistory(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/accounts/"+testAddr+"/transactions", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions": []map[string]interface{}{
				{"id": "TX2", "sender": testAddr, "receiver": "OTHER", "amount": 5_000_000, "fee": 1000, "confirmed-round": 900},
				{"id": "TX1", "sender": "OTHER", "receiver": testAddr, "amount": 1_000_000, "fee": 1000, "confirmed-round": 800},
			},
		})
	})

	history, err := client.GetTransactionHistory(context.Background(), testAddr)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "TX2", history[0].ID)
	assert.Equal(t, uint64(5_000_000), history[0].AmountMinor)
}

func TestMintRewardAsset(t *testing.T) {
	client := newTestNode(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/assets", r.URL.Path)
		var body struct {
			Owner string `json:"owner"`
			Name  string `json:"name"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, testAddr, body.Owner)
		assert.Equal(t, "reward:first-transaction", body.Name)
		json.NewEncoder(w).Encode(map[string]uint64{"assetId": 555})
	})

	assetID, err := client.MintRewardAsset(context.Background(), testAddr, AssetMetadata{
		Name:     "reward:first-transaction",
		UnitName: "RWD",
		Total:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(555), assetID)
}

func TestMinorUnitConversion(t *testing.T) {
	assert.True(t, FromMinorUnits(1_500_000).Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, uint64(1_500_000), ToMinorUnits(decimal.RequireFromString("1.5")))
	assert.Equal(t, uint64(0), ToMinorUnits(decimal.Zero))
}
