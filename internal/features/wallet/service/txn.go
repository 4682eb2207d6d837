package service

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"

	"wallet-core-backend/internal/features/wallet/models"
	"wallet-core-backend/internal/platform/ledger"
)

// paymentTxn is the canonical wire form of a payment transaction.
type paymentTxn struct {
	Type       string `json:"type"`
	Sender     string `json:"snd"`
	Receiver   string `json:"rcv"`
	Amount     uint64 `json:"amt"`
	Fee        uint64 `json:"fee"`
	FirstRound uint64 `json:"fv"`
	LastRound  uint64 `json:"lv"`
	GenesisID  string `json:"gen"`
	Note       string `json:"note,omitempty"`
}

type signedTxn struct {
	Txn paymentTxn `json:"txn"`
	Sig []byte     `json:"sig"`
}

// buildSignedPayment assembles a payment transaction from the suggested
// parameters and signs it with the account's key material.
func buildSignedPayment(account *models.Account, to string, amountMinor uint64, note string, params ledger.Params) ([]byte, error) {
	txn := paymentTxn{
		Type:       "pay",
		Sender:     account.Address,
		Receiver:   to,
		Amount:     amountMinor,
		Fee:        params.FeeMinor,
		FirstRound: params.FirstRound,
		LastRound:  params.LastRound,
		GenesisID:  params.GenesisID,
		Note:       note,
	}

	encoded, err := json.Marshal(txn)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	signed := signedTxn{
		Txn: txn,
		Sig: ed25519.Sign(ed25519.PrivateKey(account.SecretKey), encoded),
	}
	raw, err := json.Marshal(signed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return raw, nil
}
