package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-core-backend/internal/common/errors"
)

func TestGenerateAccount(t *testing.T) {
	account, err := GenerateAccount()
	require.NoError(t, err)

	assert.Len(t, account.Address, AddressLength)
	assert.NoError(t, ValidateAddress(account.Address))
	assert.NotEmpty(t, account.Mnemonic)
	assert.Len(t, account.SecretKey, 64)
}

func TestMnemonicRoundTrip(t *testing.T) {
	account, err := GenerateAccount()
	require.NoError(t, err)

	recovered, err := AccountFromMnemonic(account.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, account.Address, recovered.Address)
	assert.Equal(t, account.SecretKey, recovered.SecretKey)

	// Mnemonic casing and spacing are normalized on import.
	messy := strings.ToUpper(strings.ReplaceAll(account.Mnemonic, " ", "  "))
	recovered, err = AccountFromMnemonic(messy)
	require.NoError(t, err)
	assert.Equal(t, account.Address, recovered.Address)
}

func TestAccountFromMnemonicInvalid(t *testing.T) {
	_, err := AccountFromMnemonic("definitely not a mnemonic 01189998819991197253")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.CodeOf(err))
}

func TestValidateAddress(t *testing.T) {
	valid := strings.Repeat("A", 29) + strings.Repeat("7", 29)
	require.Len(t, valid, 58)
	assert.NoError(t, ValidateAddress(valid))

	tests := []struct {
		name    string
		address string
		reason  string
	}{
		{"57 chars", strings.Repeat("A", 57), "expected 58 characters, got 57"},
		{"59 chars", strings.Repeat("A", 59), "expected 58 characters, got 59"},
		{"empty", "", "expected 58 characters, got 0"},
		{"digit zero", strings.Repeat("A", 57) + "0", "outside A-Z2-7"},
		{"digit one", "1" + strings.Repeat("A", 57), "outside A-Z2-7"},
		{"digit eight", strings.Repeat("B", 30) + "8" + strings.Repeat("B", 27), "outside A-Z2-7"},
		{"digit nine", strings.Repeat("B", 30) + "9" + strings.Repeat("B", 27), "outside A-Z2-7"},
		{"lowercase", strings.Repeat("a", 58), "outside A-Z2-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.address)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeInvalidAddress, appErr.Code)
			assert.Contains(t, appErr.Error(), tt.reason)
		})
	}
}
