package models

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"wallet-core-backend/internal/common/errors"
)

const (
	// AddressLength is the fixed length of a ledger address.
	AddressLength = 58

	addressChecksumLen = 4
	mnemonicGroupLen   = 4
)

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateAccount creates a fresh ed25519 account with a recovery mnemonic.
func GenerateAccount() (*Account, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("failed to read entropy: %w", err)
	}
	return accountFromSeed(seed)
}

// AccountFromMnemonic recovers an account from its mnemonic.
func AccountFromMnemonic(mnemonic string) (*Account, error) {
	compact := strings.ToUpper(strings.Join(strings.Fields(mnemonic), ""))
	seed, err := addressEncoding.DecodeString(compact)
	if err != nil || len(seed) != ed25519.SeedSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Invalid mnemonic")
	}
	return accountFromSeed(seed)
}

func accountFromSeed(seed []byte) (*Account, error) {
	key := ed25519.NewKeyFromSeed(seed)
	pub := key.Public().(ed25519.PublicKey)
	return &Account{
		Address:   EncodeAddress(pub),
		SecretKey: key,
		Mnemonic:  mnemonicFromSeed(seed),
		CreatedAt: time.Now().Unix(),
	}, nil
}

// mnemonicFromSeed renders the seed as lowercase base32 word groups.
func mnemonicFromSeed(seed []byte) string {
	encoded := strings.ToLower(addressEncoding.EncodeToString(seed))
	groups := make([]string, 0, (len(encoded)+mnemonicGroupLen-1)/mnemonicGroupLen)
	for i := 0; i < len(encoded); i += mnemonicGroupLen {
		end := i + mnemonicGroupLen
		if end > len(encoded) {
			end = len(encoded)
		}
		groups = append(groups, encoded[i:end])
	}
	return strings.Join(groups, " ")
}

// EncodeAddress derives the 58-character base32 address of a public key:
// the key bytes followed by the last 4 bytes of their SHA-512/256 digest.
func EncodeAddress(pub ed25519.PublicKey) string {
	digest := sha512.Sum512_256(pub)
	payload := make([]byte, 0, len(pub)+addressChecksumLen)
	payload = append(payload, pub...)
	payload = append(payload, digest[len(digest)-addressChecksumLen:]...)
	return addressEncoding.EncodeToString(payload)
}

// ValidateAddress is the single gate applied before any transfer: exactly
// 58 characters over the base32 alphabet A-Z2-7.
func ValidateAddress(address string) error {
	if len(address) != AddressLength {
		return errors.NewInvalidAddressError(
			fmt.Sprintf("expected %d characters, got %d", AddressLength, len(address)))
	}
	for _, r := range address {
		if (r < 'A' || r > 'Z') && (r < '2' || r > '7') {
			return errors.NewInvalidAddressError("address contains characters outside A-Z2-7")
		}
	}
	return nil
}
