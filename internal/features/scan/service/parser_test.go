package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-core-backend/internal/features/scan/models"
)

func TestParseRailDetection(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		raw      string
		rail     models.RailType
		currency string
	}{
		{"upi deep link", "upi://pay?pa=merchant@bank", models.RailUPI, "INR"},
		{"pix emv payload", "00020126580014br.gov.bcb.pix0136a1b2c3d45204000053039865802BR", models.RailPIX, "BRL"},
		{"pix domain marker", "payload with BR.GOV.BCB.PIX inside", models.RailPIX, "BRL"},
		{"paynow", "SGQR PAYNOW transfer 0201", models.RailPayNow, "SGD"},
		{"alipay", "https://qr.alipay.com/fkx12345", models.RailAlipay, "CNY"},
		{"zelle", "https://enroll.zellepay.com/qr-codes?data=abc", models.RailZelle, "USD"},
		{"venmo", "venmo://paycharge?txn=pay&recipients=joe", models.RailVenmo, "USD"},
		{"mpesa", "MPESA*174379*100*254712345678", models.RailMPesa, "KES"},
		{"sepa epc", "BCD\n001\n1\nSCT\nEUR12.00\nACME GmbH\nDE89370400440532013000", models.RailSEPA, "EUR"},
		{"unknown", "hello world", models.RailUnknown, "USD"},
		{"empty", "", models.RailUnknown, "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := parser.Parse(tt.raw)
			assert.Equal(t, tt.rail, desc.RailType)
			assert.Equal(t, tt.currency, desc.Currency)
		})
	}
}

func TestParseUPIFixture(t *testing.T) {
	desc := NewParser().Parse("upi://pay?pa=merchant@bank&pn=Store&am=42.50&tr=REF1")

	assert.Equal(t, models.RailUPI, desc.RailType)
	assert.Equal(t, "merchant@bank", desc.Recipient)
	assert.Equal(t, "Store", desc.MerchantName)
	assert.Equal(t, "INR", desc.Currency)
	assert.Equal(t, "REF1", desc.Reference)
	require.NotNil(t, desc.Amount)
	assert.True(t, desc.Amount.Equal(decimal.RequireFromString("42.50")))
}

func TestParseUPINonNumericAmount(t *testing.T) {
	desc := NewParser().Parse("upi://pay?pa=merchant@bank&am=lots")

	assert.Equal(t, models.RailUPI, desc.RailType)
	assert.Equal(t, "merchant@bank", desc.Recipient)
	assert.Nil(t, desc.Amount)
}

func TestParseUPIMissingQuery(t *testing.T) {
	desc := NewParser().Parse("upi://pay")

	assert.Equal(t, models.RailUPI, desc.RailType)
	assert.Equal(t, "Unknown", desc.Recipient)
	assert.Nil(t, desc.Amount)
}

func TestParseSEPAFields(t *testing.T) {
	desc := NewParser().Parse("BCD\n001\n1\nSCT\n99.95\nNorth Wind Traders\nNL91ABNA0417164300")

	assert.Equal(t, models.RailSEPA, desc.RailType)
	assert.Equal(t, "North Wind Traders", desc.Recipient)
	require.NotNil(t, desc.Amount)
	assert.True(t, desc.Amount.Equal(decimal.RequireFromString("99.95")))
}

func TestParseSEPAShortPayload(t *testing.T) {
	// Lines 4 and 5 are out of range; documented fallbacks apply.
	desc := NewParser().Parse("BCD\n001")

	assert.Equal(t, models.RailSEPA, desc.RailType)
	assert.Equal(t, "Unknown", desc.Recipient)
	assert.Equal(t, "EUR", desc.Currency)
	assert.Nil(t, desc.Amount)
}

func TestParsePrecedence(t *testing.T) {
	parser := NewParser()

	// Contains both a PIX marker and a Zelle marker; the PIX rule sits
	// earlier in the table and wins.
	desc := parser.Parse("zelle payload carrying br.gov.bcb.pix too")
	assert.Equal(t, models.RailPIX, desc.RailType)

	// A UPI-looking mention without the scheme prefix must not trip the
	// UPI rule; the later M-Pesa marker matches instead.
	desc = parser.Parse("pay upi balance via MPESA till 174379")
	assert.Equal(t, models.RailMPesa, desc.RailType)
}

func TestParseImmutableFallback(t *testing.T) {
	parser := NewParser()
	first := parser.Parse("gibberish")
	first.Recipient = "mutated"

	second := parser.Parse("gibberish")
	assert.Equal(t, "Unknown", second.Recipient)
}
