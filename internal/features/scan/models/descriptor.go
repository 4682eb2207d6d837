package models

import "github.com/shopspring/decimal"

// RailType names the payment-network format detected in a scanned payload.
type RailType string

const (
	RailUPI     RailType = "UPI"
	RailPIX     RailType = "PIX"
	RailAlipay  RailType = "ALIPAY"
	RailPayNow  RailType = "PAYNOW"
	RailZelle   RailType = "ZELLE"
	RailVenmo   RailType = "VENMO"
	RailMPesa   RailType = "MPESA"
	RailSEPA    RailType = "SEPA"
	RailUnknown RailType = "UNKNOWN"
)

// PaymentDescriptor is the structured payment intent decoded from one scan.
// It is produced once per scan and never mutated.
type PaymentDescriptor struct {
	RailType     RailType         `json:"rail_type"`
	Country      string           `json:"country"`
	Recipient    string           `json:"recipient"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Currency     string           `json:"currency"`
	Reference    string           `json:"reference,omitempty"`
	MerchantName string           `json:"merchant_name,omitempty"`
}
