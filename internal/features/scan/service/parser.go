package service

import (
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"wallet-core-backend/internal/features/scan/models"
)

// fallbackDescriptor is returned for payloads no rule recognizes.
func fallbackDescriptor() models.PaymentDescriptor {
	return models.PaymentDescriptor{
		RailType:  models.RailUnknown,
		Country:   "US",
		Recipient: "Unknown",
		Currency:  "USD",
	}
}

// rule pairs a structural marker with a decoder. Rules are evaluated in
// order and the first match wins, so placement in the table is significant.
type rule struct {
	rail   models.RailType
	match  func(raw, lowered string) bool
	decode func(raw string) models.PaymentDescriptor
}

// Parser classifies and decodes raw scanned payloads into payment
// descriptors. Parse never fails: unrecognized input yields the UNKNOWN
// fallback descriptor.
type Parser struct {
	rules []rule
}

// NewParser builds the parser with the default rail-detection table.
// New rails are added by appending a rule; existing entries are not touched.
func NewParser() *Parser {
	return &Parser{rules: []rule{
		{
			rail:   models.RailUPI,
			match:  func(raw, lowered string) bool { return strings.HasPrefix(lowered, "upi://") },
			decode: decodeUPI,
		},
		{
			rail: models.RailPIX,
			match: func(raw, lowered string) bool {
				return strings.HasPrefix(raw, "00020126") || strings.Contains(lowered, "br.gov.bcb.pix")
			},
			decode: placeholder(models.RailPIX, "BR", "PIX Merchant", "BRL"),
		},
		{
			rail:   models.RailPayNow,
			match:  contains("paynow"),
			decode: placeholder(models.RailPayNow, "SG", "PayNow Merchant", "SGD"),
		},
		{
			rail:   models.RailAlipay,
			match:  contains("alipay"),
			decode: placeholder(models.RailAlipay, "CN", "Alipay Merchant", "CNY"),
		},
		{
			rail:   models.RailZelle,
			match:  contains("zelle"),
			decode: placeholder(models.RailZelle, "US", "Zelle Recipient", "USD"),
		},
		{
			rail:   models.RailVenmo,
			match:  contains("venmo"),
			decode: placeholder(models.RailVenmo, "US", "Venmo Recipient", "USD"),
		},
		{
			rail:   models.RailMPesa,
			match:  contains("mpesa"),
			decode: placeholder(models.RailMPesa, "KE", "M-Pesa Merchant", "KES"),
		},
		{
			rail:   models.RailSEPA,
			match:  func(raw, lowered string) bool { return strings.HasPrefix(raw, "BCD") },
			decode: decodeSEPA,
		},
	}}
}

// Parse decodes a raw scanned string into a payment descriptor.
func (p *Parser) Parse(raw string) models.PaymentDescriptor {
	raw = strings.TrimSpace(raw)
	lowered := strings.ToLower(raw)

	for _, r := range p.rules {
		if r.match(raw, lowered) {
			return r.decode(raw)
		}
	}
	return fallbackDescriptor()
}

func contains(marker string) func(raw, lowered string) bool {
	return func(raw, lowered string) bool {
		return strings.Contains(lowered, marker)
	}
}

func placeholder(rail models.RailType, country, recipient, currency string) func(string) models.PaymentDescriptor {
	return func(string) models.PaymentDescriptor {
		return models.PaymentDescriptor{
			RailType:  rail,
			Country:   country,
			Recipient: recipient,
			Currency:  currency,
		}
	}
}

// decodeUPI extracts the payment intent from a upi://pay?... deep link.
// Query keys: pa = payee address, pn = payee name, am = amount, tr = reference.
func decodeUPI(raw string) models.PaymentDescriptor {
	desc := models.PaymentDescriptor{
		RailType:  models.RailUPI,
		Country:   "IN",
		Recipient: "Unknown",
		Currency:  "INR",
	}

	parts := strings.SplitN(raw, "?", 2)
	if len(parts) != 2 {
		return desc
	}
	values, err := url.ParseQuery(parts[1])
	if err != nil {
		return desc
	}

	if pa := values.Get("pa"); pa != "" {
		desc.Recipient = pa
	}
	desc.MerchantName = values.Get("pn")
	desc.Reference = values.Get("tr")
	if am := values.Get("am"); am != "" {
		if amount, err := decimal.NewFromString(am); err == nil {
			desc.Amount = &amount
		}
	}
	return desc
}

// decodeSEPA reads an EPC payload as newline-delimited fields: line 4 is
// the amount, line 5 the recipient name. Missing lines keep the fallback
// values.
func decodeSEPA(raw string) models.PaymentDescriptor {
	desc := models.PaymentDescriptor{
		RailType:  models.RailSEPA,
		Country:   "EU",
		Recipient: "Unknown",
		Currency:  "EUR",
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > 4 {
		amountField := strings.TrimPrefix(strings.TrimSpace(lines[4]), "EUR")
		if amount, err := decimal.NewFromString(amountField); err == nil {
			desc.Amount = &amount
		}
	}
	if len(lines) > 5 {
		if name := strings.TrimSpace(lines[5]); name != "" {
			desc.Recipient = name
		}
	}
	return desc
}
