package paytr

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ISO 4217 currencies without a minor unit
var zeroDecimalCurrencies = map[string]struct{}{
	"BIF": {}, "CLP": {}, "DJF": {}, "GNF": {}, "ISK": {}, "JPY": {}, "KMF": {}, "KRW": {},
	"PYG": {}, "RWF": {}, "UGX": {}, "VND": {}, "VUV": {}, "XAF": {}, "XOF": {}, "XPF": {},
}

// MajorUnits converts an amount in minor units (kuruş, cents) to major units
func MajorUnits(amountMinor int64, currency string) decimal.Decimal {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(currency)]; ok {
		return decimal.NewFromInt(amountMinor)
	}
	return decimal.New(amountMinor, -2)
}

// FormatMajorUnits renders MajorUnits with the currency's fixed precision
func FormatMajorUnits(amountMinor int64, currency string) string {
	if _, ok := zeroDecimalCurrencies[strings.ToUpper(currency)]; ok {
		return MajorUnits(amountMinor, currency).StringFixed(0)
	}
	return MajorUnits(amountMinor, currency).StringFixed(2)
}
