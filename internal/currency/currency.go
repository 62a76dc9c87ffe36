// Package currency converts monetary amounts between the minor units that
// payment and ads APIs report (cents, micros) and the major display unit.
// Scaling is done on exact decimals so that amounts like 1999 cents come
// out as 19.99 and never 19.990000000000002.
package currency

import (
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// zeroDecimal lists ISO 4217 currencies with no minor unit.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "ISK": true,
	"JPY": true, "KMF": true, "KRW": true, "PYG": true, "RWF": true,
	"UGX": true, "UYI": true, "VND": true, "VUV": true, "XAF": true,
	"XOF": true, "XPF": true,
}

// threeDecimal lists ISO 4217 currencies with a thousandth minor unit.
var threeDecimal = map[string]bool{
	"BHD": true, "IQD": true, "JOD": true, "KWD": true, "LYD": true,
	"OMR": true, "TND": true,
}

// Decimals returns the number of minor-unit decimal places for an ISO 4217
// currency code. Unknown codes default to 2.
func Decimals(code string) int {
	code = strings.ToUpper(code)
	if zeroDecimal[code] {
		return 0
	}
	if threeDecimal[code] {
		return 3
	}
	return 2
}

// ToMajorUnits converts an amount in a currency's minor unit to the major
// unit: minor / 10^Decimals(code). Zero-decimal currencies pass through
// unscaled (500 JPY stays 500, not 5).
func ToMajorUnits(minor int64, code string) float64 {
	d := apd.New(minor, -int32(Decimals(code)))
	f, _ := d.Float64()
	return f
}

// MicrosToMajor converts a micro-unit amount (Google Ads cost_micros)
// to major units: micros / 1e6.
func MicrosToMajor(micros int64) float64 {
	d := apd.New(micros, -6)
	f, _ := d.Float64()
	return f
}
