package marketdata

import "strings"

// FallbackATRMultiplier returns the percentage-of-price ATR approximation
// used when the provider has no ATR for the symbol. The buckets reflect
// typical realized volatility per asset class.
func FallbackATRMultiplier(symbol string) float64 {
	clean := strings.ToUpper(symbol)

	switch {
	case strings.Contains(clean, "XAU") || strings.Contains(clean, "GOLD"):
		return 0.012 // gold
	case strings.Contains(clean, "BTC") || strings.Contains(clean, "ETH") ||
		strings.Contains(clean, "CRYPTO"):
		return 0.02 // crypto
	case strings.Contains(clean, "EUR") || strings.Contains(clean, "GBP") ||
		strings.Contains(clean, "JPY") || strings.Contains(clean, "USD"):
		return 0.005 // forex majors
	}
	return 0.01
}
