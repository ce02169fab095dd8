// Package utils provides common helpers for tickers, IST time and INR formatting.
package utils

import (
	"sort"
	"strings"
)

// Common NSE company-name aliases, used when resolving tickers mentioned in
// free-text headlines. Holdings are never rewritten through this table.
var tickerAliases = map[string]string{
	"RIL":                "RELIANCE",
	"RELIANCE":           "RELIANCE",
	"TCS":                "TCS",
	"INFOSYS":            "INFY",
	"INFY":               "INFY",
	"HDFC":               "HDFC",
	"HDFC BANK":          "HDFCBANK",
	"HDFCBANK":           "HDFCBANK",
	"ICICI":              "ICICI",
	"ICICI BANK":         "ICICIBANK",
	"ICICIBANK":          "ICICIBANK",
	"SBI":                "SBI",
	"STATE BANK":         "SBI",
	"AIRTEL":             "BHARTIARTL",
	"BHARTI AIRTEL":      "BHARTIARTL",
	"WIPRO":              "WIPRO",
	"HCL TECH":           "HCLTECH",
	"HCLTECH":            "HCLTECH",
	"MARUTI":             "MARUTI",
	"MARUTI SUZUKI":      "MARUTI",
	"TATA MOTORS":        "TATAMOTOR",
	"TATAMOTORS":         "TATAMOTOR",
	"TATA STEEL":         "TATASTEEL",
	"SUN PHARMA":         "SUNPHARMA",
	"SUNPHARMA":          "SUNPHARMA",
	"DR REDDY":           "DRREDDY",
	"DRREDDY":            "DRREDDY",
	"CIPLA":              "CIPLA",
	"LUPIN":              "LUPIN",
	"ADANI PORTS":        "ADANIPORTS",
	"ADANI GREEN":        "ADANIGREEN",
	"ADANI POWER":        "ADANIPOWER",
	"MAHINDRA":           "M&M",
	"BAJAJ AUTO":         "BAJAJ-AUTO",
	"ITC":                "ITC",
	"LARSEN":             "LT",
	"KOTAK":              "KOTAKBANK",
	"AXIS BANK":          "AXISBANK",
	"ASIAN PAINTS":       "ASIANPAINT",
	"HINDUSTAN UNILEVER": "HINDUNILVR",
	"ONGC":               "ONGC",
	"NTPC":               "NTPC",
	"TITAN":              "TITAN",
}

// Index tickers as they appear on feeds.
var indexTickers = map[string]bool{
	"NIFTY":      true,
	"NIFTY 50":   true,
	"BANKNIFTY":  true,
	"NIFTY BANK": true,
	"FINNIFTY":   true,
	"SENSEX":     true,
}

// NormalizeSymbol uppercases a user-entered or feed-supplied ticker and
// strips surrounding whitespace and a leading "$".
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSpace(strings.TrimPrefix(s, "$"))
}

// NormalizeSymbols applies NormalizeSymbol to every element, dropping
// entries that end up empty.
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if n := NormalizeSymbol(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// CanonicalTicker resolves a company name, alias or index name to its NSE
// ticker. Index names lose their spaces ("NIFTY BANK" becomes "NIFTYBANK").
// Unknown inputs are returned normalized but otherwise unchanged.
func CanonicalTicker(name string) string {
	n := NormalizeSymbol(name)
	if canonical, ok := tickerAliases[n]; ok {
		return canonical
	}
	if indexTickers[n] {
		return strings.ReplaceAll(n, " ", "")
	}
	return n
}

// AliasNames returns every company alias and index name that
// CanonicalTicker resolves, for building keyword matchers.
func AliasNames() []string {
	out := make([]string, 0, len(tickerAliases)+len(indexTickers))
	for k := range tickerAliases {
		out = append(out, k)
	}
	for k := range indexTickers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsIndex checks if the ticker is an index (not a stock).
func IsIndex(ticker string) bool {
	return indexTickers[NormalizeSymbol(ticker)]
}
