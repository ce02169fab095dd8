// Package relevance decides which news items concern a portfolio.
//
// Matching is a bidirectional substring test on uppercased tickers: an
// item ticker matches a held symbol when either contains the other. This
// is deliberately permissive (holding "TATAMOTORS" matches the feed ticker
// "TATAMOTOR") and knowingly over-permissive for very short symbols (a
// held "M" matches most tickers).
package relevance

import (
	"strings"

	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Matches reports whether a single ticker and held symbol overlap.
// Both arguments must already be normalized.
func Matches(ticker, symbol string) bool {
	if ticker == "" || symbol == "" {
		return false
	}
	return strings.Contains(ticker, symbol) || strings.Contains(symbol, ticker)
}

// Filter returns the news items with at least one ticker overlapping a
// held symbol. Input order is preserved. An empty portfolio yields no news.
func Filter(news []models.NewsItem, heldSymbols []string) []models.NewsItem {
	held := utils.NormalizeSymbols(heldSymbols)
	out := make([]models.NewsItem, 0)
	if len(held) == 0 {
		return out
	}
	for _, item := range news {
		if relevant(item, held) {
			out = append(out, item)
		}
	}
	return out
}

// MatchingTickers returns the item's tickers that overlap some held symbol,
// in the item's order and as the item spells them.
func MatchingTickers(item models.NewsItem, heldSymbols []string) []string {
	held := utils.NormalizeSymbols(heldSymbols)
	out := make([]string, 0)
	for _, stock := range item.Stocks {
		if anyMatch(utils.NormalizeSymbol(stock), held) {
			out = append(out, stock)
		}
	}
	return out
}

func relevant(item models.NewsItem, held []string) bool {
	for _, stock := range item.Stocks {
		if anyMatch(utils.NormalizeSymbol(stock), held) {
			return true
		}
	}
	return false
}

func anyMatch(ticker string, held []string) bool {
	for _, symbol := range held {
		if Matches(ticker, symbol) {
			return true
		}
	}
	return false
}
