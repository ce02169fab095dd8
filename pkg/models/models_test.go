package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHoldingValue(t *testing.T) {
	h := Holding{Symbol: "RELIANCE", Quantity: 10, Price: decimal.RequireFromString("2450.50")}
	if got := h.Value().String(); got != "24505" {
		t.Errorf("Value() = %s, want 24505", got)
	}
}

func TestSymbolsAndTotalValue(t *testing.T) {
	holdings := []Holding{
		{Symbol: "TCS", Quantity: 5, Price: decimal.NewFromInt(3500)},
		{Symbol: "INFY", Quantity: 2, Price: decimal.RequireFromString("1500.25")},
	}
	syms := Symbols(holdings)
	if len(syms) != 2 || syms[0] != "TCS" || syms[1] != "INFY" {
		t.Errorf("Symbols() = %v", syms)
	}
	if got := TotalValue(holdings).String(); got != "20500.5" {
		t.Errorf("TotalValue() = %s, want 20500.5", got)
	}
	if !TotalValue(nil).IsZero() {
		t.Error("TotalValue(nil) should be zero")
	}
}

func TestSentimentValid(t *testing.T) {
	for _, s := range []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Sentiment("bullish").Valid() {
		t.Error("unknown sentiment reported valid")
	}
}

func TestDerivedStateOmitsNilSentiment(t *testing.T) {
	data, err := json.Marshal(DerivedState{FilteredNews: []NewsItem{}, Analyses: []Analysis{}})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "portfolio_sentiment") {
		t.Errorf("nil portfolio sentiment serialized: %s", data)
	}
}
