package relevance

import (
	"testing"

	"github.com/seenimoa/newspulse/pkg/models"
)

func sampleNews() []models.NewsItem {
	return []models.NewsItem{
		{ID: "1", Headline: "Nifty 50 hits all-time high as banking stocks surge", Stocks: []string{"NIFTY", "HDFC", "ICICI", "SBI"}},
		{ID: "2", Headline: "Reliance Industries reports strong Q3 earnings, beats estimates", Stocks: []string{"RELIANCE"}},
		{ID: "3", Headline: "IT sector outlook positive amid global digital transformation", Stocks: []string{"TCS", "INFY", "WIPRO", "HCLTECH"}},
		{ID: "4", Headline: "RBI maintains repo rate at 6.5%, signals dovish stance", Stocks: []string{"NIFTY", "BANKNIFTY"}},
		{ID: "6", Headline: "Auto sector shows signs of recovery with festive season demand", Stocks: []string{"MARUTI", "TATAMOTOR", "M&M", "BAJAJ-AUTO"}},
	}
}

func ids(items []models.NewsItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMatches(t *testing.T) {
	tests := []struct {
		ticker, symbol string
		want           bool
	}{
		{"RELIANCE", "RELIANCE", true},
		{"TATAMOTOR", "TATAMOTORS", true},
		{"BANKNIFTY", "NIFTY", true},
		{"HDFC", "HDFCBANK", true},
		{"TCS", "INFY", false},
		{"", "TCS", false},
		{"TCS", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.ticker+"/"+tt.symbol, func(t *testing.T) {
			if got := Matches(tt.ticker, tt.symbol); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.ticker, tt.symbol, got, tt.want)
			}
		})
	}
}

func TestFilterEmptyInputs(t *testing.T) {
	if got := Filter(nil, []string{"TCS"}); got == nil || len(got) != 0 {
		t.Errorf("Filter(nil, [TCS]) = %v, want empty slice", got)
	}
	if got := Filter(sampleNews(), nil); got == nil || len(got) != 0 {
		t.Errorf("Filter(news, nil) = %v, want empty slice", got)
	}
	if got := Filter(sampleNews(), []string{"", "  "}); len(got) != 0 {
		t.Errorf("blank symbols should match nothing, got %v", ids(got))
	}
}

func TestFilterScenarios(t *testing.T) {
	tests := []struct {
		name string
		held []string
		want []string
	}{
		{"reliance beats estimates", []string{"RELIANCE"}, []string{"2"}},
		{"tcs excludes rbi policy", []string{"TCS"}, []string{"3"}},
		{"lowercase holding", []string{"reliance"}, []string{"2"}},
		{"bank holdings", []string{"HDFC", "ICICI"}, []string{"1"}},
		{"superstring holding", []string{"TATAMOTORS"}, []string{"6"}},
		{"index holding matches index news", []string{"NIFTY"}, []string{"1", "4"}},
		{"short symbol over-matches", []string{"I"}, []string{"1", "2", "3", "4", "6"}},
		{"no overlap", []string{"ZOMATO"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(sampleNews(), tt.held))
			if !equalStrings(got, tt.want) {
				t.Errorf("Filter(%v) = %v, want %v", tt.held, got, tt.want)
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	news := sampleNews()
	reversed := make([]models.NewsItem, len(news))
	for i := range news {
		reversed[len(news)-1-i] = news[i]
	}
	got := ids(Filter(reversed, []string{"NIFTY", "RELIANCE"}))
	want := []string{"4", "2", "1"}
	if !equalStrings(got, want) {
		t.Errorf("order: got %v, want %v", got, want)
	}
}

func TestFilterNilStocks(t *testing.T) {
	news := []models.NewsItem{{ID: "x", Headline: "Markets close flat"}}
	if got := Filter(news, []string{"TCS"}); len(got) != 0 {
		t.Errorf("item without tickers should never match, got %v", ids(got))
	}
}

func TestMatchingTickers(t *testing.T) {
	item := sampleNews()[0]
	got := MatchingTickers(item, []string{"hdfc", "ICICI"})
	want := []string{"HDFC", "ICICI"}
	if !equalStrings(got, want) {
		t.Errorf("MatchingTickers = %v, want %v", got, want)
	}

	if got := MatchingTickers(item, nil); len(got) != 0 {
		t.Errorf("MatchingTickers with no holdings = %v, want empty", got)
	}
}
