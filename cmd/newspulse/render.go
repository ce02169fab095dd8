package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/newspulse/internal/dashboard"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Color palette
var (
	primaryColor  = lipgloss.Color("#7C3AED") // Purple
	positiveColor = lipgloss.Color("#10B981") // Green
	negativeColor = lipgloss.Color("#EF4444") // Red
	neutralColor  = lipgloss.Color("#6B7280") // Gray
	mutedColor    = lipgloss.Color("#9CA3AF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	tickerStyle = lipgloss.NewStyle().
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)
)

// sentimentStyle colours a verdict.
func sentimentStyle(s models.Sentiment) lipgloss.Style {
	switch s {
	case models.SentimentPositive:
		return lipgloss.NewStyle().Bold(true).Foreground(positiveColor)
	case models.SentimentNegative:
		return lipgloss.NewStyle().Bold(true).Foreground(negativeColor)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(neutralColor)
	}
}

func sentimentIcon(s models.Sentiment) string {
	switch s {
	case models.SentimentPositive:
		return "▲"
	case models.SentimentNegative:
		return "▼"
	default:
		return "●"
	}
}

// renderHoldings writes the holdings table with invested values.
func renderHoldings(w io.Writer, holdings []models.Holding) {
	fmt.Fprintln(w, titleStyle.Render("💼 Holdings"))
	if len(holdings) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No holdings. Add one with --holding SYMBOL:QTY:PRICE"))
		return
	}
	for _, h := range holdings {
		fmt.Fprintf(w, "  %-12s %6d × %-12s %s\n",
			tickerStyle.Render(h.Symbol), h.Quantity, utils.FormatINR(h.Price), utils.FormatINR(h.Value()))
	}
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render("Total invested:"), utils.FormatINRCompact(models.TotalValue(holdings)))
}

// renderNews writes news items, one per line with source and tickers.
func renderNews(w io.Writer, title string, items []models.NewsItem) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  No news available"))
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  • %s\n", it.Headline)
		meta := []string{it.Source}
		if it.Time != "" {
			meta = append(meta, it.Time)
		}
		if it.Category != "" {
			meta = append(meta, it.Category)
		}
		if len(it.Stocks) > 0 {
			meta = append(meta, tickerList(it.Stocks))
		}
		fmt.Fprintf(w, "    %s\n", mutedStyle.Render(strings.Join(meta, " · ")))
	}
}

// tickerList joins tickers for display, marking index tickers.
func tickerList(stocks []string) string {
	out := make([]string, len(stocks))
	for i, s := range stocks {
		if utils.IsIndex(s) {
			out[i] = s + " (index)"
		} else {
			out[i] = s
		}
	}
	return strings.Join(out, ", ")
}

// renderAnalyses writes each per-item verdict.
func renderAnalyses(w io.Writer, analyses []models.Analysis) {
	fmt.Fprintln(w, titleStyle.Render("🧠 Sentiment Analysis"))
	if len(analyses) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("  Nothing to analyse"))
		return
	}
	for _, a := range analyses {
		style := sentimentStyle(a.Sentiment)
		fmt.Fprintf(w, "  %s %s %s\n",
			style.Render(sentimentIcon(a.Sentiment)+" "+strings.ToUpper(string(a.Sentiment))),
			mutedStyle.Render(fmt.Sprintf("(%d%%)", a.Confidence)),
			a.Headline)
		fmt.Fprintf(w, "    %s %s\n", mutedStyle.Render(a.Reasoning), tickerStyle.Render(strings.Join(a.AffectedStocks, ", ")))
	}
}

// renderPortfolioSentiment writes the overall verdict in a box.
func renderPortfolioSentiment(w io.Writer, ps *models.PortfolioSentiment) {
	if ps == nil {
		return
	}
	style := sentimentStyle(ps.Sentiment)
	body := fmt.Sprintf("Portfolio sentiment: %s\nScore: %+.2f   Confidence: %d%%",
		style.Render(sentimentIcon(ps.Sentiment)+" "+strings.ToUpper(string(ps.Sentiment))),
		ps.Score, ps.Confidence)
	fmt.Fprintln(w, panelStyle.Render(body))
}

// renderState writes the full dashboard.
func renderState(w io.Writer, st dashboard.State) {
	renderHoldings(w, st.Holdings)
	fmt.Fprintln(w)
	if len(st.Holdings) == 0 {
		renderNews(w, "📰 Market News", st.News)
		return
	}
	renderNews(w, "📰 Portfolio News", st.FilteredNews)
	fmt.Fprintln(w)
	renderAnalyses(w, st.Analyses)
	fmt.Fprintln(w)
	renderPortfolioSentiment(w, st.PortfolioSentiment)
}
