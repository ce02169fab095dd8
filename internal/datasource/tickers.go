package datasource

import (
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/newspulse/pkg/utils"
)

// aliasNames is built once from the ticker alias table.
var aliasNames = utils.AliasNames()

type tickerMatch struct {
	pos, end  int
	canonical string
}

// ExtractTickers returns the NSE tickers mentioned in text, in order of first
// mention and without duplicates. Aliases only match as whole words, so
// "TCS" matches in "TCS results" but not in "ETCS".
func ExtractTickers(text string) []string {
	upper := strings.ToUpper(text)
	var matches []tickerMatch
	for _, alias := range aliasNames {
		canonical := utils.CanonicalTicker(alias)
		from := 0
		for {
			i := strings.Index(upper[from:], alias)
			if i < 0 {
				break
			}
			start := from + i
			end := start + len(alias)
			if isBoundary(upper, start-1) && isBoundary(upper, end) {
				matches = append(matches, tickerMatch{pos: start, end: end, canonical: canonical})
			}
			from = start + 1
		}
	}

	// Earliest first; at the same position the longest alias wins.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].pos != matches[j].pos {
			return matches[i].pos < matches[j].pos
		}
		return matches[i].end > matches[j].end
	})

	out := make([]string, 0, len(matches))
	seen := make(map[string]bool)
	consumed := 0
	for _, m := range matches {
		if m.pos < consumed {
			continue
		}
		consumed = m.end
		if !seen[m.canonical] {
			seen[m.canonical] = true
			out = append(out, m.canonical)
		}
	}
	return out
}

func isBoundary(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return true
	}
	r := rune(s[i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
