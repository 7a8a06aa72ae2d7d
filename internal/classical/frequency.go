package classical

import (
	"fmt"
	"sort"
	"unicode"
)

// Frequency is the share of one letter in a text.
type Frequency struct {
	Char       string `json:"char"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// FrequencyAnalysis lower-cases text, drops everything but a-z and counts
// each letter. Entries are ordered by descending count; equal counts are
// ordered by letter so the result is deterministic. Percentages carry two
// decimals.
func FrequencyAnalysis(text string) []Frequency {
	var counts [26]int
	total := 0
	for _, r := range text {
		r = unicode.ToLower(r)
		if r < 'a' || r > 'z' {
			continue
		}
		counts[r-'a']++
		total++
	}

	out := make([]Frequency, 0, 26)
	for i, c := range counts {
		if c == 0 {
			continue
		}
		out = append(out, Frequency{
			Char:       string(rune('a' + i)),
			Count:      c,
			Percentage: fmt.Sprintf("%.2f", float64(c)/float64(total)*100),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
