package codec

import (
	"strings"

	"github.com/nurpe/ride-profit/internal/model"
)

const SummaryMarker = "📊 Podsumowanie dnia"

const summaryRateLabel = "średnia stawka godzinowa:"

// SummaryLine renders the daily summary annotation for day.
func SummaryLine(day string, mean float64) string {
	return SummaryMarker + " " + day + " - " + summaryRateLabel + " " + FormatAmount(mean) + " " + unitRate
}

// SummaryBlock is the blank lead-in, the summary line and its "=" separator.
func SummaryBlock(day string, mean float64) []string {
	return []string{"", SummaryLine(day, mean), strings.Repeat("=", SeparatorWidth)}
}

// ParseSummary reads a summary line back. The mean is optional for lines
// written by other tools; ok is false only when the line is not a summary.
func ParseSummary(line string) (model.DailySummary, bool) {
	s := strings.TrimSpace(line)
	rest, found := strings.CutPrefix(s, SummaryMarker)
	if !found {
		return model.DailySummary{}, false
	}
	rest = strings.TrimSpace(rest)
	day, tail, _ := strings.Cut(rest, " ")
	summary := model.DailySummary{Day: day}
	if i := strings.LastIndex(tail, ":"); i >= 0 {
		if mean, ok := ParseNumber(tail[i+1:]); ok {
			summary.MeanRate = mean
		}
	}
	return summary, true
}
