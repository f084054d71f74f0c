// Package summary keeps one running-average annotation per day in the trip log.
package summary

import (
	"strings"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

// Update returns lines with exactly one current summary for day, appended at
// the end. Stale summaries for day are removed together with their blank
// lead-in and "=" separator, so running Update twice yields the same lines.
//
// ok is false when no record of day carries an hourly rate; lines are then
// returned unchanged and the caller must not rewrite the log.
func Update(lines []string, day string) ([]string, model.DailySummary, bool) {
	kept := withoutSummary(lines, day)

	rates := Rates(kept, day)
	if len(rates) == 0 {
		return lines, model.DailySummary{}, false
	}

	total := 0.0
	for _, r := range rates {
		total += r
	}
	s := model.DailySummary{Day: day, MeanRate: total / float64(len(rates))}

	out := append(kept, codec.SummaryBlock(day, s.MeanRate)...)
	return out, s, true
}

// Rates collects the hourly rates of every record whose header date is day.
func Rates(lines []string, day string) []float64 {
	var rates []float64
	for raw := range codec.Decode(lines) {
		if !strings.HasPrefix(raw.Header, day) {
			continue
		}
		for _, f := range raw.Fields {
			if f.Key != codec.KeyHourlyRate {
				continue
			}
			if v, ok := codec.ParseNumber(f.Value); ok {
				rates = append(rates, v)
			}
		}
	}
	return rates
}

// Summaries lists the summary annotations present in the log, in order.
func Summaries(lines []string) []model.DailySummary {
	out := make([]model.DailySummary, 0)
	for _, raw := range lines {
		if codec.Classify(raw).Kind != codec.KindSummary {
			continue
		}
		if s, ok := codec.ParseSummary(raw); ok {
			out = append(out, s)
		}
	}
	return out
}

func withoutSummary(lines []string, day string) []string {
	kept := make([]string, 0, len(lines)+3)
	dropSeparator := false
	for _, raw := range lines {
		line := codec.Classify(raw)
		if dropSeparator {
			dropSeparator = false
			if line.Kind == codec.KindSeparator && strings.HasPrefix(strings.TrimSpace(raw), "=") {
				continue
			}
		}
		if line.Kind == codec.KindSummary {
			if s, ok := codec.ParseSummary(raw); ok && s.Day == day {
				if n := len(kept); n > 0 && strings.TrimSpace(kept[n-1]) == "" {
					kept = kept[:n-1]
				}
				dropSeparator = true
				continue
			}
		}
		kept = append(kept, raw)
	}
	return kept
}
