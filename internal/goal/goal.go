// Package goal evaluates a driver's daily goal against the trip log.
package goal

import (
	"fmt"
	"math"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

// Keys of the persisted goal pairs.
const (
	KeyDailyTarget   = "cel_dzienny"
	KeyMinHourlyRate = "min_stawka"
)

const (
	completeThreshold = 100.0
	nearThreshold     = 75.0
)

// FromValues builds a goal from stored pairs. Missing or non-numeric values
// fall back to the defaults.
func FromValues(fields []model.Field) model.Goal {
	g := model.DefaultGoal()
	for _, f := range fields {
		v, ok := codec.ParseNumber(f.Value)
		if !ok {
			continue
		}
		switch f.Key {
		case KeyDailyTarget:
			g.DailyTarget = v
		case KeyMinHourlyRate:
			g.MinHourlyRate = v
		}
	}
	return g
}

func ToValues(g model.Goal) []model.Field {
	return []model.Field{
		{Key: KeyDailyTarget, Value: formatValue(g.DailyTarget)},
		{Key: KeyMinHourlyRate, Value: formatValue(g.MinHourlyRate)},
	}
}

// Progress sums the net profit of records dated day.
func Progress(records []model.TripRecord, day string, g model.Goal) model.GoalProgress {
	earned := 0.0
	for _, r := range records {
		if r.Day != day || r.NetProfit == nil {
			continue
		}
		earned += *r.NetProfit
	}

	p := model.GoalProgress{Earned: earned, Target: g.DailyTarget}
	if g.DailyTarget > 0 {
		p.Percentage = math.Max(0, math.Min(earned/g.DailyTarget*100, 100))
	}
	p.Remaining = math.Max(g.DailyTarget-earned, 0)
	return p
}

// Notifications returns at most two notices: a low-rate warning and one
// progress notice.
func Notifications(rate float64, p model.GoalProgress, minRate float64) []model.Notice {
	notices := make([]model.Notice, 0, 2)
	if rate < minRate {
		notices = append(notices, model.Notice{
			Level:   model.NoticeWarning,
			Message: fmt.Sprintf("⚠️ Stawka %s zł/h jest poniżej minimum %s zł/h.", codec.FormatAmount(rate), codec.FormatAmount(minRate)),
		})
	}
	switch {
	case p.Percentage >= completeThreshold:
		notices = append(notices, model.Notice{
			Level:   model.NoticeSuccess,
			Message: fmt.Sprintf("🎉 Cel dzienny %s zł osiągnięty!", codec.FormatAmount(p.Target)),
		})
	case p.Percentage >= nearThreshold:
		notices = append(notices, model.Notice{
			Level:   model.NoticeInfo,
			Message: fmt.Sprintf("🔥 Blisko celu! Pozostało %s zł.", codec.FormatAmount(p.Remaining)),
		})
	}
	return notices
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return codec.FormatWhole(v)
	}
	return codec.FormatAmount(v)
}
