// Package stats derives every statistics view from the decoded trip log.
// Nothing here is cached; each view is recomputed from the records it gets,
// and all of them accept an empty slice.
package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

const (
	forecastWindow = 30
	trendWindow    = 5
	trendThreshold = 0.10
	bestSlotCount  = 3
)

// TimeSeriesView pairs every record timestamp with its rate and net profit,
// in log order. Records missing a value are left out of that series only.
func TimeSeriesView(records []model.TripRecord) model.TimeSeries {
	ts := model.TimeSeries{Rates: []model.Point{}, Profits: []model.Point{}}
	for _, r := range records {
		if r.HourlyRate != nil {
			ts.Rates = append(ts.Rates, model.Point{Time: r.Timestamp, Value: *r.HourlyRate})
		}
		if r.NetProfit != nil {
			ts.Profits = append(ts.Profits, model.Point{Time: r.Timestamp, Value: *r.NetProfit})
		}
	}
	return ts
}

// HourlyView averages the hourly rate per hour of day.
func HourlyView(records []model.TripRecord) model.HourlyView {
	var sums [24]float64
	var counts [24]int
	for _, r := range records {
		if r.HourlyRate == nil {
			continue
		}
		h := r.Timestamp.Hour()
		sums[h] += *r.HourlyRate
		counts[h]++
	}

	view := model.HourlyView{Hours: []model.HourStat{}}
	best := math.Inf(-1)
	for h := range 24 {
		if counts[h] == 0 {
			continue
		}
		stat := model.HourStat{Hour: h, MeanRate: sums[h] / float64(counts[h]), Trips: counts[h]}
		if stat.MeanRate > best {
			best = stat.MeanRate
			hour := h
			view.BestHour = &hour
		}
		view.Hours = append(view.Hours, stat)
	}
	return view
}

// PlatformView groups records by platform label, sorted by name. Best is the
// platform with the highest mean rate; ties keep the first name.
func PlatformView(records []model.TripRecord) model.PlatformView {
	type acc struct {
		trips, rated int
		rates        float64
		profit       float64
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		name := r.Platform
		if strings.TrimSpace(name) == "" {
			name = model.DefaultPlatform
		}
		a, ok := groups[name]
		if !ok {
			a = &acc{}
			groups[name] = a
		}
		a.trips++
		if r.HourlyRate != nil {
			a.rates += *r.HourlyRate
			a.rated++
		}
		if r.NetProfit != nil {
			a.profit += *r.NetProfit
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	view := model.PlatformView{Platforms: make([]model.PlatformStat, 0, len(names))}
	best := math.Inf(-1)
	for _, name := range names {
		a := groups[name]
		stat := model.PlatformStat{Platform: name, Trips: a.trips, TotalProfit: a.profit}
		if a.rated > 0 {
			stat.MeanRate = a.rates / float64(a.rated)
		}
		if stat.MeanRate > best {
			best = stat.MeanRate
			view.Best = name
		}
		view.Platforms = append(view.Platforms, stat)
	}
	return view
}

// MonthStart returns midnight of the first day of month (YYYY-MM) in loc.
func MonthStart(month string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(codec.MonthLayout, month, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: %w", month, err)
	}
	return t, nil
}

// Period reports the records of the calendar month starting at start.
func Period(records []model.TripRecord, start time.Time) model.PeriodReport {
	end := start.AddDate(0, 1, 0)
	report := model.PeriodReport{
		Month:       start.Format(codec.MonthLayout),
		PeriodStart: start,
		PeriodEnd:   end,
		Trips:       []model.TripRecord{},
	}
	for _, r := range records {
		if r.Timestamp.Before(start) || !r.Timestamp.Before(end) {
			continue
		}
		report.Trips = append(report.Trips, r)
		report.TripCount++
		if r.Fare != nil {
			report.GrossFare += *r.Fare
		}
		if r.NetProfit != nil {
			report.NetProfit += *r.NetProfit
		}
		if d, ok := r.Distance(); ok {
			report.TotalDistanceKm += d
		}
	}
	report.Platforms = PlatformView(report.Trips).Platforms
	return report
}

// Distance reports lifetime distance and fuel cost plus the distance driven
// in the month containing now.
func Distance(records []model.TripRecord, now time.Time) model.DistanceReport {
	month := now.Format(codec.MonthLayout)
	report := model.DistanceReport{Month: month}
	days := make(map[string]struct{})
	for _, r := range records {
		d, hasDistance := r.Distance()
		if hasDistance {
			report.TotalDistanceKm += d
		}
		if r.FuelCost != nil {
			report.TotalFuelCost += *r.FuelCost
		}
		if !strings.HasPrefix(r.Day, month) {
			continue
		}
		days[r.Day] = struct{}{}
		if hasDistance {
			report.MonthDistanceKm += d
		}
	}
	if report.TotalDistanceKm > 0 {
		report.CostPerKm = report.TotalFuelCost / report.TotalDistanceKm
	}
	report.MonthActiveDays = len(days)
	if report.MonthActiveDays > 0 {
		report.MonthMeanPerDayKm = report.MonthDistanceKm / float64(report.MonthActiveDays)
	}
	return report
}

// DailyTotals sums net profit per calendar day, oldest day first.
func DailyTotals(records []model.TripRecord) []model.DayTotal {
	totals := make(map[string]float64)
	for _, r := range records {
		if r.NetProfit == nil {
			continue
		}
		totals[r.Day] += *r.NetProfit
	}
	out := make([]model.DayTotal, 0, len(totals))
	for day, net := range totals {
		out = append(out, model.DayTotal{Day: day, NetProfit: net})
	}
	slices.SortFunc(out, func(a, b model.DayTotal) int { return cmp.Compare(a.Day, b.Day) })
	return out
}

// Forecast projects the month from the mean daily profit of the latest 30
// active days and labels the trend by comparing the first and last five.
func Forecast(records []model.TripRecord, now time.Time) model.Forecast {
	days := DailyTotals(records)
	if len(days) > forecastWindow {
		days = days[len(days)-forecastWindow:]
	}

	f := model.Forecast{
		Days:        days,
		DaysInMonth: daysIn(now),
		Trend:       model.TrendStable,
	}
	if len(days) == 0 {
		return f
	}

	f.MeanPerDay = meanOf(days)
	f.Projection = f.MeanPerDay * float64(f.DaysInMonth)
	f.FirstMean, f.LastMean = f.MeanPerDay, f.MeanPerDay
	if len(days) >= trendWindow {
		f.FirstMean = meanOf(days[:trendWindow])
		f.LastMean = meanOf(days[len(days)-trendWindow:])
	}
	f.Trend = trend(f.FirstMean, f.LastMean)
	return f
}

// trend compares against a tolerance of 10% of |first| so that negative or
// zero opening means still produce a direction.
func trend(first, last float64) model.TrendDirection {
	diff := last - first
	tolerance := trendThreshold * math.Abs(first)
	switch {
	case diff > tolerance:
		return model.TrendRising
	case diff < -tolerance:
		return model.TrendFalling
	default:
		return model.TrendStable
	}
}

func meanOf(days []model.DayTotal) float64 {
	if len(days) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range days {
		total += d.NetProfit
	}
	return total / float64(len(days))
}

func daysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Weekday maps time.Weekday to a Monday-first index.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Heatmap averages net profit per (weekday, hour) and ranks the top slots.
func Heatmap(records []model.TripRecord) model.Heatmap {
	var sums [7][24]float64
	var counts [7][24]int
	for _, r := range records {
		if r.NetProfit == nil {
			continue
		}
		d, h := Weekday(r.Timestamp), r.Timestamp.Hour()
		sums[d][h] += *r.NetProfit
		counts[d][h]++
	}

	hm := model.Heatmap{BestSlots: []model.HeatCell{}}
	var cells []model.HeatCell
	for d := range 7 {
		for h := range 24 {
			if counts[d][h] == 0 {
				continue
			}
			mean := sums[d][h] / float64(counts[d][h])
			hm.Cells[d][h] = &mean
			cells = append(cells, model.HeatCell{Weekday: d, Hour: h, MeanValue: mean, Trips: counts[d][h]})
		}
	}

	slices.SortStableFunc(cells, func(a, b model.HeatCell) int {
		return cmp.Compare(b.MeanValue, a.MeanValue)
	})
	if len(cells) > bestSlotCount {
		cells = cells[:bestSlotCount]
	}
	hm.BestSlots = append(hm.BestSlots, cells...)
	return hm
}

// Overview holds the scalar figures shown above the dashboard charts.
func Overview(records []model.TripRecord) model.Overview {
	o := model.Overview{TripCount: len(records), BestHour: FormatHour(0)}
	rated := 0
	for _, r := range records {
		if r.NetProfit != nil {
			o.TotalProfit += *r.NetProfit
		}
		if r.HourlyRate == nil {
			continue
		}
		rate := *r.HourlyRate
		if rated == 0 || rate > o.BestRate {
			o.BestRate = rate
		}
		if rated == 0 || rate < o.WorstRate {
			o.WorstRate = rate
		}
		o.MeanRate += rate
		rated++
	}
	if rated > 0 {
		o.MeanRate /= float64(rated)
	}
	if hv := HourlyView(records); hv.BestHour != nil {
		o.BestHour = FormatHour(*hv.BestHour)
	}
	return o
}

// FormatHour renders an hour of day as "HH:00".
func FormatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}
