package model

import "time"

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

type TimeSeries struct {
	Rates   []Point `json:"rates"`
	Profits []Point `json:"profits"`
}

type HourStat struct {
	Hour     int     `json:"hour"`
	MeanRate float64 `json:"mean_rate"`
	Trips    int     `json:"trips"`
}

type HourlyView struct {
	Hours    []HourStat `json:"hours"`
	BestHour *int       `json:"best_hour"`
}

type PlatformStat struct {
	Platform    string  `json:"platform"`
	Trips       int     `json:"trips"`
	MeanRate    float64 `json:"mean_rate"`
	TotalProfit float64 `json:"total_profit"`
}

type PlatformView struct {
	Platforms []PlatformStat `json:"platforms"`
	Best      string         `json:"best,omitempty"`
}

type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

type DayTotal struct {
	Day       string  `json:"day"`
	NetProfit float64 `json:"net_profit"`
}

type Forecast struct {
	Days        []DayTotal     `json:"days"`
	MeanPerDay  float64        `json:"mean_per_day"`
	DaysInMonth int            `json:"days_in_month"`
	Projection  float64        `json:"projection"`
	FirstMean   float64        `json:"first_mean"`
	LastMean    float64        `json:"last_mean"`
	Trend       TrendDirection `json:"trend"`
}

type HeatCell struct {
	Weekday   int     `json:"weekday"` // 0 = Monday
	Hour      int     `json:"hour"`
	MeanValue float64 `json:"mean_value"`
	Trips     int     `json:"trips"`
}

type Heatmap struct {
	// Cells[weekday][hour] is nil for empty buckets.
	Cells     [7][24]*float64 `json:"cells"`
	BestSlots []HeatCell      `json:"best_slots"`
}

type Overview struct {
	TotalProfit float64 `json:"total_profit"`
	MeanRate    float64 `json:"mean_rate"`
	BestRate    float64 `json:"best_rate"`
	WorstRate   float64 `json:"worst_rate"`
	TripCount   int     `json:"trip_count"`
	BestHour    string  `json:"best_hour"`
}

// Series is a chart-ready trace.
type Series struct {
	Name    string       `json:"name"`
	Kind    string       `json:"kind"`
	Title   string       `json:"title"`
	XTitle  string       `json:"x_title,omitempty"`
	YTitle  string       `json:"y_title,omitempty"`
	X       []string     `json:"x"`
	Y       []float64    `json:"y,omitempty"`
	YLabels []string     `json:"y_labels,omitempty"`
	Z       [][]*float64 `json:"z,omitempty"`
}

type Dashboard struct {
	Charts   []Series   `json:"charts"`
	Overview Overview   `json:"overview"`
	Hourly   HourlyView `json:"hourly"`
}
