package model

import "time"

// PeriodReport covers the records of one calendar month (YYYY-MM).
type PeriodReport struct {
	Month           string         `json:"month"`
	PeriodStart     time.Time      `json:"period_start"`
	PeriodEnd       time.Time      `json:"period_end"`
	TripCount       int            `json:"trip_count"`
	GrossFare       float64        `json:"gross_fare"`
	NetProfit       float64        `json:"net_profit"`
	TotalDistanceKm float64        `json:"total_distance_km"`
	Platforms       []PlatformStat `json:"platforms"`
	Trips           []TripRecord   `json:"trips"`
}

type DistanceReport struct {
	TotalDistanceKm   float64 `json:"total_distance_km"`
	TotalFuelCost     float64 `json:"total_fuel_cost"`
	CostPerKm         float64 `json:"cost_per_km"`
	Month             string  `json:"month"`
	MonthDistanceKm   float64 `json:"month_distance_km"`
	MonthActiveDays   int     `json:"month_active_days"`
	MonthMeanPerDayKm float64 `json:"month_mean_per_day_km"`
}
