package model

import "time"

const DefaultPlatform = "Unknown"

type TripInput struct {
	ApproachDistanceKm float64
	ApproachTimeMin    float64
	TripDistanceKm     float64
	TripTimeMin        float64
	Fare               float64
	DriverPercentage   float64
	FuelConsumption    float64 // l/100km
	FuelPrice          float64 // per liter
	Platform           string
}

type RatingLevel string

const (
	RatingVeryProfitable       RatingLevel = "very_profitable"
	RatingProfitable           RatingLevel = "profitable"
	RatingModeratelyProfitable RatingLevel = "moderately_profitable"
	RatingNotProfitable        RatingLevel = "not_profitable"
)

type Rating struct {
	Level RatingLevel `json:"level"`
	Label string      `json:"label"`
	Class string      `json:"class"`
}

type Calculation struct {
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalTimeHours  float64 `json:"total_time_hours"`
	FuelCost        float64 `json:"fuel_cost"`
	DriverEarnings  float64 `json:"driver_earnings"`
	NetProfit       float64 `json:"net_profit"`
	HourlyRate      float64 `json:"hourly_rate"`
	Rating          Rating  `json:"rating"`
}

// Field is a single "Key: Value" pair. Order of a []Field is significant.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TripRecord is a trip block decoded back from the log. Numeric fields are nil
// when the block lacks them or their value could not be parsed.
type TripRecord struct {
	Timestamp          time.Time `json:"timestamp"`
	Day                string    `json:"day"`
	Platform           string    `json:"platform"`
	ExternalID         string    `json:"external_id,omitempty"`
	ApproachDistanceKm *float64  `json:"approach_distance_km,omitempty"`
	ApproachTimeMin    *float64  `json:"approach_time_min,omitempty"`
	TripDistanceKm     *float64  `json:"trip_distance_km,omitempty"`
	TripTimeMin        *float64  `json:"trip_time_min,omitempty"`
	Fare               *float64  `json:"fare,omitempty"`
	DriverPercentage   *float64  `json:"driver_percentage,omitempty"`
	FuelConsumption    *float64  `json:"fuel_consumption,omitempty"`
	FuelPrice          *float64  `json:"fuel_price,omitempty"`
	TotalDistanceKm    *float64  `json:"total_distance_km,omitempty"`
	TotalTimeHours     *float64  `json:"total_time_hours,omitempty"`
	FuelCost           *float64  `json:"fuel_cost,omitempty"`
	NetProfit          *float64  `json:"net_profit,omitempty"`
	HourlyRate         *float64  `json:"hourly_rate,omitempty"`
	Rating             string    `json:"rating,omitempty"`
	Fields             []Field   `json:"-"`
}

// Distance returns the total distance, falling back to approach + trip legs
// for blocks written without the total.
func (r TripRecord) Distance() (float64, bool) {
	if r.TotalDistanceKm != nil {
		return *r.TotalDistanceKm, true
	}
	if r.ApproachDistanceKm == nil && r.TripDistanceKm == nil {
		return 0, false
	}
	total := 0.0
	if r.ApproachDistanceKm != nil {
		total += *r.ApproachDistanceKm
	}
	if r.TripDistanceKm != nil {
		total += *r.TripDistanceKm
	}
	return total, true
}

type DailySummary struct {
	Day      string  `json:"day"`
	MeanRate float64 `json:"mean_rate"`
}
