// Package calculator computes the profitability of a single trip.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/nurpe/ride-profit/internal/model"
)

var ErrInvalidInput = errors.New("invalid trip input")

// Rating thresholds on the hourly rate, checked from the highest down.
const (
	VeryProfitableRate       = 50.0
	ProfitableRate           = 30.0
	ModeratelyProfitableRate = 20.0
)

// Calculate derives distance, time and money metrics from a trip. A trip with
// no recorded time has an hourly rate of 0.
func Calculate(in model.TripInput) model.Calculation {
	totalDistance := in.ApproachDistanceKm + in.TripDistanceKm
	totalHours := (in.ApproachTimeMin + in.TripTimeMin) / 60
	fuelCost := (totalDistance * in.FuelConsumption / 100) * in.FuelPrice
	earnings := in.Fare * (in.DriverPercentage / 100)
	netProfit := earnings - fuelCost

	hourlyRate := 0.0
	if totalHours > 0 {
		hourlyRate = netProfit / totalHours
	}

	return model.Calculation{
		TotalDistanceKm: totalDistance,
		TotalTimeHours:  totalHours,
		FuelCost:        fuelCost,
		DriverEarnings:  earnings,
		NetProfit:       netProfit,
		HourlyRate:      hourlyRate,
		Rating:          Rate(hourlyRate),
	}
}

func Rate(hourlyRate float64) model.Rating {
	switch {
	case hourlyRate >= VeryProfitableRate:
		return model.Rating{Level: model.RatingVeryProfitable, Label: "💰 Kurs bardzo opłacalny!", Class: "success"}
	case hourlyRate >= ProfitableRate:
		return model.Rating{Level: model.RatingProfitable, Label: "👍 Kurs opłacalny.", Class: "info"}
	case hourlyRate >= ModeratelyProfitableRate:
		return model.Rating{Level: model.RatingModeratelyProfitable, Label: "😐 Kurs średnio opłacalny.", Class: "warning"}
	default:
		return model.Rating{Level: model.RatingNotProfitable, Label: "❌ Kurs nieopłacalny.", Class: "danger"}
	}
}

// Validate rejects negative or non-finite inputs and a driver share outside 0-100.
func Validate(in model.TripInput) error {
	values := []struct {
		name  string
		value float64
	}{
		{"approach_distance", in.ApproachDistanceKm},
		{"approach_time", in.ApproachTimeMin},
		{"trip_distance", in.TripDistanceKm},
		{"trip_time", in.TripTimeMin},
		{"fare", in.Fare},
		{"driver_percentage", in.DriverPercentage},
		{"fuel_consumption", in.FuelConsumption},
		{"fuel_price", in.FuelPrice},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, v.name)
		}
		if v.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, v.name)
		}
	}
	if in.DriverPercentage > 100 {
		return fmt.Errorf("%w: driver_percentage must be between 0 and 100", ErrInvalidInput)
	}
	return nil
}
