package ridehail

import (
	"time"

	"github.com/nurpe/ride-profit/internal/model"
)

const (
	KmPerMile        = 1.60934
	minorUnitsPerOne = 100
)

// Converted is an API trip mapped to calculator input. Approach distance and
// time are unknown and stay zero. Fuel parameters are left for the caller.
type Converted struct {
	ExternalID string
	StartedAt  time.Time
	Input      model.TripInput
}

func Convert(trip Trip, loc *time.Location, platform string) Converted {
	start := time.Unix(trip.StartTime, 0).In(loc)
	minutes := float64(trip.EndTime-trip.StartTime) / 60
	if minutes < 0 {
		minutes = 0
	}
	return Converted{
		ExternalID: trip.TripID,
		StartedAt:  start,
		Input: model.TripInput{
			TripDistanceKm: trip.Distance * KmPerMile,
			TripTimeMin:    minutes,
			Fare:           trip.Fare.Amount / minorUnitsPerOne,
			Platform:       platform,
		},
	}
}
