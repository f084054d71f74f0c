// Package codec reads and writes the append-only trip log.
//
// A trip block is a bracketed timestamp header, one "Key: Value" line per field
// and a 40 character dash separator. Daily summary annotations are a marker
// line followed by a 40 character "=" separator.
package codec

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/ride-profit/internal/model"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DayLayout       = "2006-01-02"
	MonthLayout     = "2006-01"
	SeparatorWidth  = 40
)

const (
	KeyPlatform         = "Platforma"
	KeyExternalID       = "ID kursu"
	KeyApproachDistance = "Dystans dojazdu (km)"
	KeyApproachTime     = "Czas dojazdu (min)"
	KeyTripDistance     = "Dystans z klientem (km)"
	KeyTripTime         = "Czas kursu (min)"
	KeyFare             = "Kwota (z napiwkiem)"
	KeyDriverPercentage = "Procent dla kierowcy"
	KeyFuelConsumption  = "Spalanie (l/100km)"
	KeyFuelPrice        = "Cena paliwa"
	KeyTotalDistance    = "Dystans całkowity (km)"
	KeyTotalTime        = "Czas całkowity (h)"
	KeyFuelCost         = "Koszt paliwa"
	KeyNetProfit        = "Zysk netto"
	KeyHourlyRate       = "Stawka godzinowa"
	KeyRating           = "Ocena"
)

const (
	unitCurrency = "zł"
	unitRate     = "zł/h"
	unitPerLiter = "zł/l"
)

// TripFields returns the persisted fields of a calculated trip in log order.
func TripFields(in model.TripInput, calc model.Calculation) []model.Field {
	platform := cleanValue(in.Platform)
	if platform == "" {
		platform = model.DefaultPlatform
	}
	return []model.Field{
		{Key: KeyPlatform, Value: platform},
		{Key: KeyApproachDistance, Value: FormatAmount(in.ApproachDistanceKm)},
		{Key: KeyApproachTime, Value: FormatWhole(in.ApproachTimeMin)},
		{Key: KeyTripDistance, Value: FormatAmount(in.TripDistanceKm)},
		{Key: KeyTripTime, Value: FormatWhole(in.TripTimeMin)},
		{Key: KeyFare, Value: FormatAmount(in.Fare) + " " + unitCurrency},
		{Key: KeyDriverPercentage, Value: FormatWhole(in.DriverPercentage) + "%"},
		{Key: KeyFuelConsumption, Value: FormatAmount(in.FuelConsumption)},
		{Key: KeyFuelPrice, Value: FormatAmount(in.FuelPrice) + " " + unitPerLiter},
		{Key: KeyTotalDistance, Value: FormatAmount(calc.TotalDistanceKm)},
		{Key: KeyTotalTime, Value: FormatAmount(calc.TotalTimeHours)},
		{Key: KeyFuelCost, Value: FormatAmount(calc.FuelCost) + " " + unitCurrency},
		{Key: KeyNetProfit, Value: FormatAmount(calc.NetProfit) + " " + unitCurrency},
		{Key: KeyHourlyRate, Value: FormatAmount(calc.HourlyRate) + " " + unitRate},
		{Key: KeyRating, Value: calc.Rating.Label},
	}
}

// WithExternalID inserts the external trip id right after the platform line.
func WithExternalID(fields []model.Field, id string) []model.Field {
	id = cleanValue(id)
	if id == "" {
		return fields
	}
	out := make([]model.Field, 0, len(fields)+1)
	inserted := false
	for _, f := range fields {
		out = append(out, f)
		if !inserted && f.Key == KeyPlatform {
			out = append(out, model.Field{Key: KeyExternalID, Value: id})
			inserted = true
		}
	}
	if !inserted {
		out = append([]model.Field{{Key: KeyExternalID, Value: id}}, out...)
	}
	return out
}

// EncodeBlock renders one trip block. The leading blank line keeps blocks
// visually apart when appended to an existing log.
func EncodeBlock(ts time.Time, fields []model.Field) []string {
	lines := make([]string, 0, len(fields)+3)
	lines = append(lines, "", "["+ts.Format(TimestampLayout)+"]")
	for _, f := range fields {
		lines = append(lines, cleanValue(f.Key)+": "+cleanValue(f.Value))
	}
	return append(lines, strings.Repeat("-", SeparatorWidth))
}

// SplitLines turns file content into lines without terminators.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// JoinLines is the inverse of SplitLines; every line gets a trailing newline.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatAmount rounds to two decimal places.
func FormatAmount(v float64) string {
	return formatFixed(v, 2)
}

// FormatWhole rounds to an integer.
func FormatWhole(v float64) string {
	return formatFixed(v, 0)
}

func formatFixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', int(places), 64)
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func cleanValue(v string) string {
	v = strings.ReplaceAll(v, "\r", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return strings.TrimSpace(v)
}
