package codec

import (
	"iter"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/nurpe/ride-profit/internal/model"
)

// RawRecord is a trip block before numeric parsing.
type RawRecord struct {
	Header string
	Fields []model.Field
}

// Decode yields the trip blocks found in lines, in log order. The sequence is
// lazy and can be ranged over any number of times.
//
// A header opens a record. Separators and summary markers close it. Field
// lines outside a record are ignored, as is anything unclassified. Records
// without a single field are dropped.
func Decode(lines []string) iter.Seq[RawRecord] {
	return func(yield func(RawRecord) bool) {
		var current *RawRecord
		flush := func() bool {
			rec := current
			current = nil
			if rec == nil || len(rec.Fields) == 0 {
				return true
			}
			return yield(*rec)
		}

		for _, raw := range lines {
			line := Classify(raw)
			switch line.Kind {
			case KindHeader:
				if !flush() {
					return
				}
				current = &RawRecord{Header: line.Timestamp}
			case KindSeparator, KindSummary:
				if !flush() {
					return
				}
			case KindField:
				if current != nil {
					current.Fields = append(current.Fields, model.Field{Key: line.Key, Value: line.Value})
				}
			}
		}
		flush()
	}
}

// Records decodes and parses every trip block, skipping blocks whose header is
// not a valid timestamp.
func Records(lines []string, loc *time.Location) []model.TripRecord {
	records := make([]model.TripRecord, 0)
	for raw := range Decode(lines) {
		if rec, ok := ParseRecord(raw, loc); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ParseRecord converts a raw block into a TripRecord. A numeric field that
// fails to parse is left nil without affecting the rest of the record.
func ParseRecord(raw RawRecord, loc *time.Location) (model.TripRecord, bool) {
	if loc == nil {
		loc = time.Local
	}
	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(raw.Header), loc)
	if err != nil {
		return model.TripRecord{}, false
	}

	rec := model.TripRecord{
		Timestamp: ts,
		Day:       ts.Format(DayLayout),
		Platform:  model.DefaultPlatform,
		Fields:    raw.Fields,
	}
	for _, f := range raw.Fields {
		switch f.Key {
		case KeyPlatform:
			if f.Value != "" {
				rec.Platform = f.Value
			}
		case KeyExternalID:
			rec.ExternalID = f.Value
		case KeyRating:
			rec.Rating = f.Value
		default:
			target := numericField(&rec, f.Key)
			if target == nil {
				continue
			}
			if n, ok := ParseNumber(f.Value); ok {
				*target = &n
			}
		}
	}
	return rec, true
}

func numericField(rec *model.TripRecord, key string) **float64 {
	switch key {
	case KeyApproachDistance:
		return &rec.ApproachDistanceKm
	case KeyApproachTime:
		return &rec.ApproachTimeMin
	case KeyTripDistance:
		return &rec.TripDistanceKm
	case KeyTripTime:
		return &rec.TripTimeMin
	case KeyFare:
		return &rec.Fare
	case KeyDriverPercentage:
		return &rec.DriverPercentage
	case KeyFuelConsumption:
		return &rec.FuelConsumption
	case KeyFuelPrice:
		return &rec.FuelPrice
	case KeyTotalDistance:
		return &rec.TotalDistanceKm
	case KeyTotalTime:
		return &rec.TotalTimeHours
	case KeyFuelCost:
		return &rec.FuelCost
	case KeyNetProfit:
		return &rec.NetProfit
	case KeyHourlyRate:
		return &rec.HourlyRate
	}
	return nil
}

// ParseNumber reads the leading number of a value such as "130.64 zł/h" or
// "70%". Only "." is accepted as the decimal separator.
func ParseNumber(value string) (float64, bool) {
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return 0, false
	}
	token := strings.TrimRightFunc(parts[0], func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	if token == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
