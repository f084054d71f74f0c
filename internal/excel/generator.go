package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/ride-profit/internal/model"
)

const (
	summarySheet = "Podsumowanie"
	tripsSheet   = "Kursy"
	maxSheetName = 31
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.PeriodReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(tripsSheet); err != nil {
		return nil, err
	}
	if err := g.writeTrips(file, tripsSheet, report.Trips); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}, tripsSheet: {}}
	for _, platform := range report.Platforms {
		sheetName := buildSheetName(platform.Platform, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeTrips(file, sheetName, tripsOf(report.Trips, platform.Platform)); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.PeriodReport) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Miesiąc")
	set("B1", report.Month)
	set("A2", "Początek okresu")
	set("B2", formatDate(report.PeriodStart))
	set("A3", "Koniec okresu")
	set("B3", formatDate(report.PeriodEnd.AddDate(0, 0, -1)))
	set("A4", "Liczba kursów")
	set("B4", report.TripCount)
	set("A5", "Przychód brutto (zł)")
	set("B5", round2(report.GrossFare))
	set("A6", "Zysk netto (zł)")
	set("B6", round2(report.NetProfit))
	set("A7", "Dystans (km)")
	set("B7", round2(report.TotalDistanceKm))

	tableRow := 9
	headers := []string{"Platforma", "Liczba kursów", "Średnia stawka (zł/h)", "Zysk netto (zł)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}
	for i, p := range report.Platforms {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), p.Platform)
		set(fmt.Sprintf("B%d", row), p.Trips)
		set(fmt.Sprintf("C%d", row), round2(p.MeanRate))
		set(fmt.Sprintf("D%d", row), round2(p.TotalProfit))
	}

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "D", 22)
	return nil
}

func (g *Generator) writeTrips(file *excelize.File, sheet string, trips []model.TripRecord) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{
		"Data",
		"Platforma",
		"Dystans (km)",
		"Czas (h)",
		"Kwota (zł)",
		"Koszt paliwa (zł)",
		"Zysk netto (zł)",
		"Stawka (zł/h)",
		"Ocena",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, trip := range trips {
		row := 2 + i
		distance, hasDistance := trip.Distance()
		set(fmt.Sprintf("A%d", row), formatDateTime(trip.Timestamp))
		set(fmt.Sprintf("B%d", row), trip.Platform)
		set(fmt.Sprintf("C%d", row), formatFloatValue(distance, hasDistance))
		set(fmt.Sprintf("D%d", row), formatFloat(trip.TotalTimeHours))
		set(fmt.Sprintf("E%d", row), formatFloat(trip.Fare))
		set(fmt.Sprintf("F%d", row), formatFloat(trip.FuelCost))
		set(fmt.Sprintf("G%d", row), formatFloat(trip.NetProfit))
		set(fmt.Sprintf("H%d", row), formatFloat(trip.HourlyRate))
		set(fmt.Sprintf("I%d", row), trip.Rating)
	}

	_ = file.SetColWidth(sheet, "A", "A", 20)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	_ = file.SetColWidth(sheet, "C", "H", 14)
	_ = file.SetColWidth(sheet, "I", "I", 30)
	return nil
}

func tripsOf(trips []model.TripRecord, platform string) []model.TripRecord {
	out := make([]model.TripRecord, 0)
	for _, t := range trips {
		name := t.Platform
		if strings.TrimSpace(name) == "" {
			name = model.DefaultPlatform
		}
		if name == platform {
			out = append(out, t)
		}
	}
	return out
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	base = truncateRunes(base, maxSheetName)

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		nameCandidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.DefaultPlatform
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.Trim(strings.TrimSpace(value), "'")
	if value == "" {
		return model.DefaultPlatform
	}
	return value
}

// truncateRunes cuts by characters, sheet name limits count characters.
func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// formatFloat leaves a missing value as an empty cell.
func formatFloat(value *float64) interface{} {
	if value == nil {
		return ""
	}
	return round2(*value)
}

func formatFloatValue(value float64, ok bool) interface{} {
	if !ok {
		return ""
	}
	return round2(value)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
