package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/ride-profit/internal/model"
)

const fontName = "Helvetica"

// Core fonts cover cp1252 only, so Polish letters are folded to ASCII.
var polishFold = strings.NewReplacer(
	"ą", "a", "ć", "c", "ę", "e", "ł", "l", "ń", "n", "ó", "o", "ś", "s", "ź", "z", "ż", "z",
	"Ą", "A", "Ć", "C", "Ę", "E", "Ł", "L", "Ń", "N", "Ó", "O", "Ś", "S", "Ź", "Z", "Ż", "Z",
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.PeriodReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	translate := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string {
		return translate(stripSymbols(polishFold.Replace(s)))
	}

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, text(fmt.Sprintf("Raport kursów za %s", report.Month)), "", 1, "C", false, 0, "")

	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, text(fmt.Sprintf("Okres: %s - %s",
		formatDate(report.PeriodStart),
		formatDate(report.PeriodEnd.AddDate(0, 0, -1)),
	)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, text("Podsumowanie"), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	lines := []string{
		fmt.Sprintf("Liczba kursów: %d", report.TripCount),
		fmt.Sprintf("Przychód brutto: %s zł", formatAmount(report.GrossFare, 2)),
		fmt.Sprintf("Zysk netto: %s zł", formatAmount(report.NetProfit, 2)),
		fmt.Sprintf("Dystans: %s km", formatAmount(report.TotalDistanceKm, 1)),
	}
	for _, line := range lines {
		pdf.MultiCell(0, 6, text(line), "", "L", false)
	}
	pdf.Ln(2)

	if len(report.Platforms) > 0 {
		pdf.SetFont(fontName, "B", 12)
		pdf.CellFormat(0, 8, text("Platformy"), "", 1, "L", false, 0, "")

		headers := []string{"Platforma", "Kursy", "Średnia stawka (zł/h)", "Zysk netto (zł)"}
		colWidths := []float64{80, 30, 60, 60}
		drawTableRow(pdf, mapText(text, headers), colWidths, true)
		for _, p := range report.Platforms {
			drawTableRow(pdf, mapText(text, []string{
				p.Platform,
				fmt.Sprintf("%d", p.Trips),
				formatAmount(p.MeanRate, 2),
				formatAmount(p.TotalProfit, 2),
			}), colWidths, false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, text("Kursy"), "", 1, "L", false, 0, "")

	headers := []string{"Data", "Platforma", "Dystans (km)", "Kwota (zł)", "Zysk netto (zł)", "Stawka (zł/h)", "Ocena"}
	colWidths := []float64{40, 35, 28, 28, 32, 30, 74}
	drawTableRow(pdf, mapText(text, headers), colWidths, true)
	for _, trip := range report.Trips {
		distance, ok := trip.Distance()
		drawTableRow(pdf, mapText(text, []string{
			trip.Timestamp.Format("2006-01-02 15:04"),
			trip.Platform,
			optionalAmount(distance, ok, 1),
			formatPtr(trip.Fare),
			formatPtr(trip.NetProfit),
			formatPtr(trip.HourlyRate),
			safeValue(trip.Rating),
		}), colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "C"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func mapText(text func(string) string, values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = text(v)
	}
	return out
}

// stripSymbols drops characters outside Latin-1, emoji in ratings mostly.
func stripSymbols(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > 0xFF {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatPtr(value *float64) string {
	if value == nil {
		return "-"
	}
	return formatAmount(*value, 2)
}

func optionalAmount(value float64, ok bool, precision int) string {
	if !ok {
		return "-"
	}
	return formatAmount(value, precision)
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
