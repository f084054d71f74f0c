package stats

import (
	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

const (
	KindScatter = "scatter"
	KindBar     = "bar"
	KindLine    = "line"
	KindHeatmap = "heatmap"
)

var weekdayNames = []string{"Pon", "Wt", "Śr", "Czw", "Pt", "Sob", "Nd"}

func RateChart(ts model.TimeSeries) model.Series {
	s := model.Series{
		Name:   "rate",
		Kind:   KindScatter,
		Title:  "Stawka godzinowa w czasie",
		XTitle: "Data i czas",
		YTitle: "Stawka (zł/h)",
	}
	s.X, s.Y = points(ts.Rates)
	return s
}

func ProfitChart(ts model.TimeSeries) model.Series {
	s := model.Series{
		Name:   "profit",
		Kind:   KindBar,
		Title:  "Zysk netto z kursów",
		XTitle: "Data i czas",
		YTitle: "Zysk (zł)",
	}
	s.X, s.Y = points(ts.Profits)
	return s
}

func HourlyChart(hv model.HourlyView) model.Series {
	s := model.Series{
		Name:   "hourly",
		Kind:   KindBar,
		Title:  "Średnia stawka godzinowa według godzin dnia",
		XTitle: "Godzina",
		YTitle: "Średnia stawka (zł/h)",
		X:      make([]string, 0, len(hv.Hours)),
		Y:      make([]float64, 0, len(hv.Hours)),
	}
	for _, h := range hv.Hours {
		s.X = append(s.X, FormatHour(h.Hour))
		s.Y = append(s.Y, h.MeanRate)
	}
	return s
}

func PlatformChart(pv model.PlatformView) model.Series {
	s := model.Series{
		Name:   "platforms",
		Kind:   KindBar,
		Title:  "Średnia stawka według platform",
		XTitle: "Platforma",
		YTitle: "Średnia stawka (zł/h)",
		X:      make([]string, 0, len(pv.Platforms)),
		Y:      make([]float64, 0, len(pv.Platforms)),
	}
	for _, p := range pv.Platforms {
		s.X = append(s.X, p.Platform)
		s.Y = append(s.Y, p.MeanRate)
	}
	return s
}

// HeatmapChart lays the grid out with hours on X and weekdays (Monday first)
// as rows of Z.
func HeatmapChart(hm model.Heatmap) model.Series {
	s := model.Series{
		Name:    "heatmap",
		Kind:    KindHeatmap,
		Title:   "Średni zysk netto według dnia tygodnia i godziny",
		XTitle:  "Godzina",
		YTitle:  "Dzień tygodnia",
		X:       make([]string, 24),
		YLabels: weekdayNames,
		Z:       make([][]*float64, 7),
	}
	for h := range 24 {
		s.X[h] = FormatHour(h)
	}
	for d := range 7 {
		s.Z[d] = hm.Cells[d][:]
	}
	return s
}

func ForecastChart(f model.Forecast) model.Series {
	s := model.Series{
		Name:   "forecast",
		Kind:   KindLine,
		Title:  "Zysk netto dziennie (ostatnie 30 dni)",
		XTitle: "Dzień",
		YTitle: "Zysk (zł)",
		X:      make([]string, 0, len(f.Days)),
		Y:      make([]float64, 0, len(f.Days)),
	}
	for _, d := range f.Days {
		s.X = append(s.X, d.Day)
		s.Y = append(s.Y, d.NetProfit)
	}
	return s
}

// Dashboard bundles the three main charts with the overview figures.
func Dashboard(records []model.TripRecord) model.Dashboard {
	ts := TimeSeriesView(records)
	hv := HourlyView(records)
	return model.Dashboard{
		Charts:   []model.Series{RateChart(ts), ProfitChart(ts), HourlyChart(hv)},
		Overview: Overview(records),
		Hourly:   hv,
	}
}

func points(ps []model.Point) ([]string, []float64) {
	x := make([]string, 0, len(ps))
	y := make([]float64, 0, len(ps))
	for _, p := range ps {
		x = append(x, p.Time.Format(codec.TimestampLayout))
		y = append(y, p.Value)
	}
	return x, y
}
