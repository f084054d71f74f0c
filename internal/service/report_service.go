package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
	"github.com/nurpe/ride-profit/internal/repository"
	"github.com/nurpe/ride-profit/internal/stats"
)

type ExcelGenerator interface {
	Generate(report model.PeriodReport) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report model.PeriodReport) ([]byte, error)
}

type ReportService struct {
	logs     repository.LogStore
	excel    ExcelGenerator
	pdf      PDFGenerator
	calendar Calendar
}

type GenerateReportResult struct {
	FileName string
	Content  []byte
}

func NewReportService(logs repository.LogStore, excel ExcelGenerator, pdf PDFGenerator, calendar Calendar) *ReportService {
	return &ReportService{
		logs:     logs,
		excel:    excel,
		pdf:      pdf,
		calendar: calendar,
	}
}

// Period builds the report for month (YYYY-MM); an empty month means the
// current one.
func (s *ReportService) Period(ctx context.Context, principal model.Principal, month string) (*model.PeriodReport, error) {
	month = strings.TrimSpace(month)
	if month == "" {
		month = s.calendar.now().Format(codec.MonthLayout)
	}
	start, err := stats.MonthStart(month, s.calendar.location())
	if err != nil {
		return nil, fmt.Errorf("%w: month must be in YYYY-MM format", ErrInvalidInput)
	}

	records, err := loadRecords(ctx, s.logs, principal.UserID, s.calendar.location())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	report := stats.Period(records, start)
	return &report, nil
}

func (s *ReportService) PeriodExcel(ctx context.Context, principal model.Principal, month string) (*GenerateReportResult, error) {
	return s.export(ctx, principal, month, "xlsx", s.excel.Generate)
}

func (s *ReportService) PeriodPDF(ctx context.Context, principal model.Principal, month string) (*GenerateReportResult, error) {
	return s.export(ctx, principal, month, "pdf", s.pdf.Generate)
}

func (s *ReportService) export(
	ctx context.Context,
	principal model.Principal,
	month, ext string,
	generate func(model.PeriodReport) ([]byte, error),
) (*GenerateReportResult, error) {
	report, err := s.Period(ctx, principal, month)
	if err != nil {
		return nil, err
	}
	if report.TripCount == 0 {
		return nil, fmt.Errorf("%w: no trips in %s", ErrNoData, report.Month)
	}

	content, err := generate(*report)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName: buildFileName(principal, *report, ext),
		Content:  content,
	}, nil
}

func buildFileName(principal model.Principal, report model.PeriodReport, ext string) string {
	user := sanitizeFileName(principal.UserID)
	if user == "" {
		user = "driver"
	}
	return fmt.Sprintf("kursy-%s-%s.%s", user, report.Month, ext)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
