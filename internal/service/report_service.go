package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/export"
)

type archiveLister interface {
	List(ctx context.Context, filter models.ArchiveFilter) ([]models.Archive, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

var reportHeaders = []string{"No", "Judul", "Jenis Dokumen", "Nama File", "Tanggal Unggah"}

// ReportFile is a rendered export ready to be sent to the client.
type ReportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ReportService filters archives by period and renders recaps.
type ReportService struct {
	archives archiveLister
	csv      reportRenderer
	pdf      reportRenderer
	chart    reportRenderer
	metrics  *MetricsService
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewReportService constructs the report service. Nil renderers fall back to the
// pkg/export defaults.
func NewReportService(archives archiveLister, csv, pdf, chart reportRenderer, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if chart == nil {
		chart = export.NewChartRenderer()
	}
	return &ReportService{
		archives: archives,
		csv:      csv,
		pdf:      pdf,
		chart:    chart,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// Query returns the records matching the period and type filter with their recap.
func (s *ReportService) Query(ctx context.Context, query dto.PeriodQuery) (*models.ArchiveReport, error) {
	filter, period, err := archiveFilterFor(query, s.loc)
	if err != nil {
		return nil, err
	}
	records, err := s.archives.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query archives")
	}
	if records == nil {
		records = []models.Archive{}
	}
	return &models.ArchiveReport{
		Period:         period,
		DocumentTypeID: filter.DocumentTypeID,
		Records:        records,
		Summary:        Summarize(records),
	}, nil
}

// Summarize counts records per category name in first-seen order.
func Summarize(records []models.Archive) models.ArchiveSummary {
	summary := models.ArchiveSummary{Categories: []models.CategoryCount{}}
	index := make(map[string]int)
	for _, record := range records {
		name := strings.TrimSpace(record.DocumentTypeName)
		if name == "" {
			name = models.UncategorizedLabel
		}
		pos, ok := index[name]
		if !ok {
			pos = len(summary.Categories)
			index[name] = pos
			summary.Categories = append(summary.Categories, models.CategoryCount{Category: name})
		}
		summary.Categories[pos].Count++
		summary.Total++
	}
	return summary
}

// Export renders the query result as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, query dto.PeriodQuery, format models.ReportFormat) (*ReportFile, error) {
	var renderer reportRenderer
	var contentType string
	switch models.ReportFormat(strings.ToLower(string(format))) {
	case models.ReportFormatCSV, "":
		format, renderer, contentType = models.ReportFormatCSV, s.csv, "text/csv"
	case models.ReportFormatPDF:
		format, renderer, contentType = models.ReportFormatPDF, s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	report, err := s.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	data, err := renderer.Render(s.document(report))
	if err != nil {
		s.logger.Error("report render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	s.metrics.IncReportExport(string(format))
	return &ReportFile{
		FileName:    fmt.Sprintf("laporan-arsip-%s.%s", periodSlug(report.Period), format),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Chart renders the recap as an embeddable HTML bar chart.
func (s *ReportService) Chart(ctx context.Context, query dto.PeriodQuery) ([]byte, error) {
	report, err := s.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	data, err := s.chart.Render(s.document(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render chart")
	}
	return data, nil
}

func (s *ReportService) document(report *models.ArchiveReport) export.Report {
	rows := make([]map[string]string, 0, len(report.Records))
	for i, record := range report.Records {
		category := record.DocumentTypeName
		if strings.TrimSpace(category) == "" {
			category = models.UncategorizedLabel
		}
		rows = append(rows, map[string]string{
			"No":             strconv.Itoa(i + 1),
			"Judul":          record.Title,
			"Jenis Dokumen":  category,
			"Nama File":      record.FileName,
			"Tanggal Unggah": record.CreatedAt.In(s.loc).Format("02-01-2006"),
		})
	}
	recap := make([]export.RecapRow, 0, len(report.Summary.Categories))
	for _, c := range report.Summary.Categories {
		recap = append(recap, export.RecapRow{Label: c.Category, Count: c.Count})
	}
	return export.Report{
		Title:       "Laporan Arsip Dokumen",
		Period:      periodLabel(report.Period),
		Table:       export.Dataset{Headers: reportHeaders, Rows: rows},
		Recap:       recap,
		Total:       report.Summary.Total,
		GeneratedAt: s.now().In(s.loc),
	}
}

func periodLabel(p models.ReportPeriod) string {
	switch {
	case !p.Bounded():
		return "Semua Periode"
	case p.Month == 0:
		return fmt.Sprintf("Tahun %d", p.Year)
	default:
		return fmt.Sprintf("%s %d", monthNames[p.Month-1], p.Year)
	}
}

func periodSlug(p models.ReportPeriod) string {
	switch {
	case !p.Bounded():
		return "semua"
	case p.Month == 0:
		return strconv.Itoa(p.Year)
	default:
		return fmt.Sprintf("%d-%02d", p.Year, p.Month)
	}
}
