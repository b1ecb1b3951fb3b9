package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	"github.com/noah-isme/arsip-desa-api/internal/service"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

type reportServiceStub struct {
	query  dto.PeriodQuery
	format models.ReportFormat
	report *models.ArchiveReport
	file   *service.ReportFile
	chart  []byte
	err    error
}

func (s *reportServiceStub) Query(_ context.Context, query dto.PeriodQuery) (*models.ArchiveReport, error) {
	s.query = query
	return s.report, s.err
}

func (s *reportServiceStub) Export(_ context.Context, query dto.PeriodQuery, format models.ReportFormat) (*service.ReportFile, error) {
	s.query, s.format = query, format
	return s.file, s.err
}

func (s *reportServiceStub) Chart(_ context.Context, query dto.PeriodQuery) ([]byte, error) {
	s.query = query
	return s.chart, s.err
}

func TestReportHandlerArchives(t *testing.T) {
	stub := &reportServiceStub{report: &models.ArchiveReport{
		Period:  models.ReportPeriod{Year: 2023},
		Summary: models.ArchiveSummary{Total: 1, Categories: []models.CategoryCount{{Category: "Surat Masuk", Count: 1}}},
	}}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/archives?year=2023", nil)
	h.Archives(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2023", stub.query.Year)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestReportHandlerExportAttachment(t *testing.T) {
	stub := &reportServiceStub{file: &service.ReportFile{
		FileName:    "laporan-arsip-2024-03.csv",
		ContentType: "text/csv",
		Data:        []byte("No,Judul\n"),
	}}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/archives/export?format=CSV&month=3&year=2024", nil)
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ReportFormatCSV, stub.format)
	assert.Equal(t, `attachment; filename="laporan-arsip-2024-03.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "No,Judul\n", w.Body.String())
}

func TestReportHandlerExportUnknownFormat(t *testing.T) {
	stub := &reportServiceStub{err: appErrors.Clone(appErrors.ErrValidation, "unsupported format")}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/archives/export?format=xls", nil)
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ReportFormat("xls"), stub.format)
}

func TestReportHandlerChartHTML(t *testing.T) {
	stub := &reportServiceStub{chart: []byte("<html>chart</html>")}
	h := NewReportHandler(stub)

	c, w := newGinContext(http.MethodGet, "/reports/archives/chart", nil)
	h.Chart(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>chart</html>", w.Body.String())
}
