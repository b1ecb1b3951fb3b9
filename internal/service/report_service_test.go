package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
	"github.com/noah-isme/arsip-desa-api/pkg/export"
)

type rendererStub struct {
	last export.Report
	err  error
}

func (r *rendererStub) Render(report export.Report) ([]byte, error) {
	r.last = report
	if r.err != nil {
		return nil, r.err
	}
	return []byte("rendered"), nil
}

func reportRepo() *archiveRepoStub {
	repo := newArchiveRepoStub()
	add := func(id, typeID, typeName string, at time.Time) {
		repo.items[id] = &models.Archive{ID: id, Title: "Arsip " + id, DocumentTypeID: typeID, DocumentTypeName: typeName, FileName: id + ".pdf", CreatedAt: at}
	}
	add("a", "t1", "Surat Masuk", time.Date(2023, 6, 15, 3, 0, 0, 0, time.UTC))
	add("b", "t1", "Surat Masuk", time.Date(2022, 1, 1, 3, 0, 0, 0, time.UTC))
	add("c", "t2", "", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	add("d", "t3", "Peraturan Desa", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	add("e", "t1", "Surat Masuk", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	add("f", "t1", "Surat Masuk", time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	return repo
}

func TestReportQueryYear2023(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	report, err := svc.Query(context.Background(), dto.PeriodQuery{Year: "2023", Month: "all", TypeID: "all"})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "a", report.Records[0].ID)
}

func TestReportQueryMonthBoundsAndType(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	report, err := svc.Query(context.Background(), dto.PeriodQuery{Month: "3", Year: "2024"})
	require.NoError(t, err)
	ids := make([]string, 0, len(report.Records))
	for _, r := range report.Records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"d", "f", "c"}, ids)

	report, err = svc.Query(context.Background(), dto.PeriodQuery{Month: "3", Year: "2024", TypeID: "t1"})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	assert.Equal(t, "f", report.Records[0].ID)
	assert.Equal(t, "t1", report.DocumentTypeID)
}

func TestReportQueryHonoursTimezone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	repo := newArchiveRepoStub()
	// 2024-02-29 18:00 UTC is already March 1st in Jakarta.
	repo.items["x"] = &models.Archive{ID: "x", DocumentTypeName: "Surat Masuk", CreatedAt: time.Date(2024, 2, 29, 18, 0, 0, 0, time.UTC)}
	svc := NewReportService(repo, nil, nil, nil, nil, nil, jakarta)

	report, err := svc.Query(context.Background(), dto.PeriodQuery{Month: "3", Year: "2024"})
	require.NoError(t, err)
	assert.Len(t, report.Records, 1)
}

func TestReportQueryValidation(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	for _, q := range []dto.PeriodQuery{{Month: "0", Year: "2024"}, {Month: "13"}, {Year: "abc"}} {
		_, err := svc.Query(context.Background(), q)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}

	report, err := svc.Query(context.Background(), dto.PeriodQuery{Month: "5"})
	require.NoError(t, err)
	assert.Len(t, report.Records, 6)
}

func TestSummarizeFirstSeenOrder(t *testing.T) {
	records := []models.Archive{
		{DocumentTypeName: "Surat Keluar"},
		{DocumentTypeName: "Surat Masuk"},
		{DocumentTypeName: ""},
		{DocumentTypeName: "Surat Keluar"},
		{DocumentTypeName: "  "},
	}
	want := models.ArchiveSummary{
		Categories: []models.CategoryCount{
			{Category: "Surat Keluar", Count: 2},
			{Category: "Surat Masuk", Count: 1},
			{Category: models.UncategorizedLabel, Count: 2},
		},
		Total: 5,
	}
	if diff := cmp.Diff(want, Summarize(records)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Categories)
}

func TestReportExportCSV(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	file, err := svc.Export(context.Background(), dto.PeriodQuery{Month: "3", Year: "2024"}, models.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "laporan-arsip-2024-03.csv", file.FileName)
	assert.Equal(t, "text/csv", file.ContentType)
	body := string(file.Data)
	assert.Contains(t, body, "Peraturan Desa")
	assert.Contains(t, body, "uncategorized")
	assert.True(t, strings.Contains(body, "Total,3"))
}

func TestReportExportPDFUsesRenderer(t *testing.T) {
	pdf := &rendererStub{}
	svc := NewReportService(reportRepo(), nil, pdf, nil, nil, nil, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), dto.PeriodQuery{Year: "2023"}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "laporan-arsip-2023.pdf", file.FileName)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "Tahun 2023", pdf.last.Period)
	assert.Equal(t, 1, pdf.last.Total)
	assert.Equal(t, []export.RecapRow{{Label: "Surat Masuk", Count: 1}}, pdf.last.Recap)
	assert.Equal(t, "15-06-2023", pdf.last.Table.Rows[0]["Tanggal Unggah"])
}

func TestReportExportRejectsUnknownFormat(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	_, err := svc.Export(context.Background(), dto.PeriodQuery{}, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportChart(t *testing.T) {
	svc := NewReportService(reportRepo(), nil, nil, nil, nil, nil, time.UTC)
	html, err := svc.Chart(context.Background(), dto.PeriodQuery{})
	require.NoError(t, err)
	assert.True(t, bytes.Contains(html, []byte("Surat Masuk")))
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "Semua Periode", periodLabel(models.ReportPeriod{}))
	assert.Equal(t, "Maret 2024", periodLabel(models.ReportPeriod{Month: 3, Year: 2024}))
}
