package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const pageWidth = 190.0

// PDFExporter renders reports into a printable A4 document.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a heading, the detail table, and the recap table.
func (e *PDFExporter) Render(report Report) ([]byte, error) {
	data := report.Table
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 15, 10)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(pageWidth/2, 6, tr("Dicetak "+report.generatedAt()), "", 0, "L", false, 0, "")
		pdf.CellFormat(pageWidth/2, 6, fmt.Sprintf("Hal. %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if report.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(report.Title)), "", 1, "C", false, 0, "")
	}
	if report.Period != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(report.Period), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	writeTable(pdf, tr, data.Headers, rowsOf(data))

	if len(report.Recap) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Rekapitulasi", "", 1, "L", false, 0, "")
		recapRows := make([][]string, 0, len(report.Recap)+1)
		for _, recap := range report.Recap {
			recapRows = append(recapRows, []string{recap.Label, strconv.Itoa(recap.Count)})
		}
		recapRows = append(recapRows, []string{"Total", strconv.Itoa(report.Total)})
		writeTable(pdf, tr, []string{"Jenis Dokumen", "Jumlah"}, recapRows)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func rowsOf(data Dataset) [][]string {
	rows := make([][]string, 0, len(data.Rows))
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		rows = append(rows, record)
	}
	return rows
}

func writeTable(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, rows [][]string) {
	colWidth := pageWidth / float64(len(headers))
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, header := range headers {
		pdf.CellFormat(colWidth, 8, tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	maxChars := int(colWidth / 1.9)
	for _, row := range rows {
		for _, value := range row {
			pdf.CellFormat(colWidth, 7, tr(truncate(value, maxChars)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if max <= 3 || len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
