package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVExporter renders reports into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes the detail table, an empty line, then the recap with a total row.
func (e *CSVExporter) Render(report Report) ([]byte, error) {
	data := report.Table
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	if len(report.Recap) > 0 {
		lines := [][]string{{}, {"Jenis Dokumen", "Jumlah"}}
		for _, recap := range report.Recap {
			lines = append(lines, []string{recap.Label, strconv.Itoa(recap.Count)})
		}
		lines = append(lines, []string{"Total", strconv.Itoa(report.Total)})
		if err := writer.WriteAll(lines); err != nil {
			return nil, fmt.Errorf("write csv recap: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
