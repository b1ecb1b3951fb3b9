package models

import "time"

// UncategorizedLabel groups records without a category name.
const UncategorizedLabel = "uncategorized"

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportPeriod is a resolved report window. Zero Start means all time.
type ReportPeriod struct {
	Month int       `json:"month,omitempty"`
	Year  int       `json:"year,omitempty"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// Bounded reports whether the period restricts by date.
func (p ReportPeriod) Bounded() bool {
	return p.Year != 0
}

// CategoryCount is one recap line.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

// ArchiveSummary groups records by category name in first-seen order.
type ArchiveSummary struct {
	Categories []CategoryCount `json:"categories"`
	Total      int             `json:"total"`
}

// ArchiveReport bundles the filtered records with their recap.
type ArchiveReport struct {
	Period         ReportPeriod   `json:"period"`
	DocumentTypeID string         `json:"documentTypeId,omitempty"`
	Records        []Archive      `json:"records"`
	Summary        ArchiveSummary `json:"summary"`
}
