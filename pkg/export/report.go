package export

import "time"

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// RecapRow is one line of a per-category recap.
type RecapRow struct {
	Label string
	Count int
}

// Report is a printable recap: a detail table followed by per-category counts.
type Report struct {
	Title       string
	Period      string
	Table       Dataset
	Recap       []RecapRow
	Total       int
	GeneratedAt time.Time
}

func (r Report) generatedAt() string {
	ts := r.GeneratedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format("02-01-2006 15:04")
}
