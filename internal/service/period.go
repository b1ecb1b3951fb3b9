package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	"github.com/noah-isme/arsip-desa-api/internal/models"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

// ResolvePeriod turns raw month/year parameters into a half-open window in loc.
// Empty values and the literal "all" mean "not provided". A month without a year
// is validated but otherwise ignored.
func ResolvePeriod(month, year string, loc *time.Location) (models.ReportPeriod, error) {
	if loc == nil {
		loc = time.UTC
	}
	var period models.ReportPeriod

	if raw, ok := providedParam(month); ok {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return period, appErrors.Clone(appErrors.ErrValidation, "month must be between 1 and 12")
		}
		period.Month = m
	}
	raw, ok := providedParam(year)
	if !ok {
		period.Month = 0
		return period, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1 || y > 9999 {
		return period, appErrors.Clone(appErrors.ErrValidation, "year must be numeric")
	}
	period.Year = y

	if period.Month == 0 {
		period.Start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		period.End = period.Start.AddDate(1, 0, 0)
	} else {
		period.Start = time.Date(y, time.Month(period.Month), 1, 0, 0, 0, 0, loc)
		period.End = period.Start.AddDate(0, 1, 0)
	}
	return period, nil
}

// archiveFilterFor builds the repository filter for a period query.
func archiveFilterFor(query dto.PeriodQuery, loc *time.Location) (models.ArchiveFilter, models.ReportPeriod, error) {
	period, err := ResolvePeriod(query.Month, query.Year, loc)
	if err != nil {
		return models.ArchiveFilter{}, period, err
	}
	filter := models.ArchiveFilter{}
	if typeID, ok := providedParam(query.TypeID); ok {
		filter.DocumentTypeID = typeID
	}
	if period.Bounded() {
		start, end := period.Start, period.End
		filter.From = &start
		filter.To = &end
	}
	return filter, period, nil
}

func providedParam(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", false
	}
	return raw, true
}
