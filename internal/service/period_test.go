package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/arsip-desa-api/internal/dto"
	appErrors "github.com/noah-isme/arsip-desa-api/pkg/errors"
)

func TestResolvePeriodMonthAndYear(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	period, err := ResolvePeriod("3", "2024", jakarta)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, jakarta), period.Start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, jakarta), period.End)

	lastSecond := time.Date(2024, 3, 31, 23, 59, 59, 0, jakarta)
	assert.True(t, !lastSecond.Before(period.Start) && lastSecond.Before(period.End))
}

func TestResolvePeriodDecemberRollsYear(t *testing.T) {
	period, err := ResolvePeriod("12", "2023", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), period.End)
}

func TestResolvePeriodWholeYear(t *testing.T) {
	period, err := ResolvePeriod("all", "2023", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, period.Month)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), period.End)
}

func TestResolvePeriodMonthWithoutYearIsIgnored(t *testing.T) {
	period, err := ResolvePeriod("5", "", time.UTC)
	require.NoError(t, err)
	assert.False(t, period.Bounded())
	assert.Equal(t, 0, period.Month)
}

func TestResolvePeriodValidation(t *testing.T) {
	cases := []struct{ month, year string }{
		{"13", "2024"},
		{"0", "2024"},
		{"maret", "2024"},
		{"", "20x4"},
	}
	for _, tc := range cases {
		_, err := ResolvePeriod(tc.month, tc.year, time.UTC)
		require.Error(t, err, "month=%q year=%q", tc.month, tc.year)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestArchiveFilterForAllMeansUnset(t *testing.T) {
	filter, _, err := archiveFilterFor(dto.PeriodQuery{Month: "all", Year: "all", TypeID: "all"}, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, filter.DocumentTypeID)
	assert.Nil(t, filter.From)
	assert.Nil(t, filter.To)

	filter, _, err = archiveFilterFor(dto.PeriodQuery{Year: "2023", TypeID: "type-1"}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "type-1", filter.DocumentTypeID)
	require.NotNil(t, filter.From)
	assert.Equal(t, 2023, filter.From.Year())
}
