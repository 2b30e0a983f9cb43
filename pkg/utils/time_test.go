package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate_AcceptsBothLayouts(t *testing.T) {
	fromDate, err := ParseDate("1950-01-02")
	require.NoError(t, err)
	assert.Equal(t, 1950, fromDate.Year())
	assert.Equal(t, 2, fromDate.Day())

	fromTimestamp, err := ParseDate("1950-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, fromDate.Year(), fromTimestamp.Year())

	_, err = ParseDate("02/01/1950")
	assert.Error(t, err)
}

func TestParseDateOrNow_FallsBack(t *testing.T) {
	parsed := ParseDateOrNow("1950-01-02")
	assert.Equal(t, 1950, parsed.Year())

	before := time.Now()
	fallback := ParseDateOrNow("garbage")
	assert.False(t, fallback.Before(before))
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = ParseOptionalDate(&empty)
	require.NoError(t, err)
	assert.Nil(t, got)

	valid := "2000-12-31"
	got, err = ParseOptionalDate(&valid)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2000-12-31", FormatDate(*got))

	bad := "never"
	_, err = ParseOptionalDate(&bad)
	assert.Error(t, err)
}

func TestFormatOptionalDate(t *testing.T) {
	assert.Nil(t, FormatOptionalDate(nil))

	when := time.Date(1990, 6, 15, 10, 0, 0, 0, time.UTC)
	got := FormatOptionalDate(&when)
	require.NotNil(t, got)
	assert.Equal(t, "1990-06-15", *got)
}
