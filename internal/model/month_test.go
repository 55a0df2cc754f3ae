package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Month
		wantErr bool
	}{
		{name: "plain", input: "2024-03", want: Month{Year: 2024, Month: time.March}},
		{name: "surrounding space", input: " 2023-12 ", want: Month{Year: 2023, Month: time.December}},
		{name: "full date", input: "2024-03-01", wantErr: true},
		{name: "month out of range", input: "2024-13", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "single digit month", input: "2024-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonth(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonth_Bounds(t *testing.T) {
	tests := []struct {
		month     Month
		wantStart string
		wantEnd   string
	}{
		{Month{2024, time.January}, "2024-01-01", "2024-01-31"},
		{Month{2024, time.February}, "2024-02-01", "2024-02-29"},
		{Month{2023, time.February}, "2023-02-01", "2023-02-28"},
		{Month{1900, time.February}, "1900-02-01", "1900-02-28"},
		{Month{2000, time.February}, "2000-02-01", "2000-02-29"},
		{Month{2024, time.April}, "2024-04-01", "2024-04-30"},
		{Month{2024, time.December}, "2024-12-01", "2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.month.Start())
			assert.Equal(t, tt.wantEnd, tt.month.End())
		})
	}
}

func TestMonth_Navigation(t *testing.T) {
	jan := Month{Year: 2024, Month: time.January}

	assert.Equal(t, Month{Year: 2023, Month: time.December}, jan.Prev())
	assert.Equal(t, Month{Year: 2024, Month: time.February}, jan.Next())
	assert.Equal(t, jan, jan.Next().Prev())
	assert.Equal(t, Month{Year: 2025, Month: time.January}, Month{Year: 2024, Month: time.December}.Next())
}

func TestMonth_Formatting(t *testing.T) {
	m := Month{Year: 2024, Month: time.September}

	assert.Equal(t, "September 2024", m.Label())
	assert.Equal(t, "2024-09", m.String())
	assert.False(t, m.IsZero())
	assert.True(t, Month{}.IsZero())
}

func TestMonthOf(t *testing.T) {
	ts := time.Date(2024, time.July, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Month{Year: 2024, Month: time.July}, MonthOf(ts))
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate(" 2024-02-29 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", got)

	for _, bad := range []string{"2023-02-29", "2024/02/01", "02-01-2024", "2024-2-1", ""} {
		_, err := NormalizeDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}
