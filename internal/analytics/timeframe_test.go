package analytics

import (
	"testing"
	"time"

	"suq-dashboard-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeframe(t *testing.T) {
	cases := []struct {
		input   string
		want    Timeframe
		wantErr bool
	}{
		{input: "today", want: TimeframeToday},
		{input: "week", want: TimeframeWeek},
		{input: "month", want: TimeframeMonth},
		{input: "quarter", want: TimeframeQuarter},
		{input: "year", want: TimeframeYear},
		{input: "total", want: TimeframeTotal},
		{input: "", want: TimeframeTotal},
		{input: "fortnight", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseTimeframe(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRangeBounds(t *testing.T) {
	now := time.Date(2025, time.March, 31, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		tf    Timeframe
		start time.Time
	}{
		{TimeframeToday, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)},
		{TimeframeWeek, now.AddDate(0, 0, -7)},
		{TimeframeMonth, now.AddDate(0, -1, 0)},
		{TimeframeQuarter, now.AddDate(0, -3, 0)},
		{TimeframeYear, now.AddDate(-1, 0, 0)},
	}

	for _, tc := range cases {
		t.Run(string(tc.tf), func(t *testing.T) {
			rng := tc.tf.Range(now)
			require.NotNil(t, rng)
			assert.Equal(t, tc.start, rng.Start)
			assert.Equal(t, now, rng.End)
		})
	}

	assert.Nil(t, TimeframeTotal.Range(now))
}

func TestPreviousRangePrecedesCurrent(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	for _, tf := range []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeQuarter, TimeframeYear} {
		current := tf.Range(now)
		previous := tf.PreviousRange(now)
		require.NotNil(t, previous, tf)
		assert.Equal(t, current.Start, previous.End, tf)
		assert.True(t, previous.Start.Before(previous.End), tf)
	}

	previous := TimeframeToday.PreviousRange(now)
	require.NotNil(t, previous)
	assert.Equal(t, time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), previous.Start)
	assert.Equal(t, now.AddDate(0, 0, -1), previous.End)

	assert.Nil(t, TimeframeTotal.PreviousRange(now))
}

func TestFilterOrdersSubsetAndBounds(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	orders := []model.Order{
		order(1, "a", now),                     // in window
		order(2, "b", now.AddDate(0, 0, -7)),   // exactly on start bound
		order(3, "c", now.AddDate(0, 0, -8)),   // before start
		order(4, "d", now.Add(2*time.Hour)),    // after end
		order(5, "e", now.AddDate(0, 0, -3)),   // in window
	}

	filtered := FilterOrders(orders, TimeframeWeek, now)

	require.Len(t, filtered, 3)
	rng := TimeframeWeek.Range(now)
	for _, o := range filtered {
		assert.True(t, rng.Contains(o.OrderDate))
	}

	assert.Equal(t, orders, FilterOrders(orders, TimeframeTotal, now))
}
