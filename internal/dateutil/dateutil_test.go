package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-04 — среда
var wednesday = time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

func TestWeekdayConversion(t *testing.T) {
	cases := []struct {
		house int
		std   time.Weekday
	}{
		{0, time.Monday},
		{1, time.Tuesday},
		{2, time.Wednesday},
		{3, time.Thursday},
		{4, time.Friday},
		{5, time.Saturday},
		{6, time.Sunday},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.std, ToTimeWeekday(tc.house))
		assert.Equal(t, tc.house, FromTimeWeekday(tc.std))
	}
}

func TestNextWeekday(t *testing.T) {
	t.Run("upcoming day in the same week", func(t *testing.T) {
		got := NextWeekday(4, wednesday) // пятница
		assert.Equal(t, time.Friday, got.Weekday())
		assert.Equal(t, "2026-03-06", FormatDate(got))
	})

	t.Run("sunday maps to house index 6", func(t *testing.T) {
		got := NextWeekday(6, wednesday)
		assert.Equal(t, time.Sunday, got.Weekday())
		assert.Equal(t, "2026-03-08", FormatDate(got))
	})

	t.Run("same weekday jumps a full week ahead", func(t *testing.T) {
		got := NextWeekday(2, wednesday) // среда -> через неделю
		assert.Equal(t, "2026-03-11", FormatDate(got))
	})

	t.Run("result is strictly after the anchor", func(t *testing.T) {
		for day := 0; day <= 6; day++ {
			got := NextWeekday(day, wednesday)
			assert.True(t, got.After(Midnight(wednesday)), "day %d", day)
		}
	})
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2026-03-04", FormatDate(wednesday))
	assert.Equal(t, "2026-01-09", FormatDate(time.Date(2026, 1, 9, 23, 59, 0, 0, time.Local)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, time.Local, d.Location())

	_, err = ParseDate("04.03.2026")
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:45")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 45, m)

	_, _, err = ParseClock("9:45pm")
	assert.Error(t, err)
}

func TestWeekBounds(t *testing.T) {
	// Неделя квот: воскресенье — суббота
	start := WeekStart(wednesday)
	end := WeekEnd(wednesday)

	assert.Equal(t, time.Sunday, start.Weekday())
	assert.Equal(t, "2026-03-01", FormatDate(start))
	assert.Equal(t, time.Saturday, end.Weekday())
	assert.Equal(t, "2026-03-07", FormatDate(end))

	assert.True(t, InWeek(wednesday, start, end))
	assert.True(t, InWeek(start, start, end))
	assert.True(t, InWeek(end, start, end))
	assert.False(t, InWeek(start.AddDate(0, 0, -1), start, end))
	assert.False(t, InWeek(end.AddDate(0, 0, 1), start, end))
}

func TestDaysUntil(t *testing.T) {
	day := func(s string) time.Time {
		d, err := ParseDate(s)
		require.NoError(t, err)
		return d
	}

	assert.Equal(t, 0, DaysUntil(wednesday, day("2026-03-04")))
	assert.Equal(t, 1, DaysUntil(wednesday, day("2026-03-05")))
	assert.Equal(t, 7, DaysUntil(wednesday, day("2026-03-11")))
	assert.Equal(t, -1, DaysUntil(wednesday, day("2026-03-03")))
}

func TestSlotStart(t *testing.T) {
	start, err := SlotStart("2026-03-04", "14:30")
	require.NoError(t, err)
	assert.Equal(t, 14, start.Hour())
	assert.Equal(t, 30, start.Minute())
	assert.Equal(t, "2026-03-04", FormatDate(start))

	_, err = SlotStart("bad", "14:30")
	assert.Error(t, err)
	_, err = SlotStart("2026-03-04", "bad")
	assert.Error(t, err)
}
