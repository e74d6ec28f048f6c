package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayNumberFromWeekday(t *testing.T) {
	tests := []struct {
		wd   time.Weekday
		want DayNumber
	}{
		{time.Monday, Monday},
		{time.Wednesday, Wednesday},
		{time.Saturday, Saturday},
		{time.Sunday, Sunday},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DayNumberFromWeekday(tt.wd), tt.wd.String())
	}

	// 2025-01-05 是周日
	d, err := ParseDate("2025-01-05")
	require.NoError(t, err)
	assert.Equal(t, Sunday, DayNumberFromWeekday(d.Weekday()))
	assert.True(t, Sunday.IsWeekend())
	assert.False(t, Friday.IsWeekend())
}

func TestTimeEntryValidate(t *testing.T) {
	tests := []struct {
		name  string
		entry TimeEntry
		want  error
	}{
		{"day entry", TimeEntry{ID: "a", Day: Monday, OpenTime: "08:00", CloseTime: "20:00"}, nil},
		{"date entry", TimeEntry{ID: "a", Date: "2024-02-29", OpenTime: "00:00", CloseTime: "23:59"}, nil},
		{"missing id", TimeEntry{Day: Monday, OpenTime: "08:00", CloseTime: "20:00"}, ErrEntryMissingID},
		{"no key", TimeEntry{ID: "a", OpenTime: "08:00", CloseTime: "20:00"}, ErrEntryNoKey},
		{"both keys", TimeEntry{ID: "a", Day: Monday, Date: "2025-01-06", OpenTime: "08:00", CloseTime: "20:00"}, ErrEntryNoKey},
		{"day out of range", TimeEntry{ID: "a", Day: 8, OpenTime: "08:00", CloseTime: "20:00"}, ErrEntryBadDay},
		{"bad date", TimeEntry{ID: "a", Date: "2025-02-29", OpenTime: "08:00", CloseTime: "20:00"}, ErrEntryBadDate},
		{"bad clock", TimeEntry{ID: "a", Day: Monday, OpenTime: "8:00", CloseTime: "20:00"}, ErrEntryBadClock},
		{"equal window", TimeEntry{ID: "a", Day: Monday, OpenTime: "08:00", CloseTime: "08:00"}, ErrEntryBadWindow},
		{"inverted window", TimeEntry{ID: "a", Day: Monday, OpenTime: "20:00", CloseTime: "08:00"}, ErrEntryBadWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("13:45")
	require.NoError(t, err)
	assert.Equal(t, 13*60+45, m)

	for _, s := range []string{"25:00", "9:00", "09:5", "9:5", " 09:00", "09:00:00"} {
		_, err = ParseClock(s)
		assert.ErrorIs(t, err, ErrEntryBadClock, s)
	}
}

func TestParseDateRequiresCanonicalForm(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), d)

	for _, s := range []string{"2025-3-09", "2025-03-9", "2025-02-30", "25-03-09"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestValidateWindowRejectsUnpaddedClock(t *testing.T) {
	assert.ErrorIs(t, ValidateWindow("9:00", "17:00"), ErrEntryBadClock)
	assert.NoError(t, ValidateWindow("09:00", "17:00"))
}

func TestZoneTimeTableValidate(t *testing.T) {
	valid := func() *ZoneTimeTable {
		return &ZoneTimeTable{
			ZoneID: "zone24",
			WorkTime: []TimeEntry{
				{ID: "w1", Day: Monday, OpenTime: "08:00", CloseTime: "20:00"},
				{ID: "w2", Date: "2025-01-04", OpenTime: "10:00", CloseTime: "16:00"},
			},
			SpecialTime: []TimeEntry{
				{ID: "s1", Date: "2025-05-01", OpenTime: "10:00", CloseTime: "14:00"},
			},
		}
	}

	assert.NoError(t, valid().Validate())

	dup := valid()
	dup.SpecialTime[0].ID = "w1"
	assert.ErrorContains(t, dup.Validate(), "w1")

	byDay := valid()
	byDay.SpecialTime[0] = TimeEntry{ID: "s1", Day: Friday, OpenTime: "10:00", CloseTime: "14:00"}
	assert.ErrorIs(t, byDay.Validate(), ErrEntryDayInKind)

	broken := valid()
	broken.WorkTime[1].CloseTime = "09:00"
	assert.ErrorIs(t, broken.Validate(), ErrEntryBadWindow)
}
