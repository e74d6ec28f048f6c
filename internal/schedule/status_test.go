package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

func mustDate(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStatusSpecialOverridesWeekday(t *testing.T) {
	work := []domain.TimeEntry{dayEntry("w1", domain.Monday, "08:00", "20:00")}
	special := []domain.TimeEntry{dateEntry("s1", "2025-01-06", "00:00", "23:59")}

	// 2025-01-06 是周一
	assert.Equal(t, StatusSpecial, StatusOf(mustDate("2025-01-06"), work, special))
	assert.Equal(t, StatusWeekday, StatusOf(mustDate("2025-01-13"), work, special))
}

func TestResolverStatuses(t *testing.T) {
	work := []domain.TimeEntry{
		dayEntry("w1", domain.Wednesday, "08:00", "20:00"),
		dayEntry("w6", domain.Saturday, "10:00", "16:00"),
		dateEntry("p1", "2025-01-05", "10:00", "16:00"),
		dateEntry("p2", "2025-01-07", "10:00", "16:00"),
	}
	r := NewResolver(work, nil)

	tests := []struct {
		date string
		want Status
	}{
		{"2025-01-01", StatusWeekday}, // 周三
		{"2025-01-02", StatusNone},    // 周四
		{"2025-01-04", StatusWeekend}, // 周六
		{"2025-01-05", StatusWeekend}, // 固定日期，周日
		{"2025-01-07", StatusWeekday}, // 固定日期，周二
		{"2025-01-14", StatusNone},    // 周二，但没有固定日期
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.StatusOf(mustDate(tt.date)), tt.date)
	}
}

func TestResolverEmpty(t *testing.T) {
	r := NewResolver(nil, nil)
	assert.Equal(t, StatusNone, r.StatusOf(mustDate("2025-06-01")))
}

func TestBuildMonthLeadingBlanks(t *testing.T) {
	r := NewResolver([]domain.TimeEntry{dayEntry("w", domain.Monday, "08:00", "20:00")}, nil)

	// 2025 年 1 月 1 日是周三，前面需要两个空格
	m := BuildMonth(2025, time.January, r)
	require.Len(t, m.Cells, 2+31)
	assert.Empty(t, m.Cells[0].Date)
	assert.Empty(t, m.Cells[1].Date)
	assert.Equal(t, "2025-01-01", m.Cells[2].Date)
	assert.Equal(t, 1, m.Cells[2].Day)
	assert.Equal(t, StatusNone, m.Cells[2].Status)
	// 1 月 6 日为周一
	assert.Equal(t, StatusWeekday, m.Cells[2+5].Status)

	// 2024 年 2 月是闰月，2 月 1 日是周四
	feb := BuildMonth(2024, time.February, r)
	assert.Len(t, feb.Cells, 3+29)
}

func TestBuildYear(t *testing.T) {
	months := BuildYear(2025, NewResolver(nil, nil))
	require.Len(t, months, 12)

	total := 0
	for _, m := range months {
		for _, c := range m.Cells {
			if c.Date != "" {
				total++
			}
		}
	}
	assert.Equal(t, 365, total)
	assert.Equal(t, time.December, months[11].Month)
}
