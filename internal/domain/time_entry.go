package domain

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// DayNumber 星期编号，周一为 1，周日为 7
type DayNumber int32

const (
	Monday DayNumber = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var dayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d DayNumber) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d DayNumber) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

func (d DayNumber) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DayNumber(%d)", int32(d))
	}
	return dayNames[d]
}

// DayNumberFromWeekday 将 Go 的星期（0 为周日）转换为 1..7 的编号
func DayNumberFromWeekday(wd time.Weekday) DayNumber {
	if wd == time.Sunday {
		return Sunday
	}
	return DayNumber(wd)
}

type EntryKind string

const (
	EntryKindWork    EntryKind = "work"
	EntryKindSpecial EntryKind = "special"
)

var (
	ErrEntryNoKey     = errors.New("day 和 date 必须且只能设置一个")
	ErrEntryBadDay    = errors.New("day 必须在 1 到 7 之间")
	ErrEntryBadDate   = errors.New("date 格式必须为 YYYY-MM-DD")
	ErrEntryBadClock  = errors.New("时间格式必须为 HH:MM")
	ErrEntryBadWindow = errors.New("开始时间必须早于结束时间")
	ErrEntryMissingID = errors.New("缺少 id")
	ErrEntryDayInKind = errors.New("特殊营业时间只能按日期设置")
)

// TimeEntry 营业时间表中的最小单元：某个星期几或某个具体日期的一段营业时间
type TimeEntry struct {
	ID        string    `json:"id"`
	Day       DayNumber `json:"day,omitempty"`
	Date      string    `json:"date,omitempty"`
	OpenTime  string    `json:"openTime"`
	CloseTime string    `json:"closeTime"`
}

func (e TimeEntry) IsDated() bool {
	return e.Date != ""
}

// Validate 检查条目本身是否合法，不合法的条目不能进入时间表
func (e TimeEntry) Validate() error {
	if e.ID == "" {
		return ErrEntryMissingID
	}
	switch {
	case e.Day == 0 && e.Date == "":
		return ErrEntryNoKey
	case e.Day != 0 && e.Date != "":
		return ErrEntryNoKey
	case e.Day != 0 && !e.Day.Valid():
		return ErrEntryBadDay
	}
	if e.Date != "" {
		if _, err := ParseDate(e.Date); err != nil {
			return ErrEntryBadDate
		}
	}
	return ValidateWindow(e.OpenTime, e.CloseTime)
}

// ValidateWindow 检查 [open, close) 是否是同一天内的合法时间段
func ValidateWindow(openTime, closeTime string) error {
	o, err := ParseClock(openTime)
	if err != nil {
		return err
	}
	c, err := ParseClock(closeTime)
	if err != nil {
		return err
	}
	if o >= c {
		return ErrEntryBadWindow
	}
	return nil
}

// ParseDate 按 UTC 解析日期，只关心日历日，不涉及时区。
// 只接受 YYYY-MM-DD 的规范写法
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(DateLayout) != s {
		return time.Time{}, ErrEntryBadDate
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock 返回自零点起的分钟数。
// 时间按字符串存储和比较，所以 "9:00" 这类不补零的写法也不接受
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil || t.Format(ClockLayout) != s {
		return 0, ErrEntryBadClock
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ZoneTimeTable 一个区域的完整营业时间表
type ZoneTimeTable struct {
	ZoneID      string      `json:"zoneID"`
	WorkTime    []TimeEntry `json:"workTime"`
	SpecialTime []TimeEntry `json:"specialTime"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Version     int32       `json:"version"`
}

// Validate 检查整张表：每个条目合法、特殊时间只按日期、id 在两张表中唯一
func (tt *ZoneTimeTable) Validate() error {
	seen := make(map[string]struct{}, len(tt.WorkTime)+len(tt.SpecialTime))
	check := func(kind EntryKind, entries []TimeEntry) error {
		for i, e := range entries {
			if err := e.Validate(); err != nil {
				return fmt.Errorf("%s[%d]: %w", kind, i, err)
			}
			if kind == EntryKindSpecial && !e.IsDated() {
				return fmt.Errorf("%s[%d]: %w", kind, i, ErrEntryDayInKind)
			}
			if _, dup := seen[e.ID]; dup {
				return fmt.Errorf("%s[%d]: id %q 重复", kind, i, e.ID)
			}
			seen[e.ID] = struct{}{}
		}
		return nil
	}

	if err := check(EntryKindWork, tt.WorkTime); err != nil {
		return err
	}
	return check(EntryKindSpecial, tt.SpecialTime)
}
