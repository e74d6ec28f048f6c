package schedule

import (
	"time"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

type Status string

const (
	StatusNone    Status = "none"
	StatusWeekday Status = "weekday"
	StatusWeekend Status = "weekend"
	StatusSpecial Status = "special"
)

// Resolver 计算某一天在日历上的状态。索引在构造时一次建好，之后每次查询都是 O(1)
type Resolver struct {
	specialDates map[string]struct{}
	workDates    map[string]struct{}
	workDays     [8]bool
}

func NewResolver(workTime, specialTime []domain.TimeEntry) *Resolver {
	r := &Resolver{
		specialDates: make(map[string]struct{}, len(specialTime)),
		workDates:    make(map[string]struct{}),
	}
	for _, e := range specialTime {
		if e.IsDated() {
			r.specialDates[e.Date] = struct{}{}
		}
	}
	for _, e := range workTime {
		switch {
		case e.IsDated():
			r.workDates[e.Date] = struct{}{}
		case e.Day.Valid():
			r.workDays[e.Day] = true
		}
	}
	return r
}

// StatusOf 特殊时间优先于基础时间；基础时间按星期或固定日期匹配，周六周日记为周末
func (r *Resolver) StatusOf(date time.Time) Status {
	key := domain.FormatDate(date)
	if _, ok := r.specialDates[key]; ok {
		return StatusSpecial
	}

	day := domain.DayNumberFromWeekday(date.Weekday())
	_, pinned := r.workDates[key]
	if !pinned && !r.workDays[day] {
		return StatusNone
	}
	if day.IsWeekend() {
		return StatusWeekend
	}
	return StatusWeekday
}

// StatusOf 对单个日期的便捷查询，渲染整年时应复用同一个 Resolver
func StatusOf(date time.Time, workTime, specialTime []domain.TimeEntry) Status {
	return NewResolver(workTime, specialTime).StatusOf(date)
}

// DayCell 日历中的一格，Date 为空表示月初的占位格
type DayCell struct {
	Date   string `json:"date"`
	Day    int    `json:"day"`
	Status Status `json:"status"`
}

type MonthView struct {
	Month time.Month `json:"month"`
	Cells []DayCell  `json:"cells"`
}

// BuildMonth 以周一为一周的第一天生成月历，月初之前用空格补齐
func BuildMonth(year int, month time.Month, r *Resolver) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(domain.DayNumberFromWeekday(first.Weekday())) - 1
	daysIn := first.AddDate(0, 1, -1).Day()

	cells := make([]DayCell, 0, lead+daysIn)
	for range lead {
		cells = append(cells, DayCell{Status: StatusNone})
	}
	for d := 1; d <= daysIn; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		cells = append(cells, DayCell{
			Date:   domain.FormatDate(date),
			Day:    d,
			Status: r.StatusOf(date),
		})
	}

	return MonthView{Month: month, Cells: cells}
}

func BuildYear(year int, r *Resolver) []MonthView {
	months := make([]MonthView, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, BuildMonth(year, m, r))
	}
	return months
}
