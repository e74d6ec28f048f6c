package schedule

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

var (
	ErrInvalidEntry = errors.New("条目不合法")
	ErrEmptyRange   = errors.New("所选范围内没有生成任何营业时间")
	ErrRangeTooLong = errors.New("日期范围过长")
)

// DefaultMaxSpanDays 单次展开允许的最大天数，约三年
const DefaultMaxSpanDays = 1100

type Window struct {
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
}

// WorkForm 基础营业时间的编辑表单。
// DateFrom/DateTo 同时为空表示按星期无限重复，否则把规则固定到这段日期上
type WorkForm struct {
	DateFrom       string             `json:"dateFrom"`
	DateTo         string             `json:"dateTo"`
	WeekdayDays    []domain.DayNumber `json:"weekdayDays"`
	WeekendDays    []domain.DayNumber `json:"weekendDays"`
	WeekdayWindow  Window             `json:"weekdayWindow"`
	WeekendWindow  Window             `json:"weekendWindow"`
	SameAsWeekdays bool               `json:"sameAsWeekdays"`
}

type SpecialForm struct {
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
	Window   Window `json:"window"`
}

// Expander 把表单展开成需要写回时间表的完整条目列表。
// 展开只依赖表单本身，每次调用都会生成新的 id
type Expander struct {
	NewID       func() string
	MaxSpanDays int
}

func NewExpander(maxSpanDays int) *Expander {
	if maxSpanDays <= 0 {
		maxSpanDays = DefaultMaxSpanDays
	}
	return &Expander{
		NewID:       uuid.NewString,
		MaxSpanDays: maxSpanDays,
	}
}

// ExpandWork 展开基础营业时间。
// 有日期范围时逐日展开并只保留选中的星期；没有日期范围时每个选中的星期生成一个按星期的条目。
// 日期范围颠倒时返回空列表，由调用方拒绝保存
func (x *Expander) ExpandWork(form WorkForm) ([]domain.TimeEntry, error) {
	days, err := form.selectedDays()
	if err != nil {
		return nil, err
	}
	if err := form.validateWindows(days); err != nil {
		return nil, err
	}

	hasSpan, err := spanSupplied(form.DateFrom, form.DateTo)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimeEntry, 0)

	if !hasSpan {
		for _, day := range days {
			w := form.windowFor(day)
			entries = append(entries, domain.TimeEntry{
				ID:        x.NewID(),
				Day:       day,
				OpenTime:  w.OpenTime,
				CloseTime: w.CloseTime,
			})
		}
		return entries, nil
	}

	dates, err := x.span(form.DateFrom, form.DateTo)
	if err != nil {
		return nil, err
	}
	for _, date := range dates {
		day := dayOf(date)
		if !slices.Contains(days, day) {
			continue
		}
		w := form.windowFor(day)
		entries = append(entries, domain.TimeEntry{
			ID:        x.NewID(),
			Date:      date,
			OpenTime:  w.OpenTime,
			CloseTime: w.CloseTime,
		})
	}
	return entries, nil
}

// ExpandSpecial 把日期范围逐日展开为特殊营业时间，所有条目共用同一个时间段
func (x *Expander) ExpandSpecial(form SpecialForm) ([]domain.TimeEntry, error) {
	if err := domain.ValidateWindow(form.Window.OpenTime, form.Window.CloseTime); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	if form.DateFrom == "" || form.DateTo == "" {
		return []domain.TimeEntry{}, nil
	}

	dates, err := x.span(form.DateFrom, form.DateTo)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.TimeEntry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, domain.TimeEntry{
			ID:        x.NewID(),
			Date:      date,
			OpenTime:  form.Window.OpenTime,
			CloseTime: form.Window.CloseTime,
		})
	}
	return entries, nil
}

func (x *Expander) maxSpanDays() int {
	if x.MaxSpanDays <= 0 {
		return DefaultMaxSpanDays
	}
	return x.MaxSpanDays
}

func (x *Expander) span(from, to string) ([]string, error) {
	start, err1 := domain.ParseDate(from)
	end, err2 := domain.ParseDate(to)
	if err1 == nil && err2 == nil {
		limit := x.maxSpanDays()
		if n := int(end.Sub(start).Hours()/24) + 1; n > limit {
			return nil, fmt.Errorf("%w: %d 天，最多 %d 天", ErrRangeTooLong, n, limit)
		}
	}
	return DateSpan(from, to)
}

// selectedDays 勾选了“与工作日相同”时只使用工作日列表
func (f WorkForm) selectedDays() ([]domain.DayNumber, error) {
	days := slices.Clone(f.WeekdayDays)
	if !f.SameAsWeekdays {
		days = append(days, f.WeekendDays...)
	}
	for _, d := range days {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, domain.ErrEntryBadDay)
		}
	}
	slices.Sort(days)
	return slices.Compact(days), nil
}

func (f WorkForm) windowFor(day domain.DayNumber) Window {
	if day.IsWeekend() && !f.SameAsWeekdays {
		return f.WeekendWindow
	}
	return f.WeekdayWindow
}

// validateWindows 只校验实际会用到的时间段
func (f WorkForm) validateWindows(days []domain.DayNumber) error {
	checked := make(map[Window]bool, 2)
	for _, d := range days {
		w := f.windowFor(d)
		if checked[w] {
			continue
		}
		if err := domain.ValidateWindow(w.OpenTime, w.CloseTime); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidEntry, d, err)
		}
		checked[w] = true
	}
	return nil
}

func spanSupplied(from, to string) (bool, error) {
	switch {
	case from == "" && to == "":
		return false, nil
	case from == "" || to == "":
		return false, fmt.Errorf("%w: 日期范围不完整", ErrInvalidEntry)
	default:
		return true, nil
	}
}

// DateSpan 返回 [from, to] 内的每一天，to 早于 from 时返回空列表
func DateSpan(from, to string) ([]string, error) {
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, domain.ErrEntryBadDate)
	}
	end, err := domain.ParseDate(to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEntry, domain.ErrEntryBadDate)
	}

	dates := make([]string, 0)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, domain.FormatDate(d))
	}
	return dates, nil
}

func dayOf(date string) domain.DayNumber {
	t, err := domain.ParseDate(date)
	if err != nil {
		return 0
	}
	return domain.DayNumberFromWeekday(t.Weekday())
}

// WorkFormFromCard 根据卡片还原编辑表单，展开后得到的条目与卡片代表的条目一致
func WorkFormFromCard(c RangeCard) WorkForm {
	w := Window{OpenTime: c.OpenTime, CloseTime: c.CloseTime}
	form := WorkForm{
		WeekdayDays:   []domain.DayNumber{},
		WeekendDays:   []domain.DayNumber{},
		WeekdayWindow: w,
		WeekendWindow: w,
	}

	switch c.Kind {
	case CardKindWeekday:
		form.WeekdayDays = dayRange(c.FirstDay, c.LastDay)
	case CardKindWeekend:
		form.WeekendDays = dayRange(c.FirstDay, c.LastDay)
	case CardKindDate:
		form.DateFrom = c.DateFrom
		form.DateTo = c.DateTo
		form.WeekdayDays = dayRange(domain.Monday, domain.Sunday)
		form.SameAsWeekdays = true
	}
	return form
}

func SpecialFormFromCard(c RangeCard) SpecialForm {
	return SpecialForm{
		DateFrom: c.DateFrom,
		DateTo:   c.DateTo,
		Window:   Window{OpenTime: c.OpenTime, CloseTime: c.CloseTime},
	}
}

func dayRange(first, last domain.DayNumber) []domain.DayNumber {
	days := make([]domain.DayNumber, 0, 7)
	for d := first; d <= last; d++ {
		days = append(days, d)
	}
	return days
}
