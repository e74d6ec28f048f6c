package schedule

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

type CardKind string

const (
	CardKindWeekday CardKind = "weekday"
	CardKindWeekend CardKind = "weekend"
	CardKindDate    CardKind = "date"
)

const labelSeparator = " – "

// RangeCard 一组连续且营业时间相同的条目，界面上作为一个整体展示、编辑和删除。
// 卡片每次都从时间表重新计算，ID 只在同一张快照内有意义
type RangeCard struct {
	ID        string           `json:"id"`
	IDs       []string         `json:"ids"`
	Kind      CardKind         `json:"kind"`
	OpenTime  string           `json:"openTime"`
	CloseTime string           `json:"closeTime"`
	TimeLabel string           `json:"timeLabel"`
	SpanLabel string           `json:"spanLabel"`
	FirstDay  domain.DayNumber `json:"firstDay,omitempty"`
	LastDay   domain.DayNumber `json:"lastDay,omitempty"`
	DateFrom  string           `json:"dateFrom,omitempty"`
	DateTo    string           `json:"dateTo,omitempty"`
}

type window struct {
	open, close string
}

func (w window) label() string {
	return w.open + labelSeparator + w.close
}

func compareWindow(a, b window) int {
	return cmp.Or(cmp.Compare(a.open, b.open), cmp.Compare(a.close, b.close))
}

// CompressWork 将工作时间压缩成卡片：按星期的条目分工作日、周末两类分别合并，
// 按日期的条目单独合并，三类卡片依次输出
func CompressWork(entries []domain.TimeEntry) []RangeCard {
	weekday := make(map[window]map[domain.DayNumber][]string)
	weekend := make(map[window]map[domain.DayNumber][]string)
	dated := make(map[window]map[string][]string)

	for _, e := range entries {
		w := window{e.OpenTime, e.CloseTime}
		switch {
		case e.IsDated():
			addTo(dated, w, e.Date, e.ID)
		case e.Day.IsWeekend():
			addTo(weekend, w, e.Day, e.ID)
		case e.Day.Valid():
			addTo(weekday, w, e.Day, e.ID)
		}
	}

	cards := make([]RangeCard, 0)
	cards = append(cards, dayCards("work", CardKindWeekday, weekday)...)
	cards = append(cards, dayCards("work", CardKindWeekend, weekend)...)
	cards = append(cards, dateCards("work-date", dated)...)
	return cards
}

// CompressSpecial 将特殊时间按日期连续性压缩成卡片，没有日期的条目会被忽略
func CompressSpecial(entries []domain.TimeEntry) []RangeCard {
	dated := make(map[window]map[string][]string)
	for _, e := range entries {
		if !e.IsDated() {
			continue
		}
		addTo(dated, window{e.OpenTime, e.CloseTime}, e.Date, e.ID)
	}
	return dateCards("special", dated)
}

func addTo[K comparable](buckets map[window]map[K][]string, w window, key K, id string) {
	if _, exists := buckets[w]; !exists {
		buckets[w] = make(map[K][]string)
	}
	buckets[w][key] = append(buckets[w][key], id)
}

func sortedWindows[V any](buckets map[window]V) []window {
	ws := make([]window, 0, len(buckets))
	for w := range buckets {
		ws = append(ws, w)
	}
	slices.SortFunc(ws, compareWindow)
	return ws
}

func dayCards(prefix string, kind CardKind, buckets map[window]map[domain.DayNumber][]string) []RangeCard {
	cards := make([]RangeCard, 0)

	for _, w := range sortedWindows(buckets) {
		byDay := buckets[w]
		days := make([]domain.DayNumber, 0, len(byDay))
		for d := range byDay {
			days = append(days, d)
		}
		slices.Sort(days)

		for i, run := range DayRuns(days) {
			ids := make([]string, 0, int(run.Last-run.First)+1)
			for d := run.First; d <= run.Last; d++ {
				ids = append(ids, byDay[d]...)
			}
			cards = append(cards, RangeCard{
				ID:        fmt.Sprintf("%s-%s-%s-%s-%d", prefix, w.open, w.close, kind, i),
				IDs:       ids,
				Kind:      kind,
				OpenTime:  w.open,
				CloseTime: w.close,
				TimeLabel: w.label(),
				SpanLabel: run.Label(),
				FirstDay:  run.First,
				LastDay:   run.Last,
			})
		}
	}

	return cards
}

func dateCards(prefix string, buckets map[window]map[string][]string) []RangeCard {
	cards := make([]RangeCard, 0)

	for _, w := range sortedWindows(buckets) {
		byDate := buckets[w]
		dates := make([]string, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}

		for i, run := range DateRuns(dates) {
			var ids []string
			for _, d := range run.Dates() {
				ids = append(ids, byDate[d]...)
			}
			cards = append(cards, RangeCard{
				ID:        fmt.Sprintf("%s-%s-%s-%d", prefix, w.open, w.close, i),
				IDs:       ids,
				Kind:      CardKindDate,
				OpenTime:  w.open,
				CloseTime: w.close,
				TimeLabel: w.label(),
				SpanLabel: run.Label(),
				DateFrom:  run.From,
				DateTo:    run.To,
			})
		}
	}

	return cards
}

// DayRun 连续的星期编号 [First, Last]
type DayRun struct {
	First domain.DayNumber
	Last  domain.DayNumber
}

func (r DayRun) Label() string {
	if r.First == r.Last {
		return r.First.String()
	}
	return r.First.String() + labelSeparator + r.Last.String()
}

// DayRuns 把星期编号合并成最长的连续区间，输入可以无序、可以重复
func DayRuns(days []domain.DayNumber) []DayRun {
	sorted := slices.Clone(days)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	if len(sorted) == 0 {
		return nil
	}

	runs := make([]DayRun, 0)
	cur := DayRun{First: sorted[0], Last: sorted[0]}
	for _, d := range sorted[1:] {
		if d == cur.Last+1 {
			cur.Last = d
			continue
		}
		runs = append(runs, cur)
		cur = DayRun{First: d, Last: d}
	}
	return append(runs, cur)
}

// DateRun 日历上连续的日期 [From, To]，均为 YYYY-MM-DD
type DateRun struct {
	From string
	To   string
}

func (r DateRun) Label() string {
	if r.From == r.To {
		return r.From
	}
	return r.From + labelSeparator + r.To
}

// Dates 展开区间内的每一天。规范的 YYYY-MM-DD 按字符串比较即按日期先后
func (r DateRun) Dates() []string {
	dates := make([]string, 0)
	for d := r.From; d != "" && d <= r.To; d = nextDate(d) {
		dates = append(dates, d)
	}
	return dates
}

// DateRuns 把日期合并成最长的日历连续区间，相差一天以上即断开，与星期无关。
// 无法解析的日期会被丢弃
func DateRuns(dates []string) []DateRun {
	parsed := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, err := domain.ParseDate(d); err == nil {
			parsed = append(parsed, d)
		}
	}
	slices.Sort(parsed)
	parsed = slices.Compact(parsed)
	if len(parsed) == 0 {
		return nil
	}

	runs := make([]DateRun, 0)
	cur := DateRun{From: parsed[0], To: parsed[0]}
	for _, d := range parsed[1:] {
		if d == nextDate(cur.To) {
			cur.To = d
			continue
		}
		runs = append(runs, cur)
		cur = DateRun{From: d, To: d}
	}
	return append(runs, cur)
}

func nextDate(date string) string {
	t, err := domain.ParseDate(date)
	if err != nil {
		return ""
	}
	return domain.FormatDate(t.AddDate(0, 0, 1))
}
