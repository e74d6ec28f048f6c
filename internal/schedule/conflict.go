package schedule

import (
	"slices"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

// Conflict 同一天内两段特殊营业时间发生重叠
type Conflict struct {
	Date  string           `json:"date"`
	First domain.TimeEntry `json:"first"`
	Other domain.TimeEntry `json:"other"`
}

type interval struct {
	start, end int
	entry      domain.TimeEntry
}

// FindConflicts 按日期分组，组内把每个条目看作半开区间 [open, close) 两两比较。
// 不同日期的条目永远不冲突，首尾相接也不算冲突。时间无法解析的条目不参与比较
func FindConflicts(specialTime []domain.TimeEntry) []Conflict {
	return findConflicts(specialTime, false)
}

// HasConflicts 只要存在一处冲突就返回 true，空输入返回 false
func HasConflicts(specialTime []domain.TimeEntry) bool {
	return len(findConflicts(specialTime, true)) > 0
}

func findConflicts(specialTime []domain.TimeEntry, stopAtFirst bool) []Conflict {
	byDate := make(map[string][]interval)
	for _, e := range specialTime {
		if !e.IsDated() {
			continue
		}
		start, err := domain.ParseClock(e.OpenTime)
		if err != nil {
			continue
		}
		end, err := domain.ParseClock(e.CloseTime)
		if err != nil {
			continue
		}
		byDate[e.Date] = append(byDate[e.Date], interval{start: start, end: end, entry: e})
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	conflicts := make([]Conflict, 0)
	for _, date := range dates {
		group := byDate[date]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.start < b.end && b.start < a.end {
					conflicts = append(conflicts, Conflict{Date: date, First: a.entry, Other: b.entry})
					if stopAtFirst {
						return conflicts
					}
				}
			}
		}
	}
	return conflicts
}
