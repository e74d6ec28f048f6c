package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
)

var (
	demoWeekday = schedule.Window{OpenTime: "08:00", CloseTime: "20:00"}
	demoWeekend = schedule.Window{OpenTime: "10:00", CloseTime: "18:00"}
	demoHoliday = schedule.Window{OpenTime: "10:00", CloseTime: "16:00"}
)

// 演示用的节假日，格式为 MM-DD
var demoHolidays = []struct {
	from, to string
}{
	{"01-01", "01-01"},
	{"05-01", "05-05"},
	{"10-01", "10-07"},
}

var csvHeader = []string{"开始日期", "结束日期", "开始时间", "结束时间"}

// DemoZone 生成一个演示区域：工作日和周末各一段基础营业时间，加上 year 年的几个节假日
func DemoZone(x *schedule.Expander, zoneID string, year int) (*domain.ZoneTimeTable, error) {
	work, err := x.ExpandWork(schedule.WorkForm{
		WeekdayDays:   []domain.DayNumber{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday},
		WeekendDays:   []domain.DayNumber{domain.Saturday, domain.Sunday},
		WeekdayWindow: demoWeekday,
		WeekendWindow: demoWeekend,
	})
	if err != nil {
		return nil, err
	}

	special := make([]domain.TimeEntry, 0)
	for _, h := range demoHolidays {
		entries, err := x.ExpandSpecial(schedule.SpecialForm{
			DateFrom: fmt.Sprintf("%04d-%s", year, h.from),
			DateTo:   fmt.Sprintf("%04d-%s", year, h.to),
			Window:   demoHoliday,
		})
		if err != nil {
			return nil, err
		}
		special = append(special, entries...)
	}

	tt := &domain.ZoneTimeTable{
		ZoneID:      zoneID,
		WorkTime:    work,
		SpecialTime: special,
	}
	if err := tt.Validate(); err != nil {
		return nil, err
	}
	return tt, nil
}

// ReadSpecialCSV 读取特殊营业时间，每行是一个日期范围和一段时间，第一行为表头
func ReadSpecialCSV(r io.Reader, x *schedule.Expander) ([]domain.TimeEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(csvHeader)
	reader.TrimLeadingSpace = true

	// 读取表头
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("文件为空")
		}
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}

	entries := make([]domain.TimeEntry, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("读取第 %d 行失败: %w", line, err)
		}

		expanded, err := x.ExpandSpecial(schedule.SpecialForm{
			DateFrom: row[0],
			DateTo:   row[1],
			Window:   schedule.Window{OpenTime: row[2], CloseTime: row[3]},
		})
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		if len(expanded) == 0 {
			return nil, fmt.Errorf("第 %d 行: %w", line, schedule.ErrEmptyRange)
		}
		entries = append(entries, expanded...)
	}

	return entries, nil
}

// SeedDemoZone 用演示数据整体覆盖区域的营业时间
func SeedDemoZone(r *repository.Repository, x *schedule.Expander, zoneID string, year int) error {
	current, err := r.LoadZoneTimeTable(zoneID)
	if err != nil {
		return err
	}

	tt, err := DemoZone(x, zoneID, year)
	if err != nil {
		return err
	}
	tt.Version = current.Version

	if err := r.SaveZoneTimeTable(tt); err != nil {
		return err
	}

	slog.Info("已写入演示区域", "zone", zoneID, "work", len(tt.WorkTime), "special", len(tt.SpecialTime), "version", tt.Version)
	return nil
}

// ImportSpecials 把 CSV 中的特殊营业时间追加到区域中，返回新增的条目数量
func ImportSpecials(r *repository.Repository, x *schedule.Expander, zoneID string, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	entries, err := ReadSpecialCSV(file, x)
	if err != nil {
		return 0, err
	}

	current, err := r.LoadZoneTimeTable(zoneID)
	if err != nil {
		return 0, err
	}

	store := schedule.NewStore(current)
	if err := store.Add(domain.EntryKindSpecial, entries); err != nil {
		return 0, err
	}

	next := store.Snapshot()
	if err := r.SaveZoneTimeTable(next); err != nil {
		return 0, err
	}

	if conflicts := schedule.FindConflicts(next.SpecialTime); len(conflicts) > 0 {
		slog.Warn("导入后特殊营业时间存在冲突", "zone", zoneID, "conflicts", len(conflicts))
	}

	return len(entries), nil
}
