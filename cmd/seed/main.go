package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/seed"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/utils"
)

const (
	opDemoZone       = 1
	opImportSpecials = 2
)

func main() {
	var op int
	var zoneID string
	var year int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 写入演示区域, 2: 从 CSV 导入特殊营业时间)")
	flag.StringVar(&zoneID, "zone", "demo", "区域 ID")
	flag.IntVar(&year, "year", time.Now().Year(), "演示节假日所在的年份")
	flag.StringVar(&file, "file", "", "特殊营业时间 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(op, zoneID, year, file); err != nil {
		logger.Error("seed 执行失败", "op", op, "zone", zoneID, "error", err)
		os.Exit(1)
	}
}

func run(op int, zoneID string, year int, file string) error {
	switch op {
	case opDemoZone:
	case opImportSpecials:
		if file == "" {
			return errors.New("请用 -file 指定 CSV 文件路径")
		}
	case 0:
		return errors.New("未指定操作")
	default:
		return errors.New("指定的操作非法")
	}

	if err := utils.ValidateZoneID(zoneID); err != nil {
		return err
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	dbpool, err := repository.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer dbpool.Close()

	repo := repository.NewRepository(cfg, dbpool)
	expander := schedule.NewExpander(cfg.Schedule.MaxRangeDays)

	if op == opDemoZone {
		return seed.SeedDemoZone(repo, expander, zoneID, year)
	}

	n, err := seed.ImportSpecials(repo, expander, zoneID, file)
	if err != nil {
		return err
	}
	slog.Info("导入特殊营业时间成功", "zone", zoneID, "count", n)
	return nil
}
