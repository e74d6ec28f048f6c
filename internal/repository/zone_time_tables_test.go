package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// 需要一个可以随意写入的 PostgreSQL，通过 TEST_DATABASE_DSN 指定，未设置时跳过
func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("未设置 TEST_DATABASE_DSN")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../migrations/000001_zone_schedule.up.sql")
	require.NoError(t, err)
	_, err = db.ExecContext(context.Background(), string(schema))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 10
	cfg.Database.TransactionTimeout = 20

	return NewRepository(cfg, db)
}

func TestZoneTimeTableLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	zoneID := "test-" + t.Name()
	t.Cleanup(func() {
		_, _ = repo.dbpool.Exec(`DELETE FROM zones WHERE id = $1`, zoneID)
	})

	// 区域不存在时返回空表
	tt, err := repo.LoadZoneTimeTable(zoneID)
	require.NoError(t, err)
	assert.Equal(t, int32(0), tt.Version)
	assert.Empty(t, tt.WorkTime)

	tt.WorkTime = []domain.TimeEntry{
		{ID: "w1", Day: domain.Monday, OpenTime: "08:00", CloseTime: "20:00"},
		{ID: "w2", Date: "2025-01-04", OpenTime: "10:00", CloseTime: "16:00"},
	}
	tt.SpecialTime = []domain.TimeEntry{
		{ID: "s1", Date: "2025-05-01", OpenTime: "10:00", CloseTime: "14:00"},
	}
	require.NoError(t, repo.SaveZoneTimeTable(tt))
	assert.Equal(t, int32(1), tt.Version)

	loaded, err := repo.LoadZoneTimeTable(zoneID)
	require.NoError(t, err)
	assert.Equal(t, tt.WorkTime, loaded.WorkTime)
	assert.Equal(t, tt.SpecialTime, loaded.SpecialTime)
	assert.Equal(t, int32(1), loaded.Version)

	// 旧版本号不能覆盖新数据
	stale := *loaded
	stale.Version = 0
	assert.ErrorIs(t, repo.SaveZoneTimeTable(&stale), sql.ErrNoRows)

	loaded.SpecialTime = nil
	require.NoError(t, repo.SaveZoneTimeTable(loaded))
	assert.Equal(t, int32(2), loaded.Version)

	version, err := repo.ClearZoneTimeTable(zoneID)
	require.NoError(t, err)
	assert.Equal(t, int32(3), version)

	cleared, err := repo.LoadZoneTimeTable(zoneID)
	require.NoError(t, err)
	assert.Empty(t, cleared.WorkTime)
	assert.Empty(t, cleared.SpecialTime)
}

func TestSaveZoneTimeTableRejectsInvalidTable(t *testing.T) {
	repo := &Repository{cfg: &config.Config{}}

	err := repo.SaveZoneTimeTable(&domain.ZoneTimeTable{
		ZoneID:   "zone24",
		WorkTime: []domain.TimeEntry{{ID: "w1", Day: domain.Monday, OpenTime: "20:00", CloseTime: "08:00"}},
	})
	assert.ErrorIs(t, err, domain.ErrEntryBadWindow)
}
