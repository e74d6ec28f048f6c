package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/domain"
)

// LoadZoneTimeTable 读取一个区域的营业时间表，区域不存在时返回版本号为 0 的空表
func (r *Repository) LoadZoneTimeTable(zoneID string) (*domain.ZoneTimeTable, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	tt := &domain.ZoneTimeTable{
		ZoneID:      zoneID,
		WorkTime:    make([]domain.TimeEntry, 0),
		SpecialTime: make([]domain.TimeEntry, 0),
	}

	query := `
		SELECT updated_at, version FROM zones WHERE id = $1
	`
	if err := r.dbpool.QueryRowContext(ctx, query, zoneID).Scan(&tt.UpdatedAt, &tt.Version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tt, nil
		}
		return nil, err
	}

	query = `
		SELECT id, kind, day, to_char(date, 'YYYY-MM-DD'), open_time, close_time
		FROM time_entries
		WHERE zone_id = $1
		ORDER BY kind, position
	`
	rows, err := r.dbpool.QueryContext(ctx, query, zoneID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e    domain.TimeEntry
			kind domain.EntryKind
			day  sql.NullInt32
			date sql.NullString
		)
		if err := rows.Scan(&e.ID, &kind, &day, &date, &e.OpenTime, &e.CloseTime); err != nil {
			return nil, err
		}
		e.Day = domain.DayNumber(day.Int32)
		e.Date = date.String

		switch kind {
		case domain.EntryKindWork:
			tt.WorkTime = append(tt.WorkTime, e)
		case domain.EntryKindSpecial:
			tt.SpecialTime = append(tt.SpecialTime, e)
		default:
			return nil, fmt.Errorf("未知的条目类型 %q", kind)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tt, nil
}

// SaveZoneTimeTable 整表替换区域的营业时间。tt.Version 必须与数据库中的版本一致，否则返回 sql.ErrNoRows
func (r *Repository) SaveZoneTimeTable(tt *domain.ZoneTimeTable) error {
	if err := tt.Validate(); err != nil {
		return err
	}

	var updatedAt time.Time
	var version int32

	err := r.inTx(func(ctx context.Context, tx *sql.Tx) error {
		if err := bumpZoneVersion(ctx, tx, tt.ZoneID, tt.Version).Scan(&updatedAt, &version); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE zone_id = $1`, tt.ZoneID); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO time_entries (zone_id, id, kind, day, date, open_time, close_time, position)
			VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for kind, entries := range map[domain.EntryKind][]domain.TimeEntry{
			domain.EntryKindWork:    tt.WorkTime,
			domain.EntryKindSpecial: tt.SpecialTime,
		} {
			for i, e := range entries {
				day := sql.NullInt32{Int32: int32(e.Day), Valid: e.Day != 0}
				date := sql.NullString{String: e.Date, Valid: e.Date != ""}
				if _, err := stmt.ExecContext(ctx, tt.ZoneID, e.ID, kind, day, date, e.OpenTime, e.CloseTime, i); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	tt.UpdatedAt = updatedAt
	tt.Version = version
	return nil
}

// bumpZoneVersion 版本号为 0 表示调用方认为该区域尚不存在，此时插入新区域
func bumpZoneVersion(ctx context.Context, tx *sql.Tx, zoneID string, version int32) *sql.Row {
	if version == 0 {
		return tx.QueryRowContext(ctx, `
			INSERT INTO zones (id) VALUES ($1)
			ON CONFLICT (id) DO NOTHING
			RETURNING updated_at, version
		`, zoneID)
	}

	return tx.QueryRowContext(ctx, `
		UPDATE zones
		SET updated_at = NOW(), version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING updated_at, version
	`, zoneID, version)
}

// ClearZoneTimeTable 删除区域的全部营业时间，区域本身保留并递增版本号
func (r *Repository) ClearZoneTimeTable(zoneID string) (int32, error) {
	var version int32

	err := r.inTx(func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM time_entries WHERE zone_id = $1`, zoneID); err != nil {
			return err
		}

		query := `
			UPDATE zones SET updated_at = NOW(), version = version + 1
			WHERE id = $1
			RETURNING version
		`
		return tx.QueryRowContext(ctx, query, zoneID).Scan(&version)
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}
