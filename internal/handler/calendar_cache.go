package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/zone-schedule/backend/internal/schedule"
)

// 每个区域的年历缓存在同一个 hash 中，field 带上版本号，保存营业时间后整个 hash 直接删除
func (h *Handler) calendarCacheKey(zoneID string) string {
	return fmt.Sprintf("%s:calendar:%s", h.config.Redis.KeyPrefix, zoneID)
}

func calendarCacheField(version int32, year int) string {
	return fmt.Sprintf("v%d:%d", version, year)
}

func (h *Handler) redisContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

func (h *Handler) getCachedCalendar(zoneID string, version int32, year int) ([]schedule.MonthView, bool) {
	if h.redisClient == nil {
		return nil, false
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	data, err := h.redisClient.HGet(ctx, h.calendarCacheKey(zoneID), calendarCacheField(version, year)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("读取年历缓存失败", "zone", zoneID, "error", err)
		}
		return nil, false
	}

	var months []schedule.MonthView
	if err := json.Unmarshal(data, &months); err != nil {
		slog.Warn("年历缓存已损坏", "zone", zoneID, "error", err)
		return nil, false
	}
	return months, true
}

func (h *Handler) setCachedCalendar(zoneID string, version int32, year int, months []schedule.MonthView) {
	if h.redisClient == nil {
		return
	}

	data, err := json.Marshal(months)
	if err != nil {
		slog.Warn("无法序列化年历", "zone", zoneID, "error", err)
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	key := h.calendarCacheKey(zoneID)
	pipe := h.redisClient.TxPipeline()
	pipe.HSet(ctx, key, calendarCacheField(version, year), data)
	pipe.Expire(ctx, key, time.Duration(h.config.Schedule.CalendarCacheTTL)*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Warn("写入年历缓存失败", "zone", zoneID, "error", err)
	}
}

func (h *Handler) invalidateCalendar(zoneID string) {
	if h.redisClient == nil {
		return
	}

	ctx, cancel := h.redisContext()
	defer cancel()

	if err := h.redisClient.Del(ctx, h.calendarCacheKey(zoneID)).Err(); err != nil {
		slog.Warn("清除年历缓存失败", "zone", zoneID, "error", err)
	}
}
